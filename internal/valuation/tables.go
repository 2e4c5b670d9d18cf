package valuation

import (
	"strings"

	"github.com/MikeSquared-Agency/Shortlist/internal/store"
)

const (
	defaultReliability     = 0.70
	defaultResale          = 0.65
	defaultDepreciation    = 0.15
	defaultMaintenanceCost = 3000.0

	premiumSurcharge = 0.03
)

var brandReliability = map[string]float64{
	"toyota":        0.95,
	"lexus":         0.96,
	"honda":         0.93,
	"hyundai":       0.85,
	"volvo":         0.85,
	"kia":           0.83,
	"bmw":           0.82,
	"mitsubishi":    0.80,
	"nissan":        0.80,
	"mercedes-benz": 0.80,
	"audi":          0.80,
	"volkswagen":    0.78,
	"chevrolet":     0.75,
	"ford":          0.72,
	"jeep":          0.70,
	"renault":       0.68,
	"peugeot":       0.65,
	"citroen":       0.63,
	"fiat":          0.62,
}

var brandResale = map[string]float64{
	"toyota":        0.92,
	"honda":         0.90,
	"lexus":         0.88,
	"jeep":          0.82,
	"hyundai":       0.80,
	"volkswagen":    0.78,
	"chevrolet":     0.78,
	"bmw":           0.75,
	"mercedes-benz": 0.74,
	"audi":          0.72,
	"nissan":        0.72,
	"fiat":          0.70,
	"volvo":         0.70,
	"ford":          0.65,
	"renault":       0.62,
	"peugeot":       0.58,
	"citroen":       0.55,
}

var categoryResaleBoost = map[store.Category]float64{
	store.CategorySUV:    0.10,
	store.CategoryPickup: 0.08,
	store.CategoryHatch:  0.02,
	store.CategoryVan:    -0.05,
}

var categoryDepreciation = map[store.Category]float64{
	store.CategoryHatch:   0.15,
	store.CategorySedan:   0.16,
	store.CategorySUV:     0.14,
	store.CategoryPickup:  0.12,
	store.CategoryCompact: 0.15,
	store.CategoryVan:     0.17,
}

var brandMaintenance = map[string]float64{
	"toyota":        2200,
	"honda":         2300,
	"hyundai":       2500,
	"kia":           2500,
	"fiat":          2600,
	"renault":       2700,
	"chevrolet":     2800,
	"volkswagen":    2900,
	"nissan":        2900,
	"ford":          3000,
	"peugeot":       3200,
	"citroen":       3200,
	"mitsubishi":    3400,
	"jeep":          3500,
	"lexus":         4500,
	"volvo":         5500,
	"bmw":           6000,
	"audi":          6000,
	"mercedes-benz": 6500,
}

var premiumBrands = map[string]bool{
	"bmw":           true,
	"mercedes-benz": true,
	"audi":          true,
	"volvo":         true,
	"land rover":    true,
	"porsche":       true,
	"lexus":         true,
}

var brandAliases = map[string]string{
	"vw":       "volkswagen",
	"chevy":    "chevrolet",
	"gm":       "chevrolet",
	"mercedes": "mercedes-benz",
	"citroën":  "citroen",
}

// NormalizeBrand maps a raw brand label onto the key used by the tables.
func NormalizeBrand(brand string) string {
	b := strings.ToLower(strings.TrimSpace(brand))
	if alias, ok := brandAliases[b]; ok {
		return alias
	}
	return b
}

// IsPremium reports whether brand carries the luxury surcharges.
func IsPremium(brand string) bool {
	return premiumBrands[NormalizeBrand(brand)]
}
