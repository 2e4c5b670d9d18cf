package tco

import (
	"strings"

	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
	"github.com/MikeSquared-Agency/Shortlist/internal/store"
	"github.com/MikeSquared-Agency/Shortlist/internal/valuation"
)

const (
	defaultMonthlyKm  = 1000.0
	defaultEfficiency = 12.0

	ipvaRate        = 0.04
	ipvaExemptAfter = 20
)

var monthlyKm = map[string]float64{
	profile.UsageCity:    800,
	profile.UsageMixed:   1000,
	profile.UsageHighway: 1500,
	profile.UsageFamily:  1200,
	profile.UsageWork:    2500,
}

// MonthlyKm returns the assumed monthly distance for a usage type.
func MonthlyKm(usage string) float64 {
	if km, ok := monthlyKm[strings.ToLower(strings.TrimSpace(usage))]; ok {
		return km
	}
	return defaultMonthlyKm
}

var categoryEfficiency = map[store.Category]float64{
	store.CategoryHatch:   13,
	store.CategoryCompact: 14,
	store.CategorySedan:   12,
	store.CategorySUV:     10,
	store.CategoryPickup:  9,
	store.CategoryVan:     9,
}

var fuelEfficiencyFactor = map[store.FuelType]float64{
	store.FuelEthanol:  0.70,
	store.FuelHybrid:   1.5,
	store.FuelDiesel:   1.15,
	store.FuelElectric: 3.0,
}

// Efficiency returns km per liter. A value carried on the vehicle wins over
// the category table.
func Efficiency(v *store.Vehicle) float64 {
	if v.FuelEfficiency > 0 {
		return v.FuelEfficiency
	}
	eff, ok := categoryEfficiency[store.NormalizeCategory(string(v.Category))]
	if !ok {
		eff = defaultEfficiency
	}
	if f, ok := fuelEfficiencyFactor[store.NormalizeFuel(string(v.Fuel))]; ok {
		eff *= f
	}
	return eff
}

// InsuranceAnnual estimates the yearly premium from price bracket, category
// and brand.
func InsuranceAnnual(v *store.Vehicle) float64 {
	var rate float64
	switch {
	case v.Price < 50000:
		rate = 0.045
	case v.Price < 100000:
		rate = 0.040
	case v.Price < 200000:
		rate = 0.035
	default:
		rate = 0.030
	}
	switch store.NormalizeCategory(string(v.Category)) {
	case store.CategorySUV:
		rate *= 1.10
	case store.CategoryPickup:
		rate *= 1.15
	}
	if valuation.IsPremium(v.Brand) {
		rate *= 1.20
	}
	return v.Price * rate
}

// IPVAAnnual is the yearly vehicle property tax. Electric vehicles and
// vehicles past the age limit are exempt.
func IPVAAnnual(v *store.Vehicle, age int) float64 {
	if store.NormalizeFuel(string(v.Fuel)) == store.FuelElectric || age > ipvaExemptAfter {
		return 0
	}
	return v.Price * ipvaRate
}
