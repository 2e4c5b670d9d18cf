// Package valuation holds the actuarial-style vehicle formulas: reliability,
// resale, depreciation and maintenance cost, plus the five-year projection.
// Every function is pure apart from the calculator's clock.
package valuation

import (
	"time"

	"github.com/MikeSquared-Agency/Shortlist/internal/store"
)

const (
	oldAgeYears     = 10
	highMileageKm   = 100000
	heavyMileageKm  = 150000
	oldAgePenalty   = 0.20
	mileagePenalty  = 0.15
	resalePerYear   = 0.03
	resaleMaxAgeHit = 0.45

	oldAgeMaintenanceFactor = 1.5
	heavyMileageMaintenance = 1.10
	projectionYears         = 5
)

// Metrics is the per-vehicle bundle returned by CalculateAll.
type Metrics struct {
	Reliability      float64 `json:"reliability_index"`
	Resale           float64 `json:"resale_index"`
	DepreciationRate float64 `json:"depreciation_rate"`
	MaintenanceCost  float64 `json:"maintenance_cost_per_year"`
}

// Calculator computes vehicle metrics relative to its clock's current year.
type Calculator struct {
	now func() time.Time
}

// NewCalculator returns a Calculator on the wall clock.
func NewCalculator() *Calculator {
	return &Calculator{now: time.Now}
}

// NewCalculatorAt pins the calculator's clock, for reproducible ages.
func NewCalculatorAt(now func() time.Time) *Calculator {
	return &Calculator{now: now}
}

// Age returns whole years since the model year, floored at zero.
func (c *Calculator) Age(year int) int {
	age := c.now().Year() - year
	if age < 0 {
		return 0
	}
	return age
}

// Reliability returns the brand base index minus age and mileage penalties,
// clamped to [0,1].
func (c *Calculator) Reliability(brand string, year, mileage int) float64 {
	base, ok := brandReliability[NormalizeBrand(brand)]
	if !ok {
		base = defaultReliability
	}
	if c.Age(year) > oldAgeYears {
		base -= oldAgePenalty
	}
	if mileage > highMileageKm {
		base -= mileagePenalty
	}
	return clamp(base)
}

// Resale returns brand base plus category boost minus a linear age penalty,
// clamped to [0,1].
func (c *Calculator) Resale(brand string, category store.Category, year int) float64 {
	base, ok := brandResale[NormalizeBrand(brand)]
	if !ok {
		base = defaultResale
	}
	base += categoryResaleBoost[store.NormalizeCategory(string(category))]

	penalty := float64(c.Age(year)) * resalePerYear
	if penalty > resaleMaxAgeHit {
		penalty = resaleMaxAgeHit
	}
	return clamp(base - penalty)
}

// DepreciationRate returns the expected annual loss of value as a fraction.
func (c *Calculator) DepreciationRate(brand string, category store.Category, year int) float64 {
	rate, ok := categoryDepreciation[store.NormalizeCategory(string(category))]
	if !ok {
		rate = defaultDepreciation
	}
	if IsPremium(brand) {
		rate += premiumSurcharge
	}
	return rate + ageBracketAdjustment(c.Age(year))
}

func ageBracketAdjustment(age int) float64 {
	switch {
	case age <= 1:
		return 0.02
	case age <= 3:
		return 0
	case age <= 6:
		return 0.01
	case age <= 10:
		return 0.02
	default:
		return 0.03
	}
}

// MaintenanceCost estimates yearly upkeep in currency units.
func (c *Calculator) MaintenanceCost(brand string, year, mileage int) float64 {
	cost, ok := brandMaintenance[NormalizeBrand(brand)]
	if !ok {
		cost = defaultMaintenanceCost
	}
	if c.Age(year) > oldAgeYears {
		cost *= oldAgeMaintenanceFactor
	}
	if mileage > heavyMileageKm {
		cost *= heavyMileageMaintenance
	}
	return cost
}

// CalculateAll bundles the four per-vehicle metrics.
func (c *Calculator) CalculateAll(brand string, category store.Category, year, mileage int) Metrics {
	return Metrics{
		Reliability:      c.Reliability(brand, year, mileage),
		Resale:           c.Resale(brand, category, year),
		DepreciationRate: c.DepreciationRate(brand, category, year),
		MaintenanceCost:  c.MaintenanceCost(brand, year, mileage),
	}
}

// ForVehicle is CalculateAll over a stored vehicle.
func (c *Calculator) ForVehicle(v *store.Vehicle) Metrics {
	return c.CalculateAll(v.Brand, v.Category, v.Year, v.Mileage)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
