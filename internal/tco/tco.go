// Package tco computes the recurring monthly cost of owning a vehicle under
// a given set of financing terms.
package tco

import (
	"context"
	"math"

	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/Shortlist/internal/financing"
	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
	"github.com/MikeSquared-Agency/Shortlist/internal/store"
	"github.com/MikeSquared-Agency/Shortlist/internal/valuation"
)

// Assumptions records every input the breakdown was derived from.
type Assumptions struct {
	DownPaymentPercent float64 `json:"down_payment_percent"`
	FinancingMonths    int     `json:"financing_months"`
	AnnualInterestRate float64 `json:"annual_interest_rate"`
	MonthlyKm          float64 `json:"monthly_km"`
	FuelPricePerLiter  float64 `json:"fuel_price_per_liter"`
	FuelEfficiency     float64 `json:"fuel_efficiency"`
}

// Breakdown is the monthly cost split. Money fields are rounded to cents and
// TotalMonthly is the exact sum of the rounded components.
type Breakdown struct {
	FinancingMonthly   float64     `json:"financing_monthly"`
	FuelMonthly        float64     `json:"fuel_monthly"`
	MaintenanceMonthly float64     `json:"maintenance_monthly"`
	InsuranceMonthly   float64     `json:"insurance_monthly"`
	IPVAMonthly        float64     `json:"ipva_monthly"`
	TotalMonthly       float64     `json:"total_monthly"`
	Assumptions        Assumptions `json:"assumptions"`
}

// FuelPricer resolves a per-liter price for a fuel type.
type FuelPricer interface {
	PriceFor(ctx context.Context, f store.FuelType) float64
}

// Calculator prices monthly ownership for a vehicle.
type Calculator struct {
	metrics *valuation.Calculator
	fuel    FuelPricer
}

// NewCalculator builds a Calculator over the vehicle metrics and a fuel pricer.
func NewCalculator(metrics *valuation.Calculator, fuel FuelPricer) *Calculator {
	return &Calculator{metrics: metrics, fuel: fuel}
}

// Calculate produces the monthly breakdown for v under p and terms.
func (c *Calculator) Calculate(ctx context.Context, v *store.Vehicle, p *profile.Profile, terms financing.Terms) Breakdown {
	km := MonthlyKm(p.UsageType)
	efficiency := Efficiency(v)
	price := c.fuel.PriceFor(ctx, v.Fuel)

	principal := v.Price * (1 - terms.MinDownPayment)
	financingMonthly := MonthlyPayment(principal, terms.MonthlyRate, terms.MaxTermMonths)
	fuelMonthly := km / efficiency * price
	maintenanceMonthly := c.metrics.MaintenanceCost(v.Brand, v.Year, v.Mileage) / 12
	insuranceMonthly := InsuranceAnnual(v) / 12
	ipvaMonthly := IPVAAnnual(v, c.metrics.Age(v.Year)) / 12

	parts := []decimal.Decimal{
		cents(financingMonthly),
		cents(fuelMonthly),
		cents(maintenanceMonthly),
		cents(insuranceMonthly),
		cents(ipvaMonthly),
	}
	total := decimal.Zero
	for _, d := range parts {
		total = total.Add(d)
	}

	return Breakdown{
		FinancingMonthly:   parts[0].InexactFloat64(),
		FuelMonthly:        parts[1].InexactFloat64(),
		MaintenanceMonthly: parts[2].InexactFloat64(),
		InsuranceMonthly:   parts[3].InexactFloat64(),
		IPVAMonthly:        parts[4].InexactFloat64(),
		TotalMonthly:       total.InexactFloat64(),
		Assumptions: Assumptions{
			DownPaymentPercent: decimal.NewFromFloat(terms.MinDownPayment * 100).Round(2).InexactFloat64(),
			FinancingMonths:    terms.MaxTermMonths,
			AnnualInterestRate: decimal.NewFromFloat(terms.AnnualRate).Round(4).InexactFloat64(),
			MonthlyKm:          km,
			FuelPricePerLiter:  cents(price).InexactFloat64(),
			FuelEfficiency:     efficiency,
		},
	}
}

// RunningCost is the unrounded monthly fuel plus maintenance spend, the part
// of ownership cost that does not depend on financing.
func (c *Calculator) RunningCost(ctx context.Context, v *store.Vehicle, p *profile.Profile) float64 {
	return c.RunningCostAt(v, p, c.FuelPrice(ctx, v.Fuel))
}

// RunningCostAt is RunningCost at an already resolved fuel price.
func (c *Calculator) RunningCostAt(v *store.Vehicle, p *profile.Profile, fuelPrice float64) float64 {
	fuelMonthly := MonthlyKm(p.UsageType) / Efficiency(v) * fuelPrice
	return fuelMonthly + c.metrics.MaintenanceCost(v.Brand, v.Year, v.Mileage)/12
}

// FuelPrice resolves the per-liter price for a fuel type.
func (c *Calculator) FuelPrice(ctx context.Context, f store.FuelType) float64 {
	return c.fuel.PriceFor(ctx, f)
}

// MonthlyPayment is the standard amortised instalment. A zero rate spreads
// the principal evenly; a non-positive term means nothing is financed.
func MonthlyPayment(principal, monthlyRate float64, months int) float64 {
	if months <= 0 || principal <= 0 {
		return 0
	}
	if monthlyRate <= 0 {
		return principal / float64(months)
	}
	return principal * monthlyRate / (1 - math.Pow(1+monthlyRate, -float64(months)))
}

func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
