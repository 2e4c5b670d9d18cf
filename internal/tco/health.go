package tco

import "github.com/MikeSquared-Agency/Shortlist/internal/profile"

type Health string

const (
	HealthHealthy  Health = "healthy"
	HealthModerate Health = "moderate"
	HealthStrained Health = "strained"
	HealthUnknown  Health = "unknown"
)

// FinancialHealth classifies a monthly total against the midpoint of the
// disclosed income bracket.
func FinancialHealth(totalMonthly float64, p *profile.Profile) Health {
	income, ok := profile.IncomeMidpoint(p.IncomeBracket())
	if !ok || income <= 0 {
		return HealthUnknown
	}
	ratio := totalMonthly / income
	switch {
	case ratio <= 0.20:
		return HealthHealthy
	case ratio <= 0.30:
		return HealthModerate
	default:
		return HealthStrained
	}
}

// FitsBudget reports whether the total respects the declared monthly cap.
// It returns nil when no cap was disclosed.
func FitsBudget(totalMonthly float64, p *profile.Profile) *bool {
	limit, ok := p.FinancialCapacity.MonthlyCap()
	if !ok {
		return nil
	}
	fits := totalMonthly <= limit
	return &fits
}
