// Package financing predicts financing terms and a credit-health score from
// a buyer profile's risk factors.
package financing

import (
	"log/slog"

	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

const (
	MinMonthlyRate = 0.0149
	MaxMonthlyRate = 0.0350

	neutralRisk         = 0.5
	firstTimePenalty    = 0.10
	familyStabilityGain = 0.05

	// Credit-health score normalisation range.
	scoreRateFloor = 0.015
	scoreRateCeil  = 0.035
)

var incomeBonus = map[string]float64{
	profile.IncomeUpTo3000: -0.10,
	profile.Income3000To5k: 0,
	profile.Income5kTo8k:   0.10,
	profile.Income8kTo12k:  0.20,
	profile.IncomeAbove12k: 0.30,
}

// Terms are derived per profile and never persisted.
type Terms struct {
	AnnualRate     float64   `json:"annual_rate"`
	MonthlyRate    float64   `json:"monthly_rate"`
	MaxTermMonths  int       `json:"max_term_months"`
	MinDownPayment float64   `json:"min_down_payment"`
	RiskLevel      RiskLevel `json:"risk_level"`
	RiskScore      float64   `json:"risk_score"`
}

// Agent predicts financing terms from a buyer profile.
type Agent struct {
	logger *slog.Logger
}

func NewAgent(logger *slog.Logger) *Agent {
	return &Agent{logger: logger}
}

// RiskScore starts neutral and adjusts additively for income, first purchase
// and family stability. Higher is safer. Always in [0,1].
func RiskScore(p *profile.Profile) float64 {
	score := neutralRisk
	score += incomeBonus[p.IncomeBracket()]
	if p.FirstTimeBuyer {
		score -= firstTimePenalty
	}
	if p.HasChildren || p.HasElderly {
		score += familyStabilityGain
	}
	return clamp(score)
}

// PredictTerms maps the profile's risk score onto a monthly rate and a
// down-payment/term tier.
func (a *Agent) PredictTerms(p *profile.Profile) Terms {
	risk := RiskScore(p)
	monthly := MaxMonthlyRate - risk*(MaxMonthlyRate-MinMonthlyRate)

	t := Terms{
		MonthlyRate: monthly,
		AnnualRate:  monthly * 12,
		RiskScore:   risk,
	}
	switch {
	case risk > 0.7:
		t.MinDownPayment, t.MaxTermMonths, t.RiskLevel = 0.10, 72, RiskLow
	case risk > 0.4:
		t.MinDownPayment, t.MaxTermMonths, t.RiskLevel = 0.20, 60, RiskMedium
	default:
		t.MinDownPayment, t.MaxTermMonths, t.RiskLevel = 0.30, 48, RiskHigh
	}

	a.logger.Debug("financing terms predicted",
		"risk_score", risk,
		"monthly_rate", monthly,
		"risk_level", t.RiskLevel,
	)
	return t
}

// CalculateScore is the credit-health score: the predicted monthly rate
// inverse-normalised into [0,1]. Higher means cheaper credit.
func (a *Agent) CalculateScore(p *profile.Profile) float64 {
	return ScoreForRate(a.PredictTerms(p).MonthlyRate)
}

// ScoreForRate inverse-normalises a monthly rate over the scoring range.
func ScoreForRate(monthly float64) float64 {
	return clamp((scoreRateCeil - monthly) / (scoreRateCeil - scoreRateFloor))
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
