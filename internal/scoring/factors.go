package scoring

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/MikeSquared-Agency/Shortlist/internal/financing"
	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
	"github.com/MikeSquared-Agency/Shortlist/internal/store"
	"github.com/MikeSquared-Agency/Shortlist/internal/tco"
	"github.com/MikeSquared-Agency/Shortlist/internal/valuation"
)

// ErrNoVehicle is returned by agents asked to score a nil vehicle.
var ErrNoVehicle = errors.New("scoring: nil vehicle")

// FactorResult captures one dimension's contribution to the composite score.
type FactorResult struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"`
	Weighted  float64 `json:"weighted"`
	Available bool    `json:"available"`
	Reason    string  `json:"reason,omitempty"`
}

// Agent scores one dimension of a vehicle for a profile, in [0,1].
type Agent interface {
	Name() string
	Score(ctx context.Context, v *store.Vehicle, p *profile.Profile) (float64, error)
}

// FuelSensitive is implemented by agents whose score depends on the fuel
// price. The scorer resolves the price once and keys cached scores by it.
type FuelSensitive interface {
	FuelPrice(ctx context.Context, v *store.Vehicle) float64
	ScoreAtPrice(ctx context.Context, v *store.Vehicle, p *profile.Profile, fuelPrice float64) (float64, error)
}

// Deps are the models the built-in agents consult.
type Deps struct {
	Metrics   *valuation.Calculator
	TCO       *tco.Calculator
	Financing *financing.Agent
}

// DefaultAgents returns one agent per priority dimension, in dimension order.
func DefaultAgents(d Deps) []Agent {
	return []Agent{
		&EconomyAgent{tco: d.TCO},
		SpaceAgent{},
		PerformanceAgent{},
		ComfortAgent{},
		&SafetyAgent{metrics: d.Metrics},
		&ReliabilityAgent{metrics: d.Metrics},
		&ResaleAgent{metrics: d.Metrics},
		&FinancingAgent{financing: d.Financing},
	}
}

// --- Individual agents ---

// Running-cost band used to normalise the economy score, per month.
const (
	cheapRunning     = 300.0
	expensiveRunning = 1800.0
)

// EconomyAgent scores monthly fuel plus maintenance spend, blended with the
// vehicle's baseline economy rating.
type EconomyAgent struct {
	tco *tco.Calculator
}

func (a *EconomyAgent) Name() string { return profile.DimEconomy }

func (a *EconomyAgent) Score(ctx context.Context, v *store.Vehicle, p *profile.Profile) (float64, error) {
	if v == nil {
		return 0, ErrNoVehicle
	}
	return a.ScoreAtPrice(ctx, v, p, a.FuelPrice(ctx, v))
}

func (a *EconomyAgent) FuelPrice(ctx context.Context, v *store.Vehicle) float64 {
	return a.tco.FuelPrice(ctx, v.Fuel)
}

func (a *EconomyAgent) ScoreAtPrice(ctx context.Context, v *store.Vehicle, p *profile.Profile, fuelPrice float64) (float64, error) {
	if v == nil {
		return 0, ErrNoVehicle
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	running := a.tco.RunningCostAt(v, p, fuelPrice)
	cost := clamp((expensiveRunning-running)/(expensiveRunning-cheapRunning), 0, 1)
	return clamp(0.6*cost+0.4*v.ScoreEconomy, 0, 1), nil
}

var categorySpace = map[store.Category]float64{
	store.CategoryCompact: 0.30,
	store.CategoryHatch:   0.50,
	store.CategorySedan:   0.65,
	store.CategoryPickup:  0.70,
	store.CategorySUV:     0.85,
	store.CategoryVan:     1.00,
}

var categorySeats = map[store.Category]int{
	store.CategoryCompact: 4,
	store.CategoryHatch:   5,
	store.CategorySedan:   5,
	store.CategoryPickup:  5,
	store.CategorySUV:     7,
	store.CategoryVan:     8,
}

// SpaceAgent blends the family baseline with body-type room, halving the
// score when the household does not fit.
type SpaceAgent struct{}

func (SpaceAgent) Name() string { return profile.DimSpace }

func (SpaceAgent) Score(_ context.Context, v *store.Vehicle, p *profile.Profile) (float64, error) {
	if v == nil {
		return 0, ErrNoVehicle
	}
	cat := store.NormalizeCategory(string(v.Category))
	room, ok := categorySpace[cat]
	if !ok {
		room = 0.5
	}
	score := 0.6*v.ScoreFamily + 0.4*room
	if seats, ok := categorySeats[cat]; ok && p.FamilySize > seats {
		score *= 0.5
	}
	return clamp(score, 0, 1), nil
}

// PerformanceAgent passes the baseline rating through.
type PerformanceAgent struct{}

func (PerformanceAgent) Name() string { return profile.DimPerformance }

func (PerformanceAgent) Score(_ context.Context, v *store.Vehicle, _ *profile.Profile) (float64, error) {
	if v == nil {
		return 0, ErrNoVehicle
	}
	return clamp(v.ScorePerformance, 0, 1), nil
}

// ComfortAgent is the baseline rating with a small bonus for automatic
// transmissions.
type ComfortAgent struct{}

func (ComfortAgent) Name() string { return profile.DimComfort }

func (ComfortAgent) Score(_ context.Context, v *store.Vehicle, _ *profile.Profile) (float64, error) {
	if v == nil {
		return 0, ErrNoVehicle
	}
	score := v.ScoreComfort
	if t := strings.ToLower(v.Transmission); strings.Contains(t, "auto") || t == "cvt" {
		score += 0.05
	}
	return clamp(score, 0, 1), nil
}

// SafetyAgent discounts the baseline rating by 0.02 per year beyond five
// years of age, at most 0.3.
type SafetyAgent struct {
	metrics *valuation.Calculator
}

func (a *SafetyAgent) Name() string { return profile.DimSafety }

func (a *SafetyAgent) Score(_ context.Context, v *store.Vehicle, _ *profile.Profile) (float64, error) {
	if v == nil {
		return 0, ErrNoVehicle
	}
	score := v.ScoreSafety
	if age := a.metrics.Age(v.Year); age > 5 {
		score -= math.Min(0.3, float64(age-5)*0.02)
	}
	return clamp(score, 0, 1), nil
}

// Maintenance band used to normalise yearly upkeep.
const (
	cheapMaintenance     = 2000.0
	expensiveMaintenance = 7000.0
)

// ReliabilityAgent is the maintenance agent: reliability index blended with
// normalised yearly maintenance cost.
type ReliabilityAgent struct {
	metrics *valuation.Calculator
}

func (a *ReliabilityAgent) Name() string { return profile.DimReliability }

func (a *ReliabilityAgent) Score(_ context.Context, v *store.Vehicle, _ *profile.Profile) (float64, error) {
	if v == nil {
		return 0, ErrNoVehicle
	}
	reliability := a.metrics.Reliability(v.Brand, v.Year, v.Mileage)
	cost := a.metrics.MaintenanceCost(v.Brand, v.Year, v.Mileage)
	upkeep := clamp((expensiveMaintenance-cost)/(expensiveMaintenance-cheapMaintenance), 0, 1)
	return clamp(0.7*reliability+0.3*upkeep, 0, 1), nil
}

// ResaleAgent returns the resale index directly.
type ResaleAgent struct {
	metrics *valuation.Calculator
}

func (a *ResaleAgent) Name() string { return profile.DimResale }

func (a *ResaleAgent) Score(_ context.Context, v *store.Vehicle, _ *profile.Profile) (float64, error) {
	if v == nil {
		return 0, ErrNoVehicle
	}
	return a.metrics.Resale(v.Brand, v.Category, v.Year), nil
}

// FinancingAgent blends the buyer's credit health with where the price sits
// inside their budget.
type FinancingAgent struct {
	financing *financing.Agent
}

func (a *FinancingAgent) Name() string { return profile.DimFinancing }

func (a *FinancingAgent) Score(_ context.Context, v *store.Vehicle, p *profile.Profile) (float64, error) {
	if v == nil {
		return 0, ErrNoVehicle
	}
	credit := a.financing.CalculateScore(p)
	return clamp(0.7*credit+0.3*budgetPosition(v.Price, p), 0, 1), nil
}

// budgetPosition is 1 at the bottom of the budget and 0 at the top.
func budgetPosition(price float64, p *profile.Profile) float64 {
	span := p.BudgetMax - p.BudgetMin
	if p.BudgetMax <= 0 {
		return 0.5
	}
	if span <= 0 {
		return 1
	}
	return clamp(1-(price-p.BudgetMin)/span, 0, 1)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
