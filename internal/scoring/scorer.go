package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/Shortlist/internal/cache"
	"github.com/MikeSquared-Agency/Shortlist/internal/metrics"
	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
	"github.com/MikeSquared-Agency/Shortlist/internal/store"
)

// Preference bonuses, in match-percentage points.
const (
	preferredBrandBonus = 4.0
	preferredBodyBonus  = 3.0
	preferredFuelBonus  = 3.0

	neutralScore     = 0.5
	justificationTop = 3
)

// ScoringResult captures the complete scoring output for one vehicle.
type ScoringResult struct {
	VehicleID       string         `json:"vehicle_id"`
	Composite       float64        `json:"composite"`
	MatchPercentage float64        `json:"match_percentage"`
	PreferenceBonus float64        `json:"preference_bonus"`
	Factors         []FactorResult `json:"factors"`
	Justification   string         `json:"justification"`
}

// Factor returns the named factor, if present.
func (r ScoringResult) Factor(name string) (FactorResult, bool) {
	for _, f := range r.Factors {
		if f.Name == name {
			return f, true
		}
	}
	return FactorResult{}, false
}

// Scorer is the orchestrator: it runs every agent for a vehicle and folds
// the results into a composite score.
type Scorer struct {
	agents []Agent
	cache  *cache.Manager
	logger *slog.Logger
}

// NewScorer creates a Scorer over agents, evaluated in the given order. A nil
// cache disables memoisation.
func NewScorer(agents []Agent, c *cache.Manager, logger *slog.Logger) *Scorer {
	return &Scorer{agents: agents, cache: c, logger: logger}
}

// ScoreCandidate computes the full scoring result for one vehicle under a
// resolved weight vector. Agent failures fall back to a neutral score; only
// context cancellation is returned as an error.
func (s *Scorer) ScoreCandidate(ctx context.Context, v *store.Vehicle, p *profile.Profile, fingerprint string, weights WeightSet) (ScoringResult, error) {
	result := ScoringResult{VehicleID: v.ID.String()}

	factors := make([]FactorResult, 0, len(s.agents))
	for _, agent := range s.agents {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		f := FactorResult{Name: agent.Name(), Available: true}
		score, err := s.score(ctx, agent, v, p, fingerprint)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			metrics.AgentFailures.WithLabelValues(agent.Name()).Inc()
			s.logger.Warn("agent failed, using neutral score",
				"agent", agent.Name(), "vehicle_id", result.VehicleID, "error", err)
			score, f.Available, f.Reason = neutralScore, false, err.Error()
		}
		f.Score = clamp(score, 0, 1)
		f.Weight = weights[f.Name]
		f.Weighted = f.Score * f.Weight
		result.Composite += f.Weighted
		factors = append(factors, f)
	}
	result.Factors = factors

	result.PreferenceBonus = PreferenceBonus(v, p)
	match := math.Min(100, result.Composite*100+result.PreferenceBonus)
	result.MatchPercentage = math.Round(match*10) / 10
	result.Justification = justify(factors, v, p)

	metrics.CandidatesScored.Inc()
	s.logger.Debug("vehicle scored",
		"vehicle_id", result.VehicleID,
		"composite", result.Composite,
		"match_percentage", result.MatchPercentage,
	)
	return result, nil
}

func (s *Scorer) score(ctx context.Context, agent Agent, v *store.Vehicle, p *profile.Profile, fingerprint string) (float64, error) {
	if s.cache == nil {
		return agent.Score(ctx, v, p)
	}
	key := cache.Key{VehicleID: v.ID.String(), Fingerprint: fingerprint, Agent: agent.Name()}
	if fs, ok := agent.(FuelSensitive); ok {
		price := fs.FuelPrice(ctx, v)
		key.Agent += "@" + strconv.FormatFloat(price, 'f', 4, 64)
		return s.cache.GetOrCompute(ctx, key, func(ctx context.Context) (float64, error) {
			return fs.ScoreAtPrice(ctx, v, p, price)
		})
	}
	return s.cache.GetOrCompute(ctx, key, func(ctx context.Context) (float64, error) {
		return agent.Score(ctx, v, p)
	})
}

// PreferenceBonus adds match points for soft brand, body-type and fuel
// preferences.
func PreferenceBonus(v *store.Vehicle, p *profile.Profile) float64 {
	var bonus float64
	if profile.ContainsFold(p.PreferredBrands, v.Brand) {
		bonus += preferredBrandBonus
	}
	if profile.ContainsFold(p.PreferredBodyTypes, string(v.Category)) {
		bonus += preferredBodyBonus
	}
	if p.FuelPreference != "" && strings.EqualFold(strings.TrimSpace(p.FuelPreference), string(v.Fuel)) {
		bonus += preferredFuelBonus
	}
	return bonus
}

var dimensionLabels = map[string]string{
	profile.DimEconomy:     "running costs",
	profile.DimSpace:       "space",
	profile.DimPerformance: "performance",
	profile.DimComfort:     "comfort",
	profile.DimSafety:      "safety",
	profile.DimReliability: "reliability",
	profile.DimResale:      "resale value",
	profile.DimFinancing:   "financing",
}

// justify names the top weighted contributors. Ties break by dimension name
// so the text is stable.
func justify(factors []FactorResult, v *store.Vehicle, p *profile.Profile) string {
	ranked := make([]FactorResult, 0, len(factors))
	for _, f := range factors {
		if f.Weighted > 0 {
			ranked = append(ranked, f)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Weighted != ranked[j].Weighted {
			return ranked[i].Weighted > ranked[j].Weighted
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > justificationTop {
		ranked = ranked[:justificationTop]
	}

	parts := make([]string, 0, len(ranked))
	for _, f := range ranked {
		label := dimensionLabels[f.Name]
		if label == "" {
			label = f.Name
		}
		parts = append(parts, fmt.Sprintf("%s (%.0f%%)", label, f.Score*100))
	}

	var b strings.Builder
	b.WriteString(v.DisplayName())
	if len(parts) == 0 {
		b.WriteString(" fits your filters")
	} else {
		b.WriteString(" stands out on ")
		b.WriteString(joinList(parts))
	}
	var prefs []string
	if profile.ContainsFold(p.PreferredBrands, v.Brand) {
		prefs = append(prefs, "preferred brand")
	}
	if profile.ContainsFold(p.PreferredBodyTypes, string(v.Category)) {
		prefs = append(prefs, "preferred body type")
	}
	if p.FuelPreference != "" && strings.EqualFold(strings.TrimSpace(p.FuelPreference), string(v.Fuel)) {
		prefs = append(prefs, "preferred fuel")
	}
	if len(prefs) > 0 {
		b.WriteString("; matches your ")
		b.WriteString(joinList(prefs))
	}
	b.WriteString(".")
	return b.String()
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
