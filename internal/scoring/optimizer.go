package scoring

import (
	"context"
	"log/slog"
	"math"

	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
	"github.com/MikeSquared-Agency/Shortlist/internal/semantic"
)

// DeltaSource infers implicit priority adjustments for a profile.
type DeltaSource interface {
	AnalyzeProfile(ctx context.Context, p *profile.Profile) semantic.Deltas
}

// Optimizer resolves the final weight vector for a profile.
type Optimizer struct {
	deltas DeltaSource
	logger *slog.Logger
}

// NewOptimizer builds an optimizer. A nil source means no inferred deltas.
func NewOptimizer(deltas DeltaSource, logger *slog.Logger) *Optimizer {
	return &Optimizer{deltas: deltas, logger: logger}
}

// Resolve consults the delta source once and blends the result with the
// profile's explicit priorities.
func (o *Optimizer) Resolve(ctx context.Context, p *profile.Profile) WeightSet {
	for name := range p.Priorities {
		if !profile.IsDimension(name) {
			o.logger.Warn("ignoring unknown priority", "priority", name)
		}
	}

	d := semantic.ZeroDeltas()
	if o.deltas != nil {
		d = o.deltas.AnalyzeProfile(ctx, p)
	}
	w := Blend(p.Priorities, d)
	o.logger.Debug("weights resolved", "weights", w)
	return w
}

// Blend normalises the explicit priorities, adds the deltas, clamps each
// dimension at zero and normalises again. With no explicit priorities the
// positive deltas alone are normalised; with no information at all the
// result is uniform.
func Blend(explicit map[string]int, deltas semantic.Deltas) WeightSet {
	base := make(WeightSet, len(profile.Dimensions))
	for _, dim := range profile.Dimensions {
		if v := explicit[dim]; v > 0 {
			base[dim] = float64(v)
		}
	}

	if norm, ok := base.normalized(); ok {
		adjusted := make(WeightSet, len(profile.Dimensions))
		for _, dim := range profile.Dimensions {
			adjusted[dim] = math.Max(0, norm[dim]+deltas[dim])
		}
		if out, ok := adjusted.normalized(); ok {
			return out
		}
		return norm
	}

	inferred := make(WeightSet, len(profile.Dimensions))
	for _, dim := range profile.Dimensions {
		inferred[dim] = math.Max(0, deltas[dim])
	}
	if out, ok := inferred.normalized(); ok {
		return out
	}
	return UniformWeights()
}
