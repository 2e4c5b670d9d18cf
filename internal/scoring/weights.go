package scoring

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
)

// WeightSet defines the relative importance of each priority dimension.
// A resolved set sums to 1.0 (±0.001 tolerance).
type WeightSet map[string]float64

// UniformWeights spreads weight evenly over every dimension.
func UniformWeights() WeightSet {
	w := make(WeightSet, len(profile.Dimensions))
	for _, d := range profile.Dimensions {
		w[d] = 1.0 / float64(len(profile.Dimensions))
	}
	return w
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum
}

// Validate checks that weights sum to 1.0, none are negative and every key
// is a known dimension.
func (w WeightSet) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for name, v := range w {
		if !profile.IsDimension(name) {
			return fmt.Errorf("unknown dimension %q", name)
		}
		if v < 0 {
			return fmt.Errorf("negative weight for %s: %f", name, v)
		}
	}
	return nil
}

// normalized scales w to sum to 1. It returns false when nothing is
// positive.
func (w WeightSet) normalized() (WeightSet, bool) {
	sum := w.Sum()
	if sum <= 0 {
		return nil, false
	}
	out := make(WeightSet, len(profile.Dimensions))
	for _, d := range profile.Dimensions {
		out[d] = w[d] / sum
	}
	return out, true
}
