package scoring

// ParetoCandidate represents a scored vehicle across the trade-off axes a
// buyer weighs against each other.
type ParetoCandidate struct {
	VehicleID    string  `json:"vehicle_id"`
	Match        float64 `json:"match"`
	TotalMonthly float64 `json:"total_monthly"` // lower is better
	Resale       float64 `json:"resale"`
}

// ComputeFrontier returns the Pareto-optimal candidates from the input set.
// A candidate is dominated if another candidate is >= on match and resale
// and <= on monthly cost, and strictly better on at least one.
// O(n^2) dominance check, fine for filtered inventory sizes.
func ComputeFrontier(candidates []ParetoCandidate) []ParetoCandidate {
	if len(candidates) <= 1 {
		return candidates
	}

	var frontier []ParetoCandidate
	for i := range candidates {
		dominated := false
		for j := range candidates {
			if i == j {
				continue
			}
			if dominates(candidates[j], candidates[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, candidates[i])
		}
	}
	return frontier
}

// dominates returns true if a dominates b.
func dominates(a, b ParetoCandidate) bool {
	if a.Match < b.Match || a.Resale < b.Resale || a.TotalMonthly > b.TotalMonthly {
		return false
	}
	return a.Match > b.Match || a.Resale > b.Resale || a.TotalMonthly < b.TotalMonthly
}
