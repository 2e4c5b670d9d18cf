package engine

import (
	"strings"

	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
	"github.com/MikeSquared-Agency/Shortlist/internal/store"
)

// FilterByBudget keeps eligible vehicles priced within the profile's budget,
// bounds inclusive. Records with a non-positive price, the moto category or
// available=false never pass.
func FilterByBudget(vehicles []*store.Vehicle, p *profile.Profile) []*store.Vehicle {
	out := make([]*store.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if !v.Eligible() {
			continue
		}
		if v.Price < p.BudgetMin || v.Price > p.BudgetMax {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ApplyHardFilters drops vehicles that violate any optional hard constraint:
// year range, required or rejected brands and body types, and location.
func ApplyHardFilters(vehicles []*store.Vehicle, p *profile.Profile) []*store.Vehicle {
	out := make([]*store.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if MatchesFilters(v, p) {
			out = append(out, v)
		}
	}
	return out
}

// MatchesFilters reports whether v satisfies every hard filter on p.
func MatchesFilters(v *store.Vehicle, p *profile.Profile) bool {
	if p.YearMin > 0 && v.Year < p.YearMin {
		return false
	}
	if p.YearMax > 0 && v.Year > p.YearMax {
		return false
	}

	category := string(store.NormalizeCategory(string(v.Category)))
	if len(p.RequiredBrands) > 0 && !profile.ContainsFold(p.RequiredBrands, v.Brand) {
		return false
	}
	if len(p.RequiredBodyTypes) > 0 && !profile.ContainsFold(p.RequiredBodyTypes, category) {
		return false
	}
	if profile.ContainsFold(p.RejectedBrands, v.Brand) {
		return false
	}
	if profile.ContainsFold(p.RejectedBodyTypes, category) {
		return false
	}

	if p.State != "" && !strings.EqualFold(strings.TrimSpace(p.State), v.DealershipState) {
		return false
	}
	if p.City != "" && !strings.EqualFold(strings.TrimSpace(p.City), v.DealershipCity) {
		return false
	}
	return true
}
