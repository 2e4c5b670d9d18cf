package semantic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
)

// BuildPrompt renders the profile signals the explicit priorities may miss.
func BuildPrompt(p *profile.Profile) string {
	var parts []string

	parts = append(parts, "Estimate how much this car buyer implicitly cares about each dimension, beyond what they stated.")
	parts = append(parts, "\nBuyer profile:")
	parts = append(parts, fmt.Sprintf("- budget: %.0f to %.0f", p.BudgetMin, p.BudgetMax))
	if p.UsageType != "" {
		parts = append(parts, "- main usage: "+p.UsageType)
	}
	parts = append(parts, fmt.Sprintf("- family size: %d", p.FamilySize))
	parts = append(parts, fmt.Sprintf("- has children: %t", p.HasChildren))
	parts = append(parts, fmt.Sprintf("- has elderly passengers: %t", p.HasElderly))
	parts = append(parts, fmt.Sprintf("- first-time buyer: %t", p.FirstTimeBuyer))
	if bracket := p.IncomeBracket(); bracket != "" {
		parts = append(parts, "- monthly income range: "+bracket)
	}
	if p.FuelPreference != "" {
		parts = append(parts, "- fuel preference: "+p.FuelPreference)
	}
	if len(p.PreferredBodyTypes) > 0 {
		parts = append(parts, "- preferred body types: "+strings.Join(p.PreferredBodyTypes, ", "))
	}
	if p.HasExplicitPriorities() {
		keys := make([]string, 0, len(p.Priorities))
		for k := range p.Priorities {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var stated []string
		for _, k := range keys {
			stated = append(stated, fmt.Sprintf("%s=%d", k, p.Priorities[k]))
		}
		parts = append(parts, "- stated priorities (1-5): "+strings.Join(stated, ", "))
	}

	parts = append(parts, "\nInstructions:")
	parts = append(parts, "- Reply with one JSON object with numeric keys: "+strings.Join(profile.SemanticDimensions, ", "))
	parts = append(parts, fmt.Sprintf("- Each value is an adjustment between %.2f and %.2f; use 0 when there is no signal", -MaxDelta, MaxDelta))
	parts = append(parts, "- Do not include any other text")

	return strings.Join(parts, "\n")
}
