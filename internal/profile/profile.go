package profile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidProfile is returned when a profile fails validation. Callers
// surface it as a client-input error.
var ErrInvalidProfile = errors.New("invalid profile")

// Priority dimensions, in the fixed order used by the weight vector.
const (
	DimEconomy     = "economy"
	DimSpace       = "space"
	DimPerformance = "performance"
	DimComfort     = "comfort"
	DimSafety      = "safety"
	DimReliability = "reliability"
	DimResale      = "resale"
	DimFinancing   = "financing"
)

// Dimensions lists every priority dimension in scoring order.
var Dimensions = []string{
	DimEconomy, DimSpace, DimPerformance, DimComfort, DimSafety,
	DimReliability, DimResale, DimFinancing,
}

// SemanticDimensions are the dimensions the inference provider may adjust.
var SemanticDimensions = []string{DimSafety, DimSpace, DimComfort, DimPerformance, DimEconomy}

// IsDimension reports whether name is a known priority dimension.
func IsDimension(name string) bool {
	for _, d := range Dimensions {
		if d == name {
			return true
		}
	}
	return false
}

// Usage types drive the monthly distance assumption.
const (
	UsageCity    = "city"
	UsageMixed   = "mixed"
	UsageHighway = "highway"
	UsageFamily  = "family"
	UsageWork    = "work"
)

// FinancialCapacity is the optional, user-disclosed financial context.
type FinancialCapacity struct {
	Disclosed          bool     `json:"disclosed"`
	MonthlyIncomeRange string   `json:"monthly_income_range,omitempty"`
	MaxMonthlyTCO      *float64 `json:"max_monthly_tco,omitempty"`
}

// MonthlyCap returns the declared total-monthly-cost cap, if any.
func (fc *FinancialCapacity) MonthlyCap() (float64, bool) {
	if fc == nil || !fc.Disclosed || fc.MaxMonthlyTCO == nil || *fc.MaxMonthlyTCO <= 0 {
		return 0, false
	}
	return *fc.MaxMonthlyTCO, true
}

// Profile describes a buyer. Priorities map a dimension name to an integer
// weight (typically 1-5); an empty or all-zero map means "infer implicitly".
type Profile struct {
	BudgetMin float64 `json:"budget_min"`
	BudgetMax float64 `json:"budget_max"`

	UsageType      string `json:"usage_type,omitempty"`
	FamilySize     int    `json:"family_size"`
	HasChildren    bool   `json:"has_children"`
	HasElderly     bool   `json:"has_elderly"`
	FirstTimeBuyer bool   `json:"first_time_buyer"`

	Priorities map[string]int `json:"priorities,omitempty"`

	PreferredBrands    []string `json:"preferred_brands,omitempty"`
	RejectedBrands     []string `json:"rejected_brands,omitempty"`
	PreferredBodyTypes []string `json:"preferred_body_types,omitempty"`
	RejectedBodyTypes  []string `json:"rejected_body_types,omitempty"`
	FuelPreference     string   `json:"fuel_preference,omitempty"`

	// Hard filters
	YearMin           int      `json:"year_min,omitempty"`
	YearMax           int      `json:"year_max,omitempty"`
	RequiredBrands    []string `json:"required_brands,omitempty"`
	RequiredBodyTypes []string `json:"required_body_types,omitempty"`
	State             string   `json:"state,omitempty"`
	City              string   `json:"city,omitempty"`

	FinancialCapacity *FinancialCapacity `json:"financial_capacity,omitempty"`
}

// Validate checks the structural invariants of a profile. It never corrects
// input; every violation is reported.
func (p *Profile) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: profile is required", ErrInvalidProfile)
	}
	var problems []string
	if p.BudgetMin < 0 {
		problems = append(problems, "budget_min must be non-negative")
	}
	if p.BudgetMax < 0 {
		problems = append(problems, "budget_max must be non-negative")
	}
	if p.BudgetMin > p.BudgetMax {
		problems = append(problems, fmt.Sprintf("budget_min (%.2f) exceeds budget_max (%.2f)", p.BudgetMin, p.BudgetMax))
	}
	if p.FamilySize < 0 {
		problems = append(problems, "family_size must be non-negative")
	}
	if p.YearMin < 0 || p.YearMax < 0 {
		problems = append(problems, "year range must be non-negative")
	}
	if p.YearMin > 0 && p.YearMax > 0 && p.YearMin > p.YearMax {
		problems = append(problems, "year_min exceeds year_max")
	}
	for _, name := range sortedKeys(p.Priorities) {
		if p.Priorities[name] < 0 {
			problems = append(problems, "priority "+name+" must be non-negative")
		}
	}
	if fc := p.FinancialCapacity; fc != nil {
		if fc.MaxMonthlyTCO != nil && *fc.MaxMonthlyTCO < 0 {
			problems = append(problems, "max_monthly_tco must be non-negative")
		}
		if fc.MonthlyIncomeRange != "" && !IsIncomeBracket(fc.MonthlyIncomeRange) {
			problems = append(problems, "unknown monthly_income_range "+fc.MonthlyIncomeRange)
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(problems, "; "))
	}
	return nil
}

// HasExplicitPriorities reports whether at least one priority is positive.
func (p *Profile) HasExplicitPriorities() bool {
	for _, v := range p.Priorities {
		if v > 0 {
			return true
		}
	}
	return false
}

// IncomeBracket returns the disclosed income bracket, or "".
func (p *Profile) IncomeBracket() string {
	if p.FinancialCapacity == nil || !p.FinancialCapacity.Disclosed {
		return ""
	}
	return p.FinancialCapacity.MonthlyIncomeRange
}

// Fingerprint returns a stable identifier over the fields that influence
// scoring. Slice order and letter case do not change the fingerprint.
func (p *Profile) Fingerprint() string {
	canonical := map[string]interface{}{
		"budget_min":           p.BudgetMin,
		"budget_max":           p.BudgetMax,
		"usage_type":           norm(p.UsageType),
		"family_size":          p.FamilySize,
		"has_children":         p.HasChildren,
		"has_elderly":          p.HasElderly,
		"first_time_buyer":     p.FirstTimeBuyer,
		"priorities":           p.Priorities,
		"preferred_brands":     normSet(p.PreferredBrands),
		"rejected_brands":      normSet(p.RejectedBrands),
		"preferred_body_types": normSet(p.PreferredBodyTypes),
		"rejected_body_types":  normSet(p.RejectedBodyTypes),
		"fuel_preference":      norm(p.FuelPreference),
		"income":               p.IncomeBracket(),
	}
	if limit, ok := p.FinancialCapacity.MonthlyCap(); ok {
		canonical["max_monthly_tco"] = limit
	}
	// encoding/json sorts map keys, which makes the encoding canonical.
	data, _ := json.Marshal(canonical)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normSet(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = norm(s); s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ContainsFold reports whether list contains s, ignoring case and padding.
func ContainsFold(list []string, s string) bool {
	s = norm(s)
	for _, v := range list {
		if norm(v) == s {
			return true
		}
	}
	return false
}
