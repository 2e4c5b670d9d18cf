package profile

// Monthly income brackets, lowest to highest.
const (
	IncomeUpTo3000 = "0-3000"
	Income3000To5k = "3000-5000"
	Income5kTo8k   = "5000-8000"
	Income8kTo12k  = "8000-12000"
	IncomeAbove12k = "12000+"
)

var incomeMidpoints = map[string]float64{
	IncomeUpTo3000: 2000,
	Income3000To5k: 4000,
	Income5kTo8k:   6500,
	Income8kTo12k:  10000,
	IncomeAbove12k: 15000,
}

// IsIncomeBracket reports whether s is a recognised bracket label.
func IsIncomeBracket(s string) bool {
	_, ok := incomeMidpoints[s]
	return ok
}

// IncomeMidpoint returns a representative monthly income for a bracket.
func IncomeMidpoint(bracket string) (float64, bool) {
	v, ok := incomeMidpoints[bracket]
	return v, ok
}
