package domain

// RiskTolerance is the qualitative risk input. It maps to a numeric scaling of
// the optimization objective and to the candidate-selection filter.
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskBalanced     RiskTolerance = "balanced"
	RiskAggressive   RiskTolerance = "aggressive"
)

// Valid reports whether the tolerance is one of the three accepted values.
func (r RiskTolerance) Valid() bool {
	switch r {
	case RiskConservative, RiskBalanced, RiskAggressive:
		return true
	}
	return false
}

// Multiplier returns the objective scaling factor for the tolerance.
// Conservative flattens the risk-adjusted preference, aggressive sharpens it.
func (r RiskTolerance) Multiplier() float64 {
	switch r {
	case RiskConservative:
		return 0.5
	case RiskAggressive:
		return 1.5
	default:
		return 1.0
	}
}
