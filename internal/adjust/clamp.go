// Package adjust computes the clamped multipliers applied to a baseline projection.
package adjust

import "math"

// Range bounds a single factor.
type Range struct {
	Min float64
	Max float64
}

var (
	MatchupRange  = Range{Min: 0.80, Max: 1.20}
	PaceRange     = Range{Min: 0.85, Max: 1.15}
	BlowoutRange  = Range{Min: 0.92, Max: 1.00}
	InjuryRange   = Range{Min: 1.00, Max: 1.15}
	FormRange     = Range{Min: 0.92, Max: 1.08}
	OpponentRange = Range{Min: 0.90, Max: 1.10}
)

// Clamp bounds v to the range. NaN maps to neutral 1.0 before bounding.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		v = 1
	}
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}
