package projector

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
)

const (
	// EdgeThreshold is the minimum |edge %| before a side is recommended.
	EdgeThreshold = 5.0
	// ProbabilityThreshold is the minimum model probability for the recommended side.
	ProbabilityThreshold = 0.55

	underCeiling = 0.45
)

// EdgePct is the projection's distance from the line as a percent of the line. A zero line yields 0.
func EdgePct(adjusted, threshold float64) float64 {
	if threshold == 0 {
		return 0
	}
	return (adjusted - threshold) / threshold * 100
}

// OverProbability is P(X > threshold) for X ~ N(adjusted, stdDev). Zero deviation is a hard 0/1.
func OverProbability(adjusted, stdDev, threshold float64) float64 {
	if stdDev <= 0 {
		if adjusted > threshold {
			return 1
		}
		return 0
	}
	z := (threshold - adjusted) / stdDev
	return 1 - distuv.UnitNormal.CDF(z)
}

// Recommend applies the edge and probability gates.
func Recommend(edgePct, overProb float64) projections.Recommendation {
	switch {
	case edgePct >= EdgeThreshold && overProb >= ProbabilityThreshold:
		return projections.RecommendOver
	case edgePct <= -EdgeThreshold && overProb <= underCeiling:
		return projections.RecommendUnder
	default:
		return projections.RecommendPass
	}
}

// Evaluate compares a projection against a line.
func Evaluate(adjusted, stdDev, threshold float64) projections.Evaluation {
	edge := EdgePct(adjusted, threshold)
	over := OverProbability(adjusted, stdDev, threshold)
	return projections.Evaluation{
		EdgePct:        edge,
		OverProb:       over,
		UnderProb:      1 - over,
		Recommendation: Recommend(edge, over),
	}
}
