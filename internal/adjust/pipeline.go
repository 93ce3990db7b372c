package adjust

import (
	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
)

// Inputs gathers the raw signals for one projection. Raw values are clamped here.
// Callers pass 1 for an unknown matchup or pace; 0 is a real value and clamps to the floor.
type Inputs struct {
	RawMatchup        float64
	RawPace           float64
	IsHome            bool
	RestGapDays       int
	RestKnown         bool
	Blowout           BlowoutInput
	Injury            float64
	InjurySource      availability.Source
	FormValues        []float64
	LeagueDefRating   float64
	OpponentDefRating float64
}

// Build clamps every raw signal and returns the factor set in application order:
// matchup, pace, home, rest, blowout, injury, form, opponent strength.
func Build(in Inputs) projections.Factors {
	f := projections.NeutralFactors()
	f.Matchup = MatchupRange.Clamp(in.RawMatchup)
	f.Pace = PaceRange.Clamp(in.RawPace)
	f.IsHome = in.IsHome
	f.Home = HomeFactor(in.IsHome)
	f.Rest, f.IsBackToBack = RestFactor(in.RestGapDays, in.RestKnown)
	f.Blowout, f.BlowoutSource = BlowoutFactor(in.Blowout)
	f.Injury = InjuryRange.Clamp(in.Injury)
	if in.InjurySource != "" {
		f.InjurySource = in.InjurySource
	}
	f.Form = FormFactor(in.FormValues)
	f.OpponentStrength = OpponentStrengthFactor(in.LeagueDefRating, in.OpponentDefRating)
	return f
}

// Apply multiplies baseline by each factor in order. The product is not capped.
func Apply(baseline float64, f projections.Factors) float64 {
	v := baseline
	for _, factor := range f.Ordered() {
		v *= factor
	}
	return v
}
