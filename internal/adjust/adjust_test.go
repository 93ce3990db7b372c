package adjust

import (
	"math"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
)

var adversarial = []float64{
	math.Inf(-1), -1e300, -5, -1, 0, 1e-12, 0.5, 0.79, 0.8, 0.999, 1, 1.001, 1.2, 1.5, 3, 1e300, math.Inf(1), math.NaN(),
}

func TestClampStaysInRangeForAdversarialInputs(t *testing.T) {
	ranges := map[string]Range{
		"matchup":  MatchupRange,
		"pace":     PaceRange,
		"blowout":  BlowoutRange,
		"injury":   InjuryRange,
		"form":     FormRange,
		"opponent": OpponentRange,
	}
	for name, r := range ranges {
		for _, v := range adversarial {
			got := r.Clamp(v)
			if math.IsNaN(got) || !r.Contains(got) {
				t.Fatalf("%s: clamp(%v) = %v outside [%v, %v]", name, v, got, r.Min, r.Max)
			}
		}
	}
}

func TestClampNaNIsNeutral(t *testing.T) {
	if got := MatchupRange.Clamp(math.NaN()); got != 1 {
		t.Fatalf("expected NaN to clamp to 1, got %v", got)
	}
}

func TestBuildClampsEveryFactorForAdversarialInputs(t *testing.T) {
	for _, v := range adversarial {
		spread := v
		f := Build(Inputs{
			RawMatchup:        v,
			RawPace:           v,
			Injury:            v,
			FormValues:        []float64{v, v, v, 1, 1, 1, 1, 1, 1, 1},
			LeagueDefRating:   110,
			OpponentDefRating: v,
			Blowout:           BlowoutInput{Spread: &spread},
		})
		checks := []struct {
			name string
			val  float64
			r    Range
		}{
			{"matchup", f.Matchup, MatchupRange},
			{"pace", f.Pace, PaceRange},
			{"blowout", f.Blowout, BlowoutRange},
			{"injury", f.Injury, InjuryRange},
			{"form", f.Form, FormRange},
			{"opponent", f.OpponentStrength, OpponentRange},
		}
		for _, c := range checks {
			if math.IsNaN(c.val) || !c.r.Contains(c.val) {
				t.Fatalf("input %v: %s factor %v outside range", v, c.name, c.val)
			}
		}
	}
}

func TestApplyEqualsBaselineTimesOrderedProduct(t *testing.T) {
	base := projections.NeutralFactors()
	variants := []func(*projections.Factors){
		func(f *projections.Factors) {},
		func(f *projections.Factors) { f.Matchup = 1.2 },
		func(f *projections.Factors) { f.Pace = 0.85 },
		func(f *projections.Factors) { f.Home = HomeBoost },
		func(f *projections.Factors) { f.Rest = BackToBackPenalty },
		func(f *projections.Factors) { f.Blowout = 0.92 },
		func(f *projections.Factors) { f.Injury = 1.15 },
		func(f *projections.Factors) { f.Form = 1.08 },
		func(f *projections.Factors) { f.OpponentStrength = 0.9 },
		func(f *projections.Factors) {
			f.Matchup, f.Pace, f.Home, f.Rest = 1.13, 1.04, HomeBoost, BackToBackPenalty
		},
		func(f *projections.Factors) {
			f.Matchup, f.Pace, f.Home, f.Rest, f.Blowout, f.Injury, f.Form, f.OpponentStrength =
				1.2, 1.15, 1.03, 1, 1, 1.15, 1.08, 1.1
		},
	}
	baseline := 22.05
	for i, mutate := range variants {
		f := base
		mutate(&f)
		want := baseline * f.Matchup * f.Pace * f.Home * f.Rest * f.Blowout * f.Injury * f.Form * f.OpponentStrength
		if got := Apply(baseline, f); got != want {
			t.Fatalf("variant %d: expected %v got %v", i, want, got)
		}
	}
}

func TestApplyDoesNotCapAggregateSwing(t *testing.T) {
	f := projections.NeutralFactors()
	f.Matchup, f.Pace, f.Home, f.Injury, f.Form, f.OpponentStrength = 1.2, 1.15, 1.03, 1.15, 1.08, 1.1
	got := Apply(10, f)
	if got <= 10*1.2 {
		t.Fatalf("expected cumulative swing beyond a single cap, got %v", got)
	}
}

func TestRestFactorOnlyForExactlyOneDay(t *testing.T) {
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		dates []time.Time
		want  float64
		b2b   bool
	}{
		{"one_day", []time.Time{day, day.AddDate(0, 0, -1)}, BackToBackPenalty, true},
		{"same_day", []time.Time{day, day}, 1, false},
		{"two_days", []time.Time{day, day.AddDate(0, 0, -2)}, 1, false},
		{"single_game", []time.Time{day}, 1, false},
		{"late_tip", []time.Time{day.Add(22 * time.Hour), day.AddDate(0, 0, -1).Add(time.Hour)}, BackToBackPenalty, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gap, ok := RestGap(tc.dates)
			got, b2b := RestFactor(gap, ok)
			if got != tc.want || b2b != tc.b2b {
				t.Fatalf("expected %v/%v got %v/%v", tc.want, tc.b2b, got, b2b)
			}
		})
	}
}

func TestHomeFactor(t *testing.T) {
	if HomeFactor(true) != 1.03 || HomeFactor(false) != 1 {
		t.Fatalf("unexpected home factors")
	}
}

func TestBlowoutPrefersSpreadThenRating(t *testing.T) {
	spread := 15.0
	f, src := BlowoutFactor(BlowoutInput{Spread: &spread, TeamMargin: 0, OpponentMargin: 0, MarginsKnown: true})
	if src != projections.BlowoutSpread || math.Abs(f-0.92) > 1e-12 {
		t.Fatalf("expected full spread penalty, got %v from %s", f, src)
	}

	f, src = BlowoutFactor(BlowoutInput{TeamMargin: -6, OpponentMargin: 8, MarginsKnown: true})
	want := 1 - 0.08*(14.0-8.0)/12.0
	if src != projections.BlowoutRating || math.Abs(f-want) > 1e-12 {
		t.Fatalf("expected rating fallback %v, got %v from %s", want, f, src)
	}

	f, src = BlowoutFactor(BlowoutInput{})
	if src != projections.BlowoutNone || f != 1 {
		t.Fatalf("expected neutral without data, got %v from %s", f, src)
	}
}

func TestBlowoutPenaltyShape(t *testing.T) {
	cases := []struct {
		gap, want float64
	}{
		{-20, 0},
		{8, 0},
		{11.5, 0.04},
		{15, 0.08},
		{40, 0.08},
	}
	for _, tc := range cases {
		if got := BlowoutPenalty(tc.gap, spreadFullPenalty); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("gap %v: expected %v got %v", tc.gap, tc.want, got)
		}
	}
}

func TestFormAndOpponentFactors(t *testing.T) {
	if got := FormFactor([]float64{40, 40, 40, 10, 10, 10, 10, 10, 10, 10}); got != FormRange.Max {
		t.Fatalf("expected form to clamp high, got %v", got)
	}
	if got := FormFactor([]float64{1, 1, 1, 30, 30, 30, 30, 30, 30, 30}); got != FormRange.Min {
		t.Fatalf("expected form to clamp low, got %v", got)
	}
	if got := FormFactor(nil); got != 1 {
		t.Fatalf("expected neutral form without history, got %v", got)
	}
	if got := OpponentStrengthFactor(112, 0); got != 1 {
		t.Fatalf("expected neutral for missing rating, got %v", got)
	}
	if got := OpponentStrengthFactor(110, 100); got != 1.1 {
		t.Fatalf("expected 1.1 for a weak defense, got %v", got)
	}
	if got := OpponentStrengthFactor(110, 111); math.Abs(got-110.0/111.0) > 1e-15 {
		t.Fatalf("expected unclamped ratio, got %v", got)
	}
}

func TestBuildCarriesTags(t *testing.T) {
	f := Build(Inputs{RawMatchup: 1, RawPace: 1, IsHome: true, RestGapDays: 1, RestKnown: true, Injury: 1.07, InjurySource: availability.SourceInferred})
	if !f.IsHome || f.Home != HomeBoost || !f.IsBackToBack || f.Rest != BackToBackPenalty {
		t.Fatalf("unexpected home/rest %+v", f)
	}
	if f.Injury != 1.07 || f.InjurySource != availability.SourceInferred {
		t.Fatalf("unexpected injury %+v", f)
	}
	if f.Matchup != 1 || f.Pace != 1 {
		t.Fatalf("expected neutral matchup/pace, got %+v", f)
	}
}

func TestBuildClampsZeroMatchupAndPaceToFloor(t *testing.T) {
	f := Build(Inputs{RawMatchup: 0, RawPace: 0, Injury: 0})
	if f.Matchup != MatchupRange.Min {
		t.Fatalf("expected zero conceded to clamp to %v, got %v", MatchupRange.Min, f.Matchup)
	}
	if f.Pace != PaceRange.Min {
		t.Fatalf("expected zero pace to clamp to %v, got %v", PaceRange.Min, f.Pace)
	}
	if f.Injury != InjuryRange.Min {
		t.Fatalf("expected injury floor, got %v", f.Injury)
	}
}
