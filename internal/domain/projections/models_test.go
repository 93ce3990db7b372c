package projections

import "testing"

func TestNeutralFactorsAreOne(t *testing.T) {
	f := NeutralFactors()
	for i, v := range f.Ordered() {
		if v != 1 {
			t.Fatalf("factor %d expected 1, got %v", i, v)
		}
	}
	if f.BlowoutSource != BlowoutNone {
		t.Fatalf("expected no blowout source, got %s", f.BlowoutSource)
	}
}

func TestOrderedFollowsApplicationOrder(t *testing.T) {
	f := Factors{Matchup: 1, Pace: 2, Home: 3, Rest: 4, Blowout: 5, Injury: 6, Form: 7, OpponentStrength: 8}
	got := f.Ordered()
	for i, v := range got {
		if v != float64(i+1) {
			t.Fatalf("position %d expected %d got %v", i, i+1, v)
		}
	}
}

func TestProjectionRecommendationDefaultsToPass(t *testing.T) {
	var p Projection
	if p.Recommendation() != RecommendPass || p.EdgePct() != 0 {
		t.Fatalf("expected pass with zero edge for projection without a line")
	}
	p.Evaluation = &Evaluation{Recommendation: RecommendOver, EdgePct: 7.5}
	if p.Recommendation() != RecommendOver || p.EdgePct() != 7.5 {
		t.Fatalf("unexpected evaluation passthrough")
	}
}

func TestLineMarketCarriesPrices(t *testing.T) {
	l := Line{Line: 24.5, OverPrice: Price(-115), UnderPrice: Price(-105), Sportsbook: "fanduel"}
	m := l.Market()
	if !m.HasPrices() || *m.OverPrice != -115 || *m.UnderPrice != -105 || m.Line != 24.5 {
		t.Fatalf("unexpected market %+v", m)
	}
	if (Market{Line: 10, OverPrice: Price(-110)}).HasPrices() {
		t.Fatalf("expected one-sided market to report missing prices")
	}
}

func TestOutcomeOverHit(t *testing.T) {
	line := 20.5
	cases := []struct {
		actual float64
		line   *float64
		want   *bool
	}{
		{25, &line, boolPtr(true)},
		{18, &line, boolPtr(false)},
		{20.5, &line, nil},
		{30, nil, nil},
	}
	for _, tc := range cases {
		got := GradedOutcome{Actual: tc.actual, Line: tc.line}.OverHit()
		if (got == nil) != (tc.want == nil) || (got != nil && *got != *tc.want) {
			t.Fatalf("actual %v: unexpected over hit %v", tc.actual, got)
		}
	}
}

func boolPtr(v bool) *bool { return &v }
