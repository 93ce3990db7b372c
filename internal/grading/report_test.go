package grading

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/store"
	"github.com/preston-bernstein/nba-props-engine/internal/testutil"
)

func storeFilterAll() store.OutcomeFilter {
	return store.OutcomeFilter{}
}

func TestReportSummarizesBets(t *testing.T) {
	_, g, _ := seedGraded(t)
	ctx := context.Background()
	if _, err := g.Grade(ctx, testutil.UpcomingGameID); err != nil {
		t.Fatalf("grade: %v", err)
	}

	r, err := g.Report(ctx, Filter{DaysBack: 30})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if r.Total != 2 || r.Wins != 2 || r.Losses != 0 || r.WinRate != 1 {
		t.Fatalf("unexpected record %+v", r)
	}
	if !r.Profit.Equal(decimal.RequireFromString("181.82")) || !r.ROI.Equal(decimal.RequireFromString("90.91")) {
		t.Fatalf("unexpected money profit=%s roi=%s", r.Profit, r.ROI)
	}
	if r.MAE != 2.5 || math.Abs(r.RMSE-math.Sqrt(6.5)) > 1e-9 {
		t.Fatalf("unexpected errors mae=%v rmse=%v", r.MAE, r.RMSE)
	}
	if r.Since != "2024-12-23" {
		t.Fatalf("unexpected since %q", r.Since)
	}
	if r.Buckets[1].Bets != 1 || r.Buckets[2].Bets != 1 || r.Buckets[0].Bets != 0 {
		t.Fatalf("unexpected buckets %+v", r.Buckets)
	}
	if r.ByDirection[projections.RecommendUnder].Wins != 1 {
		t.Fatalf("unexpected direction record %+v", r.ByDirection)
	}

	top := r.TopEdges[0]
	if top.PlayerID != "brunson" || top.PlayerName != "Jalen Brunson" || top.Team != "NYK" || top.Opponent != "BOS" {
		t.Fatalf("unexpected top edge %+v", top)
	}
	if top.GameDate != "2025-01-21" {
		t.Fatalf("unexpected game date %q", top.GameDate)
	}
	if len(r.TopNoVig) != 2 || r.TopNoVig[0].PlayerID != "brunson" || math.Abs(r.TopNoVig[0].NoVigProb-0.5) > 1e-12 {
		t.Fatalf("unexpected no-vig board %+v", r.TopNoVig)
	}
	if r.TopNoVig[1].Team != "BOS" || r.TopNoVig[1].NoVigProb >= 0.5 {
		t.Fatalf("expected tatum under below 0.5, got %+v", r.TopNoVig[1])
	}
}

func TestReportFilters(t *testing.T) {
	_, g, _ := seedGraded(t)
	ctx := context.Background()
	if _, err := g.Grade(ctx, testutil.UpcomingGameID); err != nil {
		t.Fatalf("grade: %v", err)
	}

	rebounds, err := g.Report(ctx, Filter{Stat: stats.Rebounds})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rebounds.Total != 0 || !rebounds.Profit.IsZero() || len(rebounds.TopEdges) != 0 {
		t.Fatalf("expected empty rebounds report, got %+v", rebounds)
	}

	minEdge := 10.0
	big, err := g.Report(ctx, Filter{MinEdge: &minEdge})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if big.Total != 1 || big.TopEdges[0].PlayerID != "brunson" {
		t.Fatalf("expected only brunson above 10%%, got %+v", big)
	}

	later, err := g.Report(ctx, Filter{Since: testutil.Day(22)})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if later.Total != 0 {
		t.Fatalf("expected nothing after day 22, got %d", later.Total)
	}
}

func outcome(id, player string, day int, rec projections.Recommendation, result projections.BetResult) projections.GradedOutcome {
	return projections.GradedOutcome{
		ID:             id,
		PlayerID:       player,
		GameDate:       testutil.Day(day),
		Stat:           stats.Points,
		Recommendation: rec,
		BetResult:      result,
		EdgePct:        float64(day),
	}
}

func TestSummarizeStreaks(t *testing.T) {
	list := []projections.GradedOutcome{
		outcome("a4", "p", 4, projections.RecommendOver, projections.BetWin),
		outcome("a1", "p", 1, projections.RecommendOver, projections.BetLoss),
		outcome("a3", "p", 3, projections.RecommendOver, projections.BetPush),
		outcome("a2", "p", 2, projections.RecommendOver, projections.BetWin),
		outcome("b1", "q", 1, projections.RecommendUnder, projections.BetLoss),
		outcome("c1", "p", 5, projections.RecommendUnder, projections.BetLoss),
	}

	s := Summarize(list)
	if len(s.Streaks) != 3 {
		t.Fatalf("expected 3 streak groups, got %+v", s.Streaks)
	}
	first := s.Streaks[0]
	if first.PlayerID != "p" || first.Recommendation != projections.RecommendOver || first.Streak != 2 || first.StreakType != projections.BetWin {
		t.Fatalf("unexpected leading streak %+v", first)
	}
	if first.GameDate != "2025-01-04" {
		t.Fatalf("expected last game date on streak entry, got %q", first.GameDate)
	}
	if s.Wins != 2 || s.Losses != 3 || s.Pushes != 1 || math.Abs(s.WinRate-0.4) > 1e-12 {
		t.Fatalf("unexpected record %+v", s)
	}
	if len(s.TopNoVig) != 0 {
		t.Fatalf("expected no no-vig entries without prices, got %+v", s.TopNoVig)
	}
	if s.TopEdges[0].EdgePct != 5 {
		t.Fatalf("expected largest edge first, got %+v", s.TopEdges[0])
	}
}

func TestLeaderboardsAreCapped(t *testing.T) {
	var list []projections.GradedOutcome
	for i := 1; i <= 15; i++ {
		o := outcome(string(rune('a'+i)), string(rune('a'+i)), i, projections.RecommendOver, projections.BetWin)
		o.OverPrice = projections.Price(-110)
		o.UnderPrice = projections.Price(-110)
		list = append(list, o)
	}
	s := Summarize(list)
	if len(s.TopEdges) != LeaderboardSize || len(s.Streaks) != LeaderboardSize || len(s.TopNoVig) != LeaderboardSize {
		t.Fatalf("expected capped boards, got %d %d %d", len(s.TopEdges), len(s.Streaks), len(s.TopNoVig))
	}
}
