package grading

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/odds"
	"github.com/preston-bernstein/nba-props-engine/internal/store"
	"github.com/preston-bernstein/nba-props-engine/internal/timeutil"
)

const (
	// LeaderboardSize caps every leaderboard.
	LeaderboardSize = 10
	// Stake is the flat amount risked per bet.
	Stake = 100
)

// WinPayout is the profit on a winning Stake at -110.
var WinPayout = decimal.RequireFromString("90.91")

// Filter narrows the graded history a report covers.
type Filter struct {
	Stat     stats.Kind
	Since    time.Time
	DaysBack int
	MinEdge  *float64
}

// Bucket aggregates bets whose |edge| falls in [Min, Max). Max 0 means unbounded.
type Bucket struct {
	Label   string  `json:"label"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max,omitempty"`
	Bets    int     `json:"bets"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"winRate"`
}

// DirectionRecord is the record for one recommended side.
type DirectionRecord struct {
	Bets    int     `json:"bets"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"winRate"`
}

// Entry is one leaderboard row.
type Entry struct {
	PlayerID       string                     `json:"playerId"`
	PlayerName     string                     `json:"playerName,omitempty"`
	Team           string                     `json:"team,omitempty"`
	Opponent       string                     `json:"opponent,omitempty"`
	GameID         string                     `json:"gameId,omitempty"`
	GameDate       string                     `json:"gameDate,omitempty"`
	Stat           stats.Kind                 `json:"stat"`
	Recommendation projections.Recommendation `json:"recommendation"`
	EdgePct        float64                    `json:"edgePct,omitempty"`
	BetResult      projections.BetResult      `json:"betResult,omitempty"`
	Streak         int                        `json:"streak,omitempty"`
	StreakType     projections.BetResult      `json:"streakType,omitempty"`
	NoVigProb      float64                    `json:"noVigProb,omitempty"`
}

// AccuracySummary is the betting record over a filtered window.
type AccuracySummary struct {
	Since       string                                         `json:"since,omitempty"`
	Total       int                                            `json:"total"`
	Wins        int                                            `json:"wins"`
	Losses      int                                            `json:"losses"`
	Pushes      int                                            `json:"pushes"`
	WinRate     float64                                        `json:"winRate"`
	Profit      decimal.Decimal                                `json:"profit"`
	ROI         decimal.Decimal                                `json:"roi"`
	MAE         float64                                        `json:"mae"`
	RMSE        float64                                        `json:"rmse"`
	Buckets     []Bucket                                       `json:"buckets"`
	ByDirection map[projections.Recommendation]DirectionRecord `json:"byDirection"`
	TopEdges    []Entry                                        `json:"topEdges"`
	Streaks     []Entry                                        `json:"streaks"`
	TopNoVig    []Entry                                        `json:"topNoVig"`
}

// Report summarizes graded bets matching f. An empty window yields a zero summary.
func (g *Grader) Report(ctx context.Context, f Filter) (AccuracySummary, error) {
	filter := store.OutcomeFilter{MinEdge: f.MinEdge, BetsOnly: true, Since: f.Since}
	if f.Stat != "" {
		filter.Stats = []stats.Kind{f.Stat}
	}
	if filter.Since.IsZero() && f.DaysBack > 0 {
		filter.Since = timeutil.DateOnly(g.now()).AddDate(0, 0, -f.DaysBack)
	}
	list, err := g.source.Outcomes(ctx, filter)
	if err != nil {
		return AccuracySummary{}, fmt.Errorf("load outcomes: %w", err)
	}

	summary := Summarize(list)
	if !filter.Since.IsZero() {
		summary.Since = timeutil.FormatDate(filter.Since)
	}
	names := newLabeler(g.source)
	for _, board := range [][]Entry{summary.TopEdges, summary.Streaks, summary.TopNoVig} {
		for i := range board {
			names.label(ctx, &board[i])
		}
	}
	return summary, nil
}

// Summarize computes the record over already filtered bet outcomes. Entries are unlabeled.
func Summarize(list []projections.GradedOutcome) AccuracySummary {
	s := AccuracySummary{
		Total:       len(list),
		Profit:      decimal.Zero,
		ROI:         decimal.Zero,
		Buckets:     newBuckets(),
		ByDirection: map[projections.Recommendation]DirectionRecord{},
		TopEdges:    []Entry{},
		Streaks:     []Entry{},
		TopNoVig:    []Entry{},
	}
	if len(list) == 0 {
		return s
	}

	errs := make([]float64, len(list))
	squared := make([]float64, len(list))
	for i, o := range list {
		errs[i] = o.AbsError
		squared[i] = o.Error * o.Error

		dir := s.ByDirection[o.Recommendation]
		dir.Bets++
		switch o.BetResult {
		case projections.BetWin:
			s.Wins++
			dir.Wins++
		case projections.BetLoss:
			s.Losses++
			dir.Losses++
		case projections.BetPush:
			s.Pushes++
		}
		s.ByDirection[o.Recommendation] = dir

		for j := range s.Buckets {
			s.Buckets[j].add(o)
		}
	}

	s.WinRate = winRate(s.Wins, s.Losses)
	for rec, dir := range s.ByDirection {
		dir.WinRate = winRate(dir.Wins, dir.Losses)
		s.ByDirection[rec] = dir
	}
	for j := range s.Buckets {
		s.Buckets[j].WinRate = winRate(s.Buckets[j].Wins, s.Buckets[j].Losses)
	}

	s.Profit = Profit(s.Wins, s.Losses)
	s.ROI = ROI(s.Profit, s.Total)
	s.MAE = stat.Mean(errs, nil)
	s.RMSE = math.Sqrt(stat.Mean(squared, nil))

	s.TopEdges = topEdges(list)
	s.Streaks = currentStreaks(list)
	s.TopNoVig = topNoVig(list)
	return s
}

// Profit is wins at WinPayout less losses at Stake. Pushes return the stake.
func Profit(wins, losses int) decimal.Decimal {
	won := WinPayout.Mul(decimal.NewFromInt(int64(wins)))
	lost := decimal.NewFromInt(int64(losses * Stake))
	return won.Sub(lost)
}

// ROI is profit over total amount risked, as a percentage rounded to two places.
func ROI(profit decimal.Decimal, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	risked := decimal.NewFromInt(int64(total * Stake))
	return profit.Div(risked).Mul(decimal.NewFromInt(100)).Round(2)
}

func winRate(wins, losses int) float64 {
	if wins+losses == 0 {
		return 0
	}
	return float64(wins) / float64(wins+losses)
}

func newBuckets() []Bucket {
	return []Bucket{
		{Label: "3-5%", Min: 3, Max: 5},
		{Label: "5-10%", Min: 5, Max: 10},
		{Label: "10%+", Min: 10},
	}
}

func (b *Bucket) add(o projections.GradedOutcome) {
	edge := math.Abs(o.EdgePct)
	if edge < b.Min || (b.Max > 0 && edge >= b.Max) {
		return
	}
	b.Bets++
	switch o.BetResult {
	case projections.BetWin:
		b.Wins++
	case projections.BetLoss:
		b.Losses++
	}
}

func entryFor(o projections.GradedOutcome) Entry {
	return Entry{
		PlayerID:       o.PlayerID,
		GameID:         o.GameID,
		GameDate:       timeutil.FormatDate(o.GameDate),
		Stat:           o.Stat,
		Recommendation: o.Recommendation,
		EdgePct:        o.EdgePct,
		BetResult:      o.BetResult,
	}
}

func topEdges(list []projections.GradedOutcome) []Entry {
	sorted := append([]projections.GradedOutcome(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].EdgePct) > math.Abs(sorted[j].EdgePct)
	})
	out := make([]Entry, 0, LeaderboardSize)
	for _, o := range sorted {
		if len(out) == LeaderboardSize {
			break
		}
		out = append(out, entryFor(o))
	}
	return out
}

type streakKey struct {
	player string
	stat   stats.Kind
	rec    projections.Recommendation
}

// currentStreaks walks each (player, stat, side) group in date order. Pushes neither
// extend nor break a run.
func currentStreaks(list []projections.GradedOutcome) []Entry {
	ordered := append([]projections.GradedOutcome(nil), list...)
	store.SortOutcomes(ordered)

	runs := map[streakKey]*Entry{}
	var keys []streakKey
	for _, o := range ordered {
		if o.BetResult == projections.BetPush {
			continue
		}
		k := streakKey{player: o.PlayerID, stat: o.Stat, rec: o.Recommendation}
		e, ok := runs[k]
		if !ok {
			entry := entryFor(o)
			e = &entry
			runs[k] = e
			keys = append(keys, k)
		}
		if e.StreakType == o.BetResult {
			e.Streak++
		} else {
			e.StreakType = o.BetResult
			e.Streak = 1
		}
		e.GameID = o.GameID
		e.GameDate = timeutil.FormatDate(o.GameDate)
		e.EdgePct = o.EdgePct
		e.BetResult = o.BetResult
	}

	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, *runs[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Streak > out[j].Streak
	})
	if len(out) > LeaderboardSize {
		out = out[:LeaderboardSize]
	}
	return out
}

func topNoVig(list []projections.GradedOutcome) []Entry {
	var out []Entry
	for _, o := range list {
		if o.OverPrice == nil || o.UnderPrice == nil {
			continue
		}
		if odds.Validate(*o.OverPrice) != nil || odds.Validate(*o.UnderPrice) != nil {
			continue
		}
		fair := odds.NoVig(*o.OverPrice, *o.UnderPrice)
		e := entryFor(o)
		e.NoVigProb = fair.Probability(side(o.Recommendation))
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NoVigProb > out[j].NoVigProb
	})
	if len(out) > LeaderboardSize {
		out = out[:LeaderboardSize]
	}
	if out == nil {
		out = []Entry{}
	}
	return out
}

func side(rec projections.Recommendation) odds.Side {
	if rec == projections.RecommendUnder {
		return odds.SideUnder
	}
	return odds.SideOver
}
