package adjust

import (
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/aggregate"
)

const (
	HomeBoost         = 1.03
	BackToBackPenalty = 0.95
)

// HomeFactor boosts the recognized home side.
func HomeFactor(isHome bool) float64 {
	if isHome {
		return HomeBoost
	}
	return 1
}

// RestGap returns the calendar days between the two most recent completed games.
// dates must be most-recent-first; fewer than two dates yields ok=false.
func RestGap(dates []time.Time) (int, bool) {
	if len(dates) < 2 {
		return 0, false
	}
	a := dateOnly(dates[1])
	b := dateOnly(dates[0])
	return int(b.Sub(a).Hours() / 24), true
}

// RestFactor penalizes exactly one day between games. Same-day and longer gaps are neutral.
func RestFactor(gapDays int, known bool) (float64, bool) {
	if known && gapDays == 1 {
		return BackToBackPenalty, true
	}
	return 1, false
}

// FormFactor rewards a rising short-window average relative to the medium window.
func FormFactor(values []float64) float64 {
	return FormRange.Clamp(aggregate.FormRatio(values))
}

// OpponentStrengthFactor is league average defensive rating over the opponent's.
// A missing rating on either side is neutral.
func OpponentStrengthFactor(leagueAvg, opponent float64) float64 {
	if leagueAvg <= 0 || opponent <= 0 {
		return 1
	}
	return OpponentRange.Clamp(leagueAvg / opponent)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
