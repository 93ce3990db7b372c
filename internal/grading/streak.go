package grading

import (
	"context"
	"fmt"
	"math"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
)

// StreakType labels the direction of a run against a line.
type StreakType string

const (
	StreakHit  StreakType = "hit"
	StreakMiss StreakType = "miss"
)

// DefaultStreakGames is the look-back used when no limit is given.
const DefaultStreakGames = 10

// StreakResult is a player's recent record against a line, most recent first.
type StreakResult struct {
	Current int        `json:"currentStreak"`
	Type    StreakType `json:"streakType,omitempty"`
	LastN   []bool     `json:"lastNGames"`
	HitRate float64    `json:"hitRate"`
}

// Streak scores values (most recent first) against threshold. A value strictly
// above the line is a hit. Only the first limit values are considered.
func Streak(values []float64, threshold float64, limit int) StreakResult {
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	res := StreakResult{LastN: make([]bool, len(values))}
	if len(values) == 0 {
		return res
	}
	hits := 0
	for i, v := range values {
		res.LastN[i] = v > threshold
		if res.LastN[i] {
			hits++
		}
	}
	res.Type = StreakMiss
	if res.LastN[0] {
		res.Type = StreakHit
	}
	for _, hit := range res.LastN {
		if hit != res.LastN[0] {
			break
		}
		res.Current++
	}
	res.HitRate = math.Round(float64(hits)/float64(len(values))*1000) / 1000
	return res
}

// PlayerStreak loads the player's recent box scores and scores them against line.
func (g *Grader) PlayerStreak(ctx context.Context, playerID string, kind stats.Kind, line float64, limit int) (StreakResult, error) {
	if !kind.Valid() {
		return StreakResult{}, fmt.Errorf("%w: %q", stats.ErrUnknownStat, kind)
	}
	if limit <= 0 {
		limit = DefaultStreakGames
	}
	obs, err := g.source.RecentObservations(ctx, playerID, limit, 0)
	if err != nil {
		return StreakResult{}, fmt.Errorf("load observations for %s: %w", playerID, err)
	}
	return Streak(stats.Values(obs, kind), line, limit), nil
}
