package adjust

import (
	"context"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/fallback"
)

const (
	blowoutThreshold  = 8.0
	blowoutMaxPenalty = 0.08
	spreadFullPenalty = 15.0
	ratingFullPenalty = 20.0
)

// BlowoutInput carries game-script signals from the subject team's perspective.
type BlowoutInput struct {
	// Spread is the market line for the subject's team; +10 means a 10 point underdog.
	Spread         *float64
	TeamMargin     float64
	OpponentMargin float64
	MarginsKnown   bool
}

// BlowoutPenalty ramps linearly from 0 at the threshold to the max penalty at fullAt.
func BlowoutPenalty(gap, fullAt float64) float64 {
	if gap <= blowoutThreshold {
		return 0
	}
	span := fullAt - blowoutThreshold
	if span <= 0 {
		return blowoutMaxPenalty
	}
	scale := (gap - blowoutThreshold) / span
	if scale > 1 {
		scale = 1
	}
	return blowoutMaxPenalty * scale
}

// BlowoutFactor prefers the market spread and falls back to season scoring margins.
func BlowoutFactor(in BlowoutInput) (float64, projections.BlowoutSource) {
	chain := []fallback.Strategy[float64]{
		{Name: string(projections.BlowoutSpread), Try: func(context.Context) fallback.Attempt[float64] {
			if in.Spread == nil {
				return fallback.Skipped[float64]()
			}
			return fallback.Ok(1 - BlowoutPenalty(*in.Spread, spreadFullPenalty))
		}},
		{Name: string(projections.BlowoutRating), Try: func(context.Context) fallback.Attempt[float64] {
			if !in.MarginsKnown {
				return fallback.Skipped[float64]()
			}
			gap := in.OpponentMargin - in.TeamMargin
			return fallback.Ok(1 - BlowoutPenalty(gap, ratingFullPenalty))
		}},
	}

	won, ok, _ := fallback.Run(context.Background(), chain)
	if !ok {
		return 1, projections.BlowoutNone
	}
	return BlowoutRange.Clamp(won.Value), projections.BlowoutSource(won.Strategy)
}
