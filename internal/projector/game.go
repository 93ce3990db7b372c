package projector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/logging"
	"github.com/preston-bernstein/nba-props-engine/internal/timeutil"
)

// DefaultGameStats are projected for every player when ProjectGame gets no kinds.
var DefaultGameStats = []stats.Kind{stats.Points, stats.Rebounds, stats.Assists, stats.Steals, stats.Blocks, stats.PRA}

// ProjectGame projects every active player on both sides of a game, skipping players
// the availability feed lists as unavailable and projections that come out non-positive.
// Results are ordered by adjusted value, highest first.
func (e *Engine) ProjectGame(ctx context.Context, gameID string, kinds []stats.Kind) ([]projections.Projection, error) {
	game, err := e.source.Game(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	if len(kinds) == 0 {
		kinds = DefaultGameStats
	}
	logger := e.log(ctx).With(slog.String(logging.FieldGame, game.ID))
	day := timeutil.DateOnly(game.Date)

	var out []projections.Projection
	for _, teamID := range []string{game.HomeTeam.ID, game.AwayTeam.ID} {
		roster, err := e.source.ActiveRoster(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("load roster %s: %w", teamID, err)
		}
		for _, p := range roster {
			if e.cfg.Injury != nil && e.cfg.Injury.Status(ctx, p, day).Unavailable() {
				logger.Debug("skipping unavailable player", slog.String(logging.FieldPlayer, p.ID))
				continue
			}
			for _, kind := range kinds {
				proj, err := e.Project(ctx, Request{PlayerID: p.ID, Stat: kind, GameID: game.ID})
				if errors.Is(err, ErrInsufficientData) {
					continue
				}
				if err != nil {
					return nil, err
				}
				if proj.Adjusted > 0 {
					out = append(out, proj)
				}
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Adjusted != out[j].Adjusted {
			return out[i].Adjusted > out[j].Adjusted
		}
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].Stat < out[j].Stat
	})
	logger.Info("game projected", slog.Int(logging.FieldCount, len(out)))
	return out, nil
}
