package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/preston-bernstein/nba-props-engine/internal/store"
)

// Import upserts reference data and facts from a dataset in one transaction.
func (s *Store) Import(ctx context.Context, ds store.Dataset) error {
	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range ds.Teams {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO teams (`+teamColumns+`) VALUES (`+placeholders(11)+`)`,
			t.ID, t.Name, t.FullName, t.Abbreviation, t.City, t.Conference, t.Division,
			t.Ratings.Pace, t.Ratings.DefensiveRating, t.Ratings.ScoringMargin, t.Ratings.GamesPlayed); err != nil {
			return fmt.Errorf("sqlite: import team %s: %w", t.ID, err)
		}
	}
	for _, p := range ds.Players {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO players (`+playerColumns+`) VALUES (`+placeholders(8)+`)`,
			p.ID, p.FirstName, p.LastName, p.Position, p.TeamID, p.Active, p.Meta.UpstreamPlayerID, p.Meta.JerseyNumber); err != nil {
			return fmt.Errorf("sqlite: import player %s: %w", p.ID, err)
		}
	}
	for _, g := range ds.Games {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO games (`+gameColumns+`) VALUES (`+placeholders(9)+`)`,
			g.ID, formatTime(g.Date), g.StartTime, g.HomeTeam.ID, g.AwayTeam.ID, string(g.Status),
			g.Score.Home, g.Score.Away, g.Season); err != nil {
			return fmt.Errorf("sqlite: import game %s: %w", g.ID, err)
		}
	}
	for _, o := range ds.Observations {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO observations (`+observationColumns+`) VALUES (`+placeholders(13)+`)`,
			o.PlayerID, o.GameID, o.TeamID, o.OpponentID, formatTime(o.Date), o.Minutes, nullFloat(o.Usage),
			o.Points, o.Rebounds, o.Assists, o.Steals, o.Blocks, o.Threes); err != nil {
			return fmt.Errorf("sqlite: import observation %s/%s: %w", o.PlayerID, o.GameID, err)
		}
	}
	for _, l := range ds.Lines {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO lines (player_id, game_id, stat, date, line, over_price, under_price, sportsbook)
			VALUES (`+placeholders(8)+`)`,
			l.PlayerID, l.GameID, string(l.Stat), formatTime(l.Date), l.Line, nullInt(l.OverPrice), nullInt(l.UnderPrice), l.Sportsbook); err != nil {
			return fmt.Errorf("sqlite: import line %s/%s: %w", l.PlayerID, l.Stat, err)
		}
	}
	for _, q := range ds.Spreads {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO spreads (game_id, team_id, spread) VALUES (?, ?, ?)`,
			q.GameID, q.TeamID, q.Spread); err != nil {
			return fmt.Errorf("sqlite: import spread %s: %w", q.GameID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	for _, o := range ds.Outcomes {
		if err := s.AppendOutcome(ctx, o); err != nil && !errors.Is(err, store.ErrConflict) {
			return err
		}
	}
	return nil
}
