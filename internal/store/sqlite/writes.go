package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/store"
)

const projectionColumns = `id, player_id, player_name, team_id, opponent_id, game_id, stat, created_at,
	season_avg, l5_avg, l10_avg, games, baseline, adjusted, std_dev, floor, ceiling, matchup, factors,
	line, over_price, under_price, sportsbook, edge_pct, over_prob, under_prob, recommendation`

func (q queries) SaveProjection(ctx context.Context, p projections.Projection) (projections.Projection, error) {
	matchup, err := json.Marshal(p.Matchup)
	if err != nil {
		return projections.Projection{}, fmt.Errorf("sqlite: encode matchup: %w", err)
	}
	factors, err := json.Marshal(p.Factors)
	if err != nil {
		return projections.Projection{}, fmt.Errorf("sqlite: encode factors: %w", err)
	}

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return projections.Projection{}, err
	}
	defer tx.Rollback()

	existing, err := scanProjection(tx.QueryRowContext(ctx, `SELECT `+projectionColumns+` FROM projections
		WHERE player_id = ? AND game_id = ? AND stat = ?`, p.PlayerID, p.GameID, string(p.Stat)))
	switch {
	case err == nil:
		if store.RefreshMarket(&existing, p) {
			m, e := marketArgs(existing)
			if _, err := tx.ExecContext(ctx, `UPDATE projections SET line = ?, over_price = ?, under_price = ?,
				sportsbook = ?, edge_pct = ?, over_prob = ?, under_prob = ?, recommendation = ? WHERE id = ?`,
				append(append(m, e...), existing.ID)...); err != nil {
				return projections.Projection{}, fmt.Errorf("sqlite: refresh projection: %w", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return projections.Projection{}, err
		}
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return projections.Projection{}, err
	}

	m, e := marketArgs(p)
	args := []any{p.ID, p.PlayerID, p.PlayerName, p.TeamID, p.OpponentID, p.GameID, string(p.Stat), formatTime(p.CreatedAt),
		p.SeasonAvg, p.L5Avg, p.L10Avg, p.Games, p.Baseline, p.Adjusted, p.StdDev, p.Floor, p.Ceiling,
		string(matchup), string(factors)}
	args = append(append(args, m...), e...)
	if _, err := tx.ExecContext(ctx, `INSERT INTO projections (`+projectionColumns+`)
		VALUES (`+placeholders(27)+`)`, args...); err != nil {
		return projections.Projection{}, fmt.Errorf("sqlite: insert projection: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return projections.Projection{}, err
	}
	return p, nil
}

// marketArgs returns the (line, over, under, sportsbook) and (edge, over prob, under prob, rec) column values.
func marketArgs(p projections.Projection) ([]any, []any) {
	market := []any{sql.NullFloat64{}, sql.NullInt64{}, sql.NullInt64{}, ""}
	if p.Market != nil {
		market = []any{p.Market.Line, nullInt(p.Market.OverPrice), nullInt(p.Market.UnderPrice), p.Market.Sportsbook}
	}
	eval := []any{sql.NullFloat64{}, sql.NullFloat64{}, sql.NullFloat64{}, sql.NullString{}}
	if p.Evaluation != nil {
		eval = []any{p.Evaluation.EdgePct, p.Evaluation.OverProb, p.Evaluation.UnderProb, string(p.Evaluation.Recommendation)}
	}
	return market, eval
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func scanProjection(r rowScanner) (projections.Projection, error) {
	var (
		p                         projections.Projection
		created                   string
		matchup, factors          string
		line                      sql.NullFloat64
		over, under               sql.NullInt64
		sportsbook                string
		edge, overProb, underProb sql.NullFloat64
		rec                       sql.NullString
	)
	if err := r.Scan(&p.ID, &p.PlayerID, &p.PlayerName, &p.TeamID, &p.OpponentID, &p.GameID, &p.Stat, &created,
		&p.SeasonAvg, &p.L5Avg, &p.L10Avg, &p.Games, &p.Baseline, &p.Adjusted, &p.StdDev, &p.Floor, &p.Ceiling,
		&matchup, &factors, &line, &over, &under, &sportsbook, &edge, &overProb, &underProb, &rec); err != nil {
		return projections.Projection{}, err
	}
	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return projections.Projection{}, err
	}
	if err := json.Unmarshal([]byte(matchup), &p.Matchup); err != nil {
		return projections.Projection{}, fmt.Errorf("sqlite: decode matchup: %w", err)
	}
	if err := json.Unmarshal([]byte(factors), &p.Factors); err != nil {
		return projections.Projection{}, fmt.Errorf("sqlite: decode factors: %w", err)
	}
	if line.Valid {
		p.Market = &projections.Market{
			Line:       line.Float64,
			OverPrice:  intPtr(over),
			UnderPrice: intPtr(under),
			Sportsbook: sportsbook,
		}
	}
	if rec.Valid {
		p.Evaluation = &projections.Evaluation{
			EdgePct:        edge.Float64,
			OverProb:       overProb.Float64,
			UnderProb:      underProb.Float64,
			Recommendation: projections.Recommendation(rec.String),
		}
	}
	return p, nil
}

func (q queries) ProjectionsForGame(ctx context.Context, gameID string) ([]projections.Projection, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+projectionColumns+` FROM projections
		WHERE game_id = ? ORDER BY created_at, id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []projections.Projection
	for rows.Next() {
		p, err := scanProjection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const outcomeColumns = `id, projection_id, player_id, game_id, game_date, stat, projected, actual, error, abs_error,
	pct_error, line, over_price, under_price, over_prob, recommendation, bet_result, edge_pct, graded_at`

func (q queries) AppendOutcome(ctx context.Context, o projections.GradedOutcome) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO outcomes (`+outcomeColumns+`) VALUES (`+placeholders(19)+`)`,
		o.ID, o.ProjectionID, o.PlayerID, o.GameID, formatTime(o.GameDate), string(o.Stat),
		o.Projected, o.Actual, o.Error, o.AbsError, o.PctError,
		nullFloat(o.Line), nullInt(o.OverPrice), nullInt(o.UnderPrice), nullFloat(o.OverProb),
		string(o.Recommendation), string(o.BetResult), o.EdgePct, formatTime(o.GradedAt))
	if isUniqueViolation(err) {
		return store.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("sqlite: append outcome: %w", err)
	}
	return nil
}

func (q queries) Outcomes(ctx context.Context, f store.OutcomeFilter) ([]projections.GradedOutcome, error) {
	var (
		where []string
		args  []any
	)
	if len(f.Stats) > 0 {
		marks := make([]string, 0, len(f.Stats))
		for _, k := range f.Stats {
			marks = append(marks, "?")
			args = append(args, string(k))
		}
		where = append(where, "stat IN ("+strings.Join(marks, ", ")+")")
	}
	if !f.Since.IsZero() {
		where = append(where, "game_date >= ?")
		args = append(args, formatTime(f.Since))
	}
	if f.MinEdge != nil {
		where = append(where, "abs(edge_pct) >= ?")
		args = append(args, *f.MinEdge)
	}
	if f.BetsOnly {
		where = append(where, "bet_result != ''")
	}
	query := `SELECT ` + outcomeColumns + ` FROM outcomes`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY game_date, id"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []projections.GradedOutcome
	for rows.Next() {
		var (
			o                projections.GradedOutcome
			gameDate, graded string
			line, overProb   sql.NullFloat64
			overPx, underPx  sql.NullInt64
		)
		if err := rows.Scan(&o.ID, &o.ProjectionID, &o.PlayerID, &o.GameID, &gameDate, &o.Stat,
			&o.Projected, &o.Actual, &o.Error, &o.AbsError, &o.PctError,
			&line, &overPx, &underPx, &overProb, &o.Recommendation, &o.BetResult, &o.EdgePct, &graded); err != nil {
			return nil, err
		}
		if o.GameDate, err = parseTime(gameDate); err != nil {
			return nil, err
		}
		if o.GradedAt, err = parseTime(graded); err != nil {
			return nil, err
		}
		o.Line = floatPtr(line)
		o.OverPrice = intPtr(overPx)
		o.UnderPrice = intPtr(underPx)
		o.OverProb = floatPtr(overProb)
		out = append(out, o)
	}
	return out, rows.Err()
}
