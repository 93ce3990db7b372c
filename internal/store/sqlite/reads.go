package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/games"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/players"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/teams"
	"github.com/preston-bernstein/nba-props-engine/internal/store"
	"github.com/preston-bernstein/nba-props-engine/internal/timeutil"
)

const observationColumns = `player_id, game_id, team_id, opponent_id, date, minutes, usage,
	points, rebounds, assists, steals, blocks, threes`

func scanObservations(rows *sql.Rows) ([]stats.Observation, error) {
	defer rows.Close()

	var out []stats.Observation
	for rows.Next() {
		var (
			o     stats.Observation
			date  string
			usage sql.NullFloat64
		)
		if err := rows.Scan(&o.PlayerID, &o.GameID, &o.TeamID, &o.OpponentID, &date, &o.Minutes, &usage,
			&o.Points, &o.Rebounds, &o.Assists, &o.Steals, &o.Blocks, &o.Threes); err != nil {
			return nil, err
		}
		t, err := parseTime(date)
		if err != nil {
			return nil, err
		}
		o.Date = t
		o.Usage = floatPtr(usage)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (q queries) RecentObservations(ctx context.Context, playerID string, limit int, minMinutes float64) ([]stats.Observation, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := q.db.QueryContext(ctx, `SELECT `+observationColumns+` FROM observations
		WHERE player_id = ? AND minutes >= ?
		ORDER BY date DESC, game_id DESC LIMIT ?`, playerID, minMinutes, limit)
	if err != nil {
		return nil, err
	}
	return scanObservations(rows)
}

func (q queries) GameObservations(ctx context.Context, gameID string) ([]stats.Observation, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+observationColumns+` FROM observations
		WHERE game_id = ? ORDER BY player_id`, gameID)
	if err != nil {
		return nil, err
	}
	return scanObservations(rows)
}

func (q queries) AllObservations(ctx context.Context, since time.Time) ([]stats.Observation, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+observationColumns+` FROM observations
		WHERE date >= ? ORDER BY date, game_id, player_id`, sinceBound(since))
	if err != nil {
		return nil, err
	}
	return scanObservations(rows)
}

func sinceBound(since time.Time) string {
	if since.IsZero() {
		return ""
	}
	return formatTime(since)
}

const playerColumns = `id, first_name, last_name, position, team_id, active, upstream_id, jersey_number`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(r rowScanner) (players.Player, error) {
	var p players.Player
	err := r.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Position, &p.TeamID, &p.Active,
		&p.Meta.UpstreamPlayerID, &p.Meta.JerseyNumber)
	return p, err
}

func (q queries) Player(ctx context.Context, id string) (players.Player, error) {
	p, err := scanPlayer(q.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id))
	if err != nil {
		return players.Player{}, notFound(err)
	}
	return p, nil
}

func (q queries) Players(ctx context.Context) ([]players.Player, error) {
	return q.listPlayers(ctx, `SELECT `+playerColumns+` FROM players ORDER BY id`)
}

func (q queries) ActiveRoster(ctx context.Context, teamID string) ([]players.Player, error) {
	return q.listPlayers(ctx, `SELECT `+playerColumns+` FROM players WHERE team_id = ? AND active = 1 ORDER BY id`, teamID)
}

func (q queries) listPlayers(ctx context.Context, query string, args ...any) ([]players.Player, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []players.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const teamColumns = `id, name, full_name, abbreviation, city, conference, division,
	pace, defensive_rating, scoring_margin, games_played`

func scanTeam(r rowScanner) (teams.Team, error) {
	var t teams.Team
	err := r.Scan(&t.ID, &t.Name, &t.FullName, &t.Abbreviation, &t.City, &t.Conference, &t.Division,
		&t.Ratings.Pace, &t.Ratings.DefensiveRating, &t.Ratings.ScoringMargin, &t.Ratings.GamesPlayed)
	return t, err
}

func (q queries) Team(ctx context.Context, id string) (teams.Team, error) {
	t, err := scanTeam(q.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id))
	if err != nil {
		return teams.Team{}, notFound(err)
	}
	return t, nil
}

func (q queries) Teams(ctx context.Context) ([]teams.Team, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []teams.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (q queries) teamIndex(ctx context.Context) (map[string]teams.Team, error) {
	list, err := q.Teams(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]teams.Team, len(list))
	for _, t := range list {
		idx[t.ID] = t
	}
	return idx, nil
}

const gameColumns = `id, date, start_time, home_team_id, away_team_id, status, home_score, away_score, season`

// listGames loads teams first so no second query runs while rows are open on a pinned connection.
func (q queries) listGames(ctx context.Context, query string, args ...any) ([]games.Game, error) {
	idx, err := q.teamIndex(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []games.Game
	for rows.Next() {
		var (
			g            games.Game
			date         string
			homeID, away string
		)
		if err := rows.Scan(&g.ID, &date, &g.StartTime, &homeID, &away, &g.Status,
			&g.Score.Home, &g.Score.Away, &g.Season); err != nil {
			return nil, err
		}
		if g.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		g.HomeTeam = teamOrStub(idx, homeID)
		g.AwayTeam = teamOrStub(idx, away)
		out = append(out, g)
	}
	return out, rows.Err()
}

func teamOrStub(idx map[string]teams.Team, id string) teams.Team {
	if t, ok := idx[id]; ok {
		return t
	}
	return teams.Team{ID: id}
}

func firstGame(list []games.Game, err error) (games.Game, error) {
	if err != nil {
		return games.Game{}, err
	}
	if len(list) == 0 {
		return games.Game{}, store.ErrNotFound
	}
	return list[0], nil
}

func (q queries) Game(ctx context.Context, id string) (games.Game, error) {
	return firstGame(q.listGames(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id))
}

func (q queries) GamesOnDate(ctx context.Context, date time.Time) ([]games.Game, error) {
	return q.listGames(ctx, `SELECT `+gameColumns+` FROM games WHERE substr(date, 1, 10) = ? ORDER BY id`,
		timeutil.FormatDate(timeutil.DateOnly(date)))
}

func (q queries) RecentTeamGames(ctx context.Context, teamID string, before time.Time, limit int) ([]games.Game, error) {
	if limit <= 0 {
		limit = -1
	}
	return q.listGames(ctx, `SELECT `+gameColumns+` FROM games
		WHERE status = ? AND (home_team_id = ? OR away_team_id = ?) AND date < ?
		ORDER BY date DESC LIMIT ?`,
		string(games.StatusFinal), teamID, teamID, formatTime(before), limit)
}

func (q queries) ScheduledGame(ctx context.Context, teamA, teamB string, from, to time.Time) (games.Game, error) {
	return firstGame(q.listGames(ctx, `SELECT `+gameColumns+` FROM games
		WHERE ((home_team_id = ? AND away_team_id = ?) OR (home_team_id = ? AND away_team_id = ?))
		AND date >= ? AND date <= ?
		ORDER BY date LIMIT 1`,
		teamA, teamB, teamB, teamA, formatTime(from), formatTime(to)))
}

func (q queries) MarketLines(ctx context.Context, date time.Time, kind stats.Kind, sportsbook string) ([]projections.Line, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT player_id, game_id, stat, date, line, over_price, under_price, sportsbook
		FROM lines
		WHERE substr(date, 1, 10) = ? AND (? = '' OR stat = ?) AND (? = '' OR sportsbook = ?)
		ORDER BY player_id, stat`,
		timeutil.FormatDate(timeutil.DateOnly(date)), string(kind), string(kind), sportsbook, sportsbook)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []projections.Line
	for rows.Next() {
		var (
			l           projections.Line
			raw         string
			over, under sql.NullInt64
		)
		if err := rows.Scan(&l.PlayerID, &l.GameID, &l.Stat, &raw, &l.Line, &over, &under, &l.Sportsbook); err != nil {
			return nil, err
		}
		if l.Date, err = parseTime(raw); err != nil {
			return nil, err
		}
		l.OverPrice = intPtr(over)
		l.UnderPrice = intPtr(under)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (q queries) Spread(ctx context.Context, gameID, teamID string) (float64, error) {
	var v float64
	err := q.db.QueryRowContext(ctx, `SELECT spread FROM spreads WHERE game_id = ? AND team_id = ?`, gameID, teamID).Scan(&v)
	if err != nil {
		return 0, notFound(err)
	}
	return v, nil
}
