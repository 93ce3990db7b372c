package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/games"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/players"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/teams"
	"github.com/preston-bernstein/nba-props-engine/internal/timeutil"
)

// MemoryStore keeps a thread-safe snapshot of the dataset in memory.
type MemoryStore struct {
	mu           sync.RWMutex
	players      map[string]players.Player
	teams        map[string]teams.Team
	games        map[string]games.Game
	observations []stats.Observation
	lines        []projections.Line
	spreads      map[spreadKey]float64
	projections  []projections.Projection
	outcomes     []projections.GradedOutcome
	graded       map[string]struct{}
}

type spreadKey struct {
	gameID string
	teamID string
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[string]players.Player),
		teams:   make(map[string]teams.Team),
		games:   make(map[string]games.Game),
		spreads: make(map[spreadKey]float64),
		graded:  make(map[string]struct{}),
	}
}

// SetPlayers replaces the player table.
func (s *MemoryStore) SetPlayers(list []players.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.players = make(map[string]players.Player, len(list))
	for _, p := range list {
		s.players[p.ID] = p
	}
}

// SetTeams replaces the team table.
func (s *MemoryStore) SetTeams(list []teams.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teams = make(map[string]teams.Team, len(list))
	for _, t := range list {
		s.teams[t.ID] = t
	}
}

// SetGames replaces the existing games with a new snapshot.
func (s *MemoryStore) SetGames(list []games.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = make(map[string]games.Game, len(list))
	for _, g := range list {
		s.games[g.ID] = g
	}
}

// AddObservations appends box score lines.
func (s *MemoryStore) AddObservations(obs ...stats.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observations = append(s.observations, obs...)
}

// AddLines appends market lines.
func (s *MemoryStore) AddLines(lines ...projections.Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, lines...)
}

// SetSpread records the spread for one side of a game.
func (s *MemoryStore) SetSpread(gameID, teamID string, spread float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spreads[spreadKey{gameID: gameID, teamID: teamID}] = spread
}

// OpenSession returns a session over the shared snapshot. Close is a no-op.
func (s *MemoryStore) OpenSession(context.Context) (Session, error) {
	return memorySession{s}, nil
}

type memorySession struct {
	*MemoryStore
}

func (memorySession) Close() error { return nil }

func (s *MemoryStore) RecentObservations(_ context.Context, playerID string, limit int, minMinutes float64) ([]stats.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []stats.Observation
	for _, o := range s.observations {
		if o.PlayerID == playerID && o.Qualifies(minMinutes) {
			out = append(out, o)
		}
	}
	sortObservationsDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) GameObservations(_ context.Context, gameID string) ([]stats.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []stats.Observation
	for _, o := range s.observations {
		if o.GameID == gameID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *MemoryStore) AllObservations(_ context.Context, since time.Time) ([]stats.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]stats.Observation, 0, len(s.observations))
	for _, o := range s.observations {
		if !since.IsZero() && o.Date.Before(since) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *MemoryStore) Player(_ context.Context, id string) (players.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return players.Player{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) Players(context.Context) ([]players.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]players.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Team(_ context.Context, id string) (teams.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.teams[id]
	if !ok {
		return teams.Team{}, ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) Teams(context.Context) ([]teams.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]teams.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ActiveRoster(_ context.Context, teamID string) ([]players.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []players.Player
	for _, p := range s.players {
		if p.TeamID == teamID && p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Game(_ context.Context, id string) (games.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return games.Game{}, ErrNotFound
	}
	return g, nil
}

func (s *MemoryStore) GamesOnDate(_ context.Context, date time.Time) ([]games.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := timeutil.DateOnly(date)
	var out []games.Game
	for _, g := range s.games {
		if timeutil.DateOnly(g.Date).Equal(day) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) RecentTeamGames(_ context.Context, teamID string, before time.Time, limit int) ([]games.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []games.Game
	for _, g := range s.games {
		if g.IsFinal() && g.Involves(teamID) && g.Date.Before(before) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) ScheduledGame(_ context.Context, teamA, teamB string, from, to time.Time) (games.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best  games.Game
		found bool
	)
	for _, g := range s.games {
		if !g.Involves(teamA) || !g.Involves(teamB) {
			continue
		}
		if g.Date.Before(from) || g.Date.After(to) {
			continue
		}
		if !found || g.Date.Before(best.Date) {
			best, found = g, true
		}
	}
	if !found {
		return games.Game{}, ErrNotFound
	}
	return best, nil
}

func (s *MemoryStore) MarketLines(_ context.Context, date time.Time, kind stats.Kind, sportsbook string) ([]projections.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := timeutil.DateOnly(date)
	var out []projections.Line
	for _, l := range s.lines {
		if !timeutil.DateOnly(l.Date).Equal(day) {
			continue
		}
		if kind != "" && l.Stat != kind {
			continue
		}
		if sportsbook != "" && l.Sportsbook != sportsbook {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *MemoryStore) Spread(_ context.Context, gameID, teamID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.spreads[spreadKey{gameID: gameID, teamID: teamID}]
	if !ok {
		return 0, ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) SaveProjection(_ context.Context, p projections.Projection) (projections.Projection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.projections {
		if existing.PlayerID != p.PlayerID || existing.GameID != p.GameID || existing.Stat != p.Stat {
			continue
		}
		if RefreshMarket(&existing, p) {
			s.projections[i] = existing
		}
		return existing, nil
	}
	s.projections = append(s.projections, p)
	return p, nil
}

func (s *MemoryStore) ProjectionsForGame(_ context.Context, gameID string) ([]projections.Projection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []projections.Projection
	for _, p := range s.projections {
		if p.GameID == gameID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) AppendOutcome(_ context.Context, o projections.GradedOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.graded[o.ProjectionID]; ok {
		return ErrConflict
	}
	s.graded[o.ProjectionID] = struct{}{}
	s.outcomes = append(s.outcomes, o)
	return nil
}

func (s *MemoryStore) Outcomes(_ context.Context, f OutcomeFilter) ([]projections.GradedOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []projections.GradedOutcome
	for _, o := range s.outcomes {
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	SortOutcomes(out)
	return out, nil
}

// RefreshMarket copies the market and evaluation of next onto existing when next
// carries a line that differs from the stored one. It reports whether anything changed.
func RefreshMarket(existing *projections.Projection, next projections.Projection) bool {
	if next.Market == nil {
		return false
	}
	if existing.Market != nil && existing.Market.Line == next.Market.Line {
		return false
	}
	m := *next.Market
	existing.Market = &m
	if next.Evaluation != nil {
		e := *next.Evaluation
		existing.Evaluation = &e
	}
	return true
}

// SortOutcomes orders outcomes by game date then id.
func SortOutcomes(list []projections.GradedOutcome) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].GameDate.Equal(list[j].GameDate) {
			return list[i].GameDate.Before(list[j].GameDate)
		}
		return list[i].ID < list[j].ID
	})
}

func sortObservationsDesc(list []stats.Observation) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].GameID > list[j].GameID
	})
}
