// Package store defines the storage collaborator contracts and an in-memory implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/games"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/players"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/teams"
)

var (
	// ErrNotFound is returned when a lookup has no match.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an append would duplicate an existing record.
	ErrConflict = errors.New("conflict")
)

// ObservationReader serves box score lines.
type ObservationReader interface {
	// RecentObservations returns up to limit observations with minutes >= minMinutes, most recent first.
	RecentObservations(ctx context.Context, playerID string, limit int, minMinutes float64) ([]stats.Observation, error)
	GameObservations(ctx context.Context, gameID string) ([]stats.Observation, error)
	AllObservations(ctx context.Context, since time.Time) ([]stats.Observation, error)
}

// ReferenceReader serves players, teams and schedule lookups.
type ReferenceReader interface {
	Player(ctx context.Context, id string) (players.Player, error)
	Players(ctx context.Context) ([]players.Player, error)
	Team(ctx context.Context, id string) (teams.Team, error)
	Teams(ctx context.Context) ([]teams.Team, error)
	ActiveRoster(ctx context.Context, teamID string) ([]players.Player, error)
	Game(ctx context.Context, id string) (games.Game, error)
	GamesOnDate(ctx context.Context, date time.Time) ([]games.Game, error)
	// RecentTeamGames returns final games for the team dated strictly before the cutoff, most recent first.
	RecentTeamGames(ctx context.Context, teamID string, before time.Time, limit int) ([]games.Game, error)
	// ScheduledGame returns the earliest game between the two teams within [from, to].
	ScheduledGame(ctx context.Context, teamA, teamB string, from, to time.Time) (games.Game, error)
}

// MarketReader serves market lines and spreads.
type MarketReader interface {
	MarketLines(ctx context.Context, date time.Time, kind stats.Kind, sportsbook string) ([]projections.Line, error)
	// Spread returns the point spread for teamID in the game (+ means underdog).
	Spread(ctx context.Context, gameID, teamID string) (float64, error)
}

// ProjectionStore persists projections for later grading.
type ProjectionStore interface {
	// SaveProjection upserts by (player, game, stat). An existing row only has its
	// market fields refreshed, and only when the line changed. The stored row is returned.
	SaveProjection(ctx context.Context, p projections.Projection) (projections.Projection, error)
	ProjectionsForGame(ctx context.Context, gameID string) ([]projections.Projection, error)
}

// OutcomeStore appends graded outcomes.
type OutcomeStore interface {
	// AppendOutcome returns ErrConflict when the projection already has an outcome.
	AppendOutcome(ctx context.Context, o projections.GradedOutcome) error
	Outcomes(ctx context.Context, f OutcomeFilter) ([]projections.GradedOutcome, error)
}

// OutcomeFilter narrows outcome queries.
type OutcomeFilter struct {
	Stats    []stats.Kind
	Since    time.Time
	MinEdge  *float64
	BetsOnly bool
}

// Matches reports whether o passes the filter.
func (f OutcomeFilter) Matches(o projections.GradedOutcome) bool {
	if len(f.Stats) > 0 {
		found := false
		for _, k := range f.Stats {
			if o.Stat == k {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.Since.IsZero() && o.GameDate.Before(f.Since) {
		return false
	}
	if f.MinEdge != nil && abs(o.EdgePct) < *f.MinEdge {
		return false
	}
	if f.BetsOnly && !o.IsBet() {
		return false
	}
	return true
}

// Store is the full storage collaborator.
type Store interface {
	ObservationReader
	ReferenceReader
	MarketReader
	ProjectionStore
	OutcomeStore
}

// Session is an isolated storage handle owned by one unit of work.
type Session interface {
	Store
	Close() error
}

// SessionFactory opens isolated sessions for fan-out work.
type SessionFactory interface {
	OpenSession(ctx context.Context) (Session, error)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
