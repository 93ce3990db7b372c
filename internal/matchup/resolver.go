package matchup

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/players"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/teams"
)

// DefaultLeaguePace is used when no team has a recorded pace.
const DefaultLeaguePace = 100.0

const (
	ReasonUnmappedPosition = "unmapped_position"
	ReasonUnknownOpponent  = "unknown_opponent"
	ReasonNoProfile        = "no_profile"
)

// Resolver answers matchup questions against one profile snapshot.
type Resolver struct {
	profiles        *ProfileSet
	leaguePace      float64
	leagueDefRating float64
}

// NewResolver derives league pace and defensive rating averages from teams.
func NewResolver(profiles *ProfileSet, league []teams.Team) *Resolver {
	var paces, ratings []float64
	for _, t := range league {
		if t.HasPace() {
			paces = append(paces, t.Ratings.Pace)
		}
		if t.HasDefensiveRating() {
			ratings = append(ratings, t.Ratings.DefensiveRating)
		}
	}
	r := &Resolver{profiles: profiles, leaguePace: DefaultLeaguePace}
	if len(paces) > 0 {
		r.leaguePace = stat.Mean(paces, nil)
	}
	if len(ratings) > 0 {
		r.leagueDefRating = stat.Mean(ratings, nil)
	}
	return r
}

// LeaguePace returns the league average pace used for the pace factor.
func (r *Resolver) LeaguePace() float64 {
	return r.leaguePace
}

// LeagueDefensiveRating returns the league average defensive rating, zero when unknown.
func (r *Resolver) LeagueDefensiveRating() float64 {
	return r.leagueDefRating
}

// Profiles exposes the underlying snapshot.
func (r *Resolver) Profiles() *ProfileSet {
	return r.profiles
}

// Resolve computes the matchup snapshot for a player position against an opponent.
// Raw factors are reported unclamped; the adjustment pipeline clamps them.
func (r *Resolver) Resolve(position string, opponent teams.Team, kind stats.Kind) projections.Matchup {
	m := projections.Matchup{
		OpponentID: opponent.ID,
		Grade:      projections.GradeUnknown,
		RawMatchup: 1,
		RawPace:    1,
	}
	bucket, ok := stats.MapRole(position)
	if !ok {
		m.Reason = ReasonUnmappedPosition
		return m
	}
	m.Bucket = bucket
	if opponent.ID == "" {
		m.Reason = ReasonUnknownOpponent
		return m
	}

	var (
		factors   []float64
		conceded  float64
		leagueSum float64
	)
	for _, part := range kind.Parts() {
		e, ok := r.profiles.Lookup(opponent.ID, bucket, part)
		if !ok {
			continue
		}
		league, ok := r.profiles.LeagueAverage(bucket, part)
		if !ok || league <= 0 {
			continue
		}
		factors = append(factors, e.ConcededAvg/league)
		conceded += e.ConcededAvg
		leagueSum += league
	}
	if len(factors) == 0 {
		m.Reason = ReasonNoProfile
		return m
	}

	rankStat := kind
	if kind.IsComposite() {
		rankStat = stats.Points
	}
	if e, ok := r.profiles.Lookup(opponent.ID, bucket, rankStat); ok {
		m.Rank = e.Rank
	}

	m.Known = true
	m.ConcededAvg = conceded
	m.LeagueAvg = leagueSum
	m.RawMatchup = stat.Mean(factors, nil)
	m.Grade = GradeForRank(m.Rank)
	if opponent.HasPace() {
		m.RawPace = opponent.Ratings.Pace / r.leaguePace
	}
	return m
}

// GradeForRank maps a 1..N rank to a display grade.
func GradeForRank(rank int) projections.Grade {
	switch {
	case rank <= 0:
		return projections.GradeUnknown
	case rank <= 5:
		return projections.GradeElite
	case rank <= 10:
		return projections.GradeGood
	case rank <= 20:
		return projections.GradeNeutral
	case rank <= 25:
		return projections.GradeTough
	default:
		return projections.GradeLockdown
	}
}

// Rankings lists teams for a bucket and stat; composites rank by points.
func (r *Resolver) Rankings(bucket stats.RoleBucket, kind stats.Kind) []Entry {
	if kind.IsComposite() {
		kind = stats.Points
	}
	return r.profiles.Rankings(bucket, kind)
}

// Source is the storage slice needed to build a resolver.
type Source interface {
	AllObservations(ctx context.Context, since time.Time) ([]stats.Observation, error)
	Players(ctx context.Context) ([]players.Player, error)
	Teams(ctx context.Context) ([]teams.Team, error)
}

// Load builds a resolver from every qualifying observation since the given date.
func Load(ctx context.Context, src Source, since time.Time, minMinutes float64) (*Resolver, error) {
	obs, err := src.AllObservations(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	roster, err := src.Players(ctx)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	league, err := src.Teams(ctx)
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	positions := make(map[string]string, len(roster))
	for _, p := range roster {
		positions[p.ID] = p.Position
	}
	if minMinutes <= 0 {
		minMinutes = DefaultMinMinutes
	}
	return NewResolver(BuildProfiles(obs, positions, minMinutes), league), nil
}
