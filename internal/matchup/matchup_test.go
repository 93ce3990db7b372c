package matchup

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/adjust"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/players"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/teams"
)

func fixture() ([]stats.Observation, map[string]string) {
	positions := map[string]string{"g1": "G", "g2": "G", "c1": "C", "x1": "PG"}
	obs := []stats.Observation{
		{PlayerID: "g1", OpponentID: "bos", Minutes: 30, Points: 30, Assists: 10},
		{PlayerID: "g2", OpponentID: "bos", Minutes: 30, Points: 20, Assists: 6},
		{PlayerID: "g1", OpponentID: "nyk", Minutes: 30, Points: 16, Assists: 4},
		{PlayerID: "g1", OpponentID: "lal", Minutes: 30, Points: 19, Assists: 5},
		{PlayerID: "g2", OpponentID: "lal", Minutes: 8, Points: 50, Assists: 20},
		{PlayerID: "c1", OpponentID: "bos", Minutes: 30, Points: 10, Rebounds: 12},
		{PlayerID: "x1", OpponentID: "nyk", Minutes: 30, Points: 40},
	}
	return obs, positions
}

func TestBuildProfilesRanksMostConcededFirst(t *testing.T) {
	obs, positions := fixture()
	set := BuildProfiles(obs, positions, DefaultMinMinutes)

	ranks := set.Rankings(stats.BucketGuard, stats.Points)
	if len(ranks) != 3 {
		t.Fatalf("expected 3 teams ranked, got %d", len(ranks))
	}
	want := []struct {
		team string
		avg  float64
	}{{"bos", 25}, {"lal", 19}, {"nyk", 16}}
	for i, w := range want {
		if ranks[i].TeamID != w.team || ranks[i].ConcededAvg != w.avg || ranks[i].Rank != i+1 {
			t.Fatalf("rank %d: expected %s/%v got %+v", i+1, w.team, w.avg, ranks[i])
		}
	}

	league, ok := set.LeagueAverage(stats.BucketGuard, stats.Points)
	if !ok || league != 20 {
		t.Fatalf("expected league average 20, got %v %v", league, ok)
	}

	if _, ok := set.Lookup("bos", stats.BucketCenter, stats.Rebounds); !ok {
		t.Fatalf("expected center profile for bos")
	}
	if _, ok := set.Lookup("mia", stats.BucketGuard, stats.Points); ok {
		t.Fatalf("expected no profile for a team with no observations")
	}
}

func TestBuildProfilesTieBreaksByTeamID(t *testing.T) {
	positions := map[string]string{"p": "F"}
	obs := []stats.Observation{
		{PlayerID: "p", OpponentID: "zzz", Minutes: 20, Points: 10},
		{PlayerID: "p", OpponentID: "aaa", Minutes: 20, Points: 10},
	}
	ranks := BuildProfiles(obs, positions, 15).Rankings(stats.BucketForward, stats.Points)
	if ranks[0].TeamID != "aaa" || ranks[1].TeamID != "zzz" {
		t.Fatalf("expected deterministic tie-break, got %+v", ranks)
	}
}

func TestResolveComputesMatchupAndPace(t *testing.T) {
	obs, positions := fixture()
	league := []teams.Team{
		{ID: "bos", Ratings: teams.Ratings{Pace: 102, DefensiveRating: 110}},
		{ID: "nyk", Ratings: teams.Ratings{Pace: 98, DefensiveRating: 114}},
		{ID: "lal"},
	}
	r := NewResolver(BuildProfiles(obs, positions, DefaultMinMinutes), league)

	if r.LeaguePace() != 100 || r.LeagueDefensiveRating() != 112 {
		t.Fatalf("unexpected league averages pace=%v def=%v", r.LeaguePace(), r.LeagueDefensiveRating())
	}

	m := r.Resolve("G", league[0], stats.Points)
	if !m.Known || m.Rank != 1 || m.Grade != projections.GradeElite {
		t.Fatalf("unexpected snapshot %+v", m)
	}
	if m.RawMatchup != 25.0/20.0 {
		t.Fatalf("expected raw matchup 1.25, got %v", m.RawMatchup)
	}
	if m.RawPace != 102.0/100.0 {
		t.Fatalf("expected raw pace 1.02, got %v", m.RawPace)
	}

	lal := r.Resolve("G", league[2], stats.Points)
	if !lal.Known || lal.RawPace != 1 {
		t.Fatalf("expected known matchup with neutral pace for team without pace, got %+v", lal)
	}
}

func TestResolveCompositeAveragesPartFactors(t *testing.T) {
	obs, positions := fixture()
	r := NewResolver(BuildProfiles(obs, positions, DefaultMinMinutes), nil)

	m := r.Resolve("G", teams.Team{ID: "nyk"}, stats.PA)
	ptsFactor := 16.0 / 20.0
	astLeague := (8.0 + 4.0 + 5.0) / 3.0
	astFactor := 4.0 / astLeague
	want := (ptsFactor + astFactor) / 2
	if math.Abs(m.RawMatchup-want) > 1e-12 {
		t.Fatalf("expected composite factor %v got %v", want, m.RawMatchup)
	}
	if m.Rank != 3 || m.Grade != projections.GradeElite {
		t.Fatalf("expected points rank for composites, got rank %d grade %s", m.Rank, m.Grade)
	}
	if m.ConcededAvg != 20 {
		t.Fatalf("expected summed conceded average 20, got %v", m.ConcededAvg)
	}
	if r.LeaguePace() != DefaultLeaguePace {
		t.Fatalf("expected default league pace without team data")
	}
}

func TestResolveUnknownPaths(t *testing.T) {
	obs, positions := fixture()
	r := NewResolver(BuildProfiles(obs, positions, DefaultMinMinutes), nil)

	cases := []struct {
		name     string
		position string
		opponent teams.Team
		reason   string
	}{
		{"unmapped", "PG", teams.Team{ID: "bos"}, ReasonUnmappedPosition},
		{"no_opponent", "G", teams.Team{}, ReasonUnknownOpponent},
		{"no_profile", "G", teams.Team{ID: "mia"}, ReasonNoProfile},
		{"bucket_without_data", "F", teams.Team{ID: "bos"}, ReasonNoProfile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := r.Resolve(tc.position, tc.opponent, stats.Points)
			if m.Known || m.Reason != tc.reason {
				t.Fatalf("expected unknown with %s, got %+v", tc.reason, m)
			}
			if m.RawMatchup != 1 || m.RawPace != 1 || m.Grade != projections.GradeUnknown {
				t.Fatalf("expected neutral factors, got %+v", m)
			}
		})
	}
}

func TestGradeForRank(t *testing.T) {
	cases := map[int]projections.Grade{
		0: projections.GradeUnknown, 1: projections.GradeElite, 5: projections.GradeElite,
		6: projections.GradeGood, 10: projections.GradeGood, 11: projections.GradeNeutral,
		20: projections.GradeNeutral, 21: projections.GradeTough, 25: projections.GradeTough,
		26: projections.GradeLockdown, 30: projections.GradeLockdown,
	}
	for rank, want := range cases {
		if got := GradeForRank(rank); got != want {
			t.Fatalf("rank %d: expected %s got %s", rank, want, got)
		}
	}
}

type stubSource struct {
	obs     []stats.Observation
	players []players.Player
	teams   []teams.Team
	err     error
}

func (s stubSource) AllObservations(context.Context, time.Time) ([]stats.Observation, error) {
	return s.obs, s.err
}

func (s stubSource) Players(context.Context) ([]players.Player, error) {
	return s.players, nil
}

func (s stubSource) Teams(context.Context) ([]teams.Team, error) {
	return s.teams, nil
}

func TestLoadBuildsFromSource(t *testing.T) {
	obs, positions := fixture()
	var roster []players.Player
	for id, pos := range positions {
		roster = append(roster, players.Player{ID: id, Position: pos})
	}
	r, err := Load(context.Background(), stubSource{obs: obs, players: roster}, time.Time{}, 0)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got := r.Rankings(stats.BucketGuard, stats.PRA); len(got) != 3 || got[0].TeamID != "bos" {
		t.Fatalf("unexpected rankings %+v", got)
	}

	boom := errors.New("boom")
	if _, err := Load(context.Background(), stubSource{err: boom}, time.Time{}, 0); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestResolveShutoutDefenseGetsFloorFactor(t *testing.T) {
	positions := map[string]string{"g1": "G"}
	obs := []stats.Observation{
		{PlayerID: "g1", OpponentID: "bos", Minutes: 30, Blocks: 0},
		{PlayerID: "g1", OpponentID: "nyk", Minutes: 30, Blocks: 2},
	}
	league := []teams.Team{{ID: "bos"}, {ID: "nyk"}}
	r := NewResolver(BuildProfiles(obs, positions, DefaultMinMinutes), league)

	m := r.Resolve("G", league[0], stats.Blocks)
	if !m.Known || m.RawMatchup != 0 {
		t.Fatalf("expected known shutout matchup, got %+v", m)
	}
	f := adjust.Build(adjust.Inputs{RawMatchup: m.RawMatchup, RawPace: m.RawPace, Injury: 1})
	if f.Matchup != adjust.MatchupRange.Min {
		t.Fatalf("expected toughest matchup to clamp to %v, got %v", adjust.MatchupRange.Min, f.Matchup)
	}
}
