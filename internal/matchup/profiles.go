// Package matchup builds defensive profiles per opponent and role bucket and resolves matchup factors.
package matchup

import (
	"sort"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
)

// DefaultMinMinutes is the participation floor for observations counted against a defense.
const DefaultMinMinutes = 15.0

type profileKey struct {
	team   string
	bucket stats.RoleBucket
	stat   stats.Kind
}

type leagueKey struct {
	bucket stats.RoleBucket
	stat   stats.Kind
}

// Entry is one team's conceded average and rank for a bucket and primitive stat.
type Entry struct {
	TeamID      string           `json:"teamId"`
	Bucket      stats.RoleBucket `json:"bucket"`
	Stat        stats.Kind       `json:"stat"`
	ConcededAvg float64          `json:"concededAvg"`
	Rank        int              `json:"rank"`
	Samples     int              `json:"samples"`
}

// ProfileSet is an immutable snapshot of defensive profiles for every team.
type ProfileSet struct {
	entries map[profileKey]Entry
	league  map[leagueKey]float64
	ranked  map[leagueKey][]Entry
}

type accum struct {
	sum float64
	n   int
}

// BuildProfiles aggregates what each team concedes per bucket and primitive stat.
// positions maps player id to raw position; players with unmapped positions are skipped.
func BuildProfiles(obs []stats.Observation, positions map[string]string, minMinutes float64) *ProfileSet {
	sums := make(map[profileKey]*accum)
	leagueSums := make(map[leagueKey]*accum)

	for _, o := range obs {
		if !o.Qualifies(minMinutes) || o.OpponentID == "" {
			continue
		}
		bucket, ok := stats.MapRole(positions[o.PlayerID])
		if !ok {
			continue
		}
		for _, k := range stats.Primitives() {
			v := o.Value(k)
			pk := profileKey{team: o.OpponentID, bucket: bucket, stat: k}
			a := sums[pk]
			if a == nil {
				a = &accum{}
				sums[pk] = a
			}
			a.sum += v
			a.n++
		}
	}

	set := &ProfileSet{
		entries: make(map[profileKey]Entry, len(sums)),
		league:  make(map[leagueKey]float64),
		ranked:  make(map[leagueKey][]Entry),
	}
	for pk, a := range sums {
		e := Entry{TeamID: pk.team, Bucket: pk.bucket, Stat: pk.stat, ConcededAvg: a.sum / float64(a.n), Samples: a.n}
		lk := leagueKey{bucket: pk.bucket, stat: pk.stat}
		set.ranked[lk] = append(set.ranked[lk], e)
		la := leagueSums[lk]
		if la == nil {
			la = &accum{}
			leagueSums[lk] = la
		}
		la.sum += e.ConcededAvg
		la.n++
	}
	for lk, la := range leagueSums {
		set.league[lk] = la.sum / float64(la.n)
	}
	for lk, list := range set.ranked {
		sort.Slice(list, func(i, j int) bool {
			if list[i].ConcededAvg != list[j].ConcededAvg {
				return list[i].ConcededAvg > list[j].ConcededAvg
			}
			return list[i].TeamID < list[j].TeamID
		})
		for i := range list {
			list[i].Rank = i + 1
			set.entries[profileKey{team: list[i].TeamID, bucket: lk.bucket, stat: lk.stat}] = list[i]
		}
	}
	return set
}

// Lookup returns a team's entry for a bucket and primitive stat.
func (s *ProfileSet) Lookup(team string, bucket stats.RoleBucket, k stats.Kind) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	e, ok := s.entries[profileKey{team: team, bucket: bucket, stat: k}]
	return e, ok
}

// LeagueAverage is the mean of team conceded averages for a bucket and primitive stat.
func (s *ProfileSet) LeagueAverage(bucket stats.RoleBucket, k stats.Kind) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.league[leagueKey{bucket: bucket, stat: k}]
	return v, ok
}

// Rankings lists teams from most to least conceded for a bucket and primitive stat.
func (s *ProfileSet) Rankings(bucket stats.RoleBucket, k stats.Kind) []Entry {
	if s == nil {
		return nil
	}
	list := s.ranked[leagueKey{bucket: bucket, stat: k}]
	out := make([]Entry, len(list))
	copy(out, list)
	return out
}
