package testutil

import (
	"fmt"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/games"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/players"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/teams"
	"github.com/preston-bernstein/nba-props-engine/internal/store"
)

// UpcomingGameID is the scheduled game NewLeague leaves open for projections.
const UpcomingGameID = "g11"

// Day returns midnight UTC on the given day of January 2025.
func Day(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

// League is a small seeded dataset: ten completed Knicks-Celtics games on odd days
// 1..19 and one scheduled rematch on day 21.
type League struct {
	Store    *store.MemoryStore
	Home     teams.Team
	Away     teams.Team
	Spare    teams.Team
	Players  map[string]players.Player
	Games    []games.Game
	Upcoming games.Game
}

// SampleTeam returns a team fixture with ratings.
func SampleTeam(id string) teams.Team {
	return teams.Team{ID: id, Name: id, FullName: "Team " + id, Abbreviation: id, Ratings: teams.Ratings{Pace: 100, DefensiveRating: 111}}
}

// NewLeague seeds a MemoryStore.
//
// brunson (NYK, G) scores 12, 14 .. 30 in games g1..g10, so most-recent-first
// his points run 30 down to 12. hart (NYK, F), tatum (BOS, F) and white (BOS, G)
// post constant lines.
func NewLeague() *League {
	nyk := teams.Team{ID: "nyk", Name: "Knicks", FullName: "New York Knicks", Abbreviation: "NYK",
		Ratings: teams.Ratings{Pace: 100, DefensiveRating: 112, ScoringMargin: -6, GamesPlayed: 10}}
	bos := teams.Team{ID: "bos", Name: "Celtics", FullName: "Boston Celtics", Abbreviation: "BOS",
		Ratings: teams.Ratings{Pace: 100, DefensiveRating: 110, ScoringMargin: 6, GamesPlayed: 10}}
	mia := teams.Team{ID: "mia", Name: "Heat", FullName: "Miami Heat", Abbreviation: "MIA",
		Ratings: teams.Ratings{Pace: 96, DefensiveRating: 111}}

	roster := map[string]players.Player{
		"brunson": {ID: "brunson", FirstName: "Jalen", LastName: "Brunson", Position: "G", TeamID: nyk.ID, Active: true},
		"hart":    {ID: "hart", FirstName: "Josh", LastName: "Hart", Position: "F", TeamID: nyk.ID, Active: true},
		"tatum":   {ID: "tatum", FirstName: "Jayson", LastName: "Tatum", Position: "F", TeamID: bos.ID, Active: true},
		"white":   {ID: "white", FirstName: "Derrick", LastName: "White", Position: "G", TeamID: bos.ID, Active: true},
	}

	l := &League{Store: store.NewMemoryStore(), Home: nyk, Away: bos, Spare: mia, Players: roster}
	l.Store.SetTeams([]teams.Team{nyk, bos, mia})
	list := make([]players.Player, 0, len(roster))
	for _, p := range roster {
		list = append(list, p)
	}
	l.Store.SetPlayers(list)

	for i := 1; i <= 10; i++ {
		g := games.Game{
			ID:       fmt.Sprintf("g%d", i),
			Date:     Day(2*i - 1),
			HomeTeam: nyk,
			AwayTeam: bos,
			Status:   games.StatusFinal,
			Score:    games.Score{Home: 110, Away: 112},
		}
		if i%2 == 0 {
			g.HomeTeam, g.AwayTeam = bos, nyk
		}
		l.Games = append(l.Games, g)
		l.Store.AddObservations(
			line("brunson", g, nyk.ID, bos.ID, 36, 28, float64(10+2*i), 3, 7),
			line("hart", g, nyk.ID, bos.ID, 34, 15, 10, 8, 4),
			line("tatum", g, bos.ID, nyk.ID, 36, 30, 27, 8, 5),
			line("white", g, bos.ID, nyk.ID, 32, 18, 16, 4, 5),
		)
	}
	l.Upcoming = games.Game{ID: UpcomingGameID, Date: Day(21), HomeTeam: nyk, AwayTeam: bos, Status: games.StatusScheduled}
	l.Games = append(l.Games, l.Upcoming)
	l.Store.SetGames(l.Games)

	l.Store.SetSpread(UpcomingGameID, nyk.ID, 3)
	l.Store.SetSpread(UpcomingGameID, bos.ID, -3)
	l.Store.AddLines(
		projections.Line{PlayerID: "brunson", GameID: UpcomingGameID, Stat: stats.Points, Date: Day(21), Line: 22.5,
			OverPrice: projections.Price(-110), UnderPrice: projections.Price(-110), Sportsbook: "fanduel"},
		projections.Line{PlayerID: "tatum", GameID: UpcomingGameID, Stat: stats.Points, Date: Day(21), Line: 29.5,
			OverPrice: projections.Price(-115), UnderPrice: projections.Price(-105), Sportsbook: "fanduel"},
		projections.Line{PlayerID: "hart", GameID: UpcomingGameID, Stat: stats.Rebounds, Date: Day(21), Line: 7.5,
			OverPrice: projections.Price(-120), UnderPrice: projections.Price(100), Sportsbook: "draftkings"},
		projections.Line{PlayerID: "white", GameID: UpcomingGameID, Stat: stats.Points, Date: Day(21), Line: 16,
			Sportsbook: "fanduel"},
	)
	return l
}

// Finish marks a game final and records its box score.
func (l *League) Finish(gameID string, obs ...stats.Observation) {
	for i := range l.Games {
		if l.Games[i].ID == gameID {
			l.Games[i].Status = games.StatusFinal
		}
	}
	l.Store.SetGames(l.Games)
	l.Store.AddObservations(obs...)
}

// Box builds an observation for a player in one of the league's games.
func (l *League) Box(playerID, gameID string, minutes, points, rebounds, assists float64) stats.Observation {
	p := l.Players[playerID]
	var g games.Game
	for _, candidate := range l.Games {
		if candidate.ID == gameID {
			g = candidate
		}
	}
	opp, _ := g.Opponent(p.TeamID)
	return line(playerID, g, p.TeamID, opp.ID, minutes, 20, points, rebounds, assists)
}

func line(playerID string, g games.Game, teamID, opponentID string, minutes, usage, points, rebounds, assists float64) stats.Observation {
	return stats.Observation{
		PlayerID:   playerID,
		GameID:     g.ID,
		TeamID:     teamID,
		OpponentID: opponentID,
		Date:       g.Date,
		Minutes:    minutes,
		Usage:      &usage,
		Points:     points,
		Rebounds:   rebounds,
		Assists:    assists,
	}
}
