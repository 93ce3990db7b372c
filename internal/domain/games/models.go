package games

import (
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/teams"
)

// GameStatus mirrors the shared contract for game lifecycle states.
type GameStatus string

const (
	StatusScheduled  GameStatus = "SCHEDULED"
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusFinal      GameStatus = "FINAL"
	StatusPostponed  GameStatus = "POSTPONED"
	StatusCanceled   GameStatus = "CANCELED"
)

// Score captures home and away points.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Game is the canonical contest shape consumed by the engine.
type Game struct {
	ID        string     `json:"id"`
	Date      time.Time  `json:"date"`
	StartTime string     `json:"startTime,omitempty"`
	HomeTeam  teams.Team `json:"homeTeam"`
	AwayTeam  teams.Team `json:"awayTeam"`
	Status    GameStatus `json:"status"`
	Score     Score      `json:"score"`
	Season    string     `json:"season,omitempty"`
}

// IsFinal reports whether the game has a recorded final result.
func (g Game) IsFinal() bool {
	return g.Status == StatusFinal
}

// Involves reports whether the team played in the game.
func (g Game) Involves(teamID string) bool {
	return teamID != "" && (g.HomeTeam.ID == teamID || g.AwayTeam.ID == teamID)
}

// IsHome reports whether teamID is the home side.
func (g Game) IsHome(teamID string) bool {
	return teamID != "" && g.HomeTeam.ID == teamID
}

// Opponent returns the other side of the game for teamID.
func (g Game) Opponent(teamID string) (teams.Team, bool) {
	switch teamID {
	case "":
		return teams.Team{}, false
	case g.HomeTeam.ID:
		return g.AwayTeam, true
	case g.AwayTeam.ID:
		return g.HomeTeam, true
	default:
		return teams.Team{}, false
	}
}
