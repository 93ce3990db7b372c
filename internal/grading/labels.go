package grading

import (
	"context"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/games"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/players"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/teams"
)

// labeler fills display fields on leaderboard entries, memoizing lookups for one report.
// Missing records leave the fields blank.
type labeler struct {
	source  Source
	players map[string]*players.Player
	teams   map[string]*teams.Team
	games   map[string]*games.Game
}

func newLabeler(source Source) *labeler {
	return &labeler{
		source:  source,
		players: map[string]*players.Player{},
		teams:   map[string]*teams.Team{},
		games:   map[string]*games.Game{},
	}
}

func (l *labeler) label(ctx context.Context, e *Entry) {
	p := l.player(ctx, e.PlayerID)
	if p == nil {
		return
	}
	e.PlayerName = p.Name()
	if t := l.team(ctx, p.TeamID); t != nil {
		e.Team = t.Label()
	}
	if g := l.game(ctx, e.GameID); g != nil {
		if opp, ok := g.Opponent(p.TeamID); ok {
			e.Opponent = opp.Label()
		}
	}
}

func (l *labeler) player(ctx context.Context, id string) *players.Player {
	if p, ok := l.players[id]; ok {
		return p
	}
	var out *players.Player
	if p, err := l.source.Player(ctx, id); err == nil {
		out = &p
	}
	l.players[id] = out
	return out
}

func (l *labeler) team(ctx context.Context, id string) *teams.Team {
	if t, ok := l.teams[id]; ok {
		return t
	}
	var out *teams.Team
	if t, err := l.source.Team(ctx, id); err == nil {
		out = &t
	}
	l.teams[id] = out
	return out
}

func (l *labeler) game(ctx context.Context, id string) *games.Game {
	if g, ok := l.games[id]; ok {
		return g
	}
	var out *games.Game
	if g, err := l.source.Game(ctx, id); err == nil {
		out = &g
	}
	l.games[id] = out
	return out
}
