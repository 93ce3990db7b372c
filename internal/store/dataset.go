package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/games"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/players"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/teams"
)

// Dataset is the JSON document a MemoryStore can be seeded from.
type Dataset struct {
	Players      []players.Player            `json:"players"`
	Teams        []teams.Team                `json:"teams"`
	Games        []games.Game                `json:"games"`
	Observations []stats.Observation         `json:"observations"`
	Lines        []projections.Line          `json:"lines"`
	Spreads      []SpreadQuote               `json:"spreads"`
	Outcomes     []projections.GradedOutcome `json:"outcomes,omitempty"`
}

// SpreadQuote is one side's point spread for a game.
type SpreadQuote struct {
	GameID string  `json:"gameId"`
	TeamID string  `json:"teamId"`
	Spread float64 `json:"spread"`
}

// ReadDataset decodes a dataset file.
func ReadDataset(path string) (Dataset, error) {
	if path == "" {
		return Dataset{}, errors.New("dataset path required")
	}
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, err
	}
	defer f.Close()

	var ds Dataset
	if err := json.NewDecoder(f).Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	return ds, nil
}

// LoadMemoryStore reads path and returns a store seeded with its contents.
func LoadMemoryStore(path string) (*MemoryStore, error) {
	ds, err := ReadDataset(path)
	if err != nil {
		return nil, err
	}
	s := NewMemoryStore()
	s.Seed(ds)
	return s, nil
}

// Seed replaces reference data and appends the dataset's facts.
func (s *MemoryStore) Seed(ds Dataset) {
	s.SetPlayers(ds.Players)
	s.SetTeams(ds.Teams)
	s.SetGames(ds.Games)
	s.AddObservations(ds.Observations...)
	s.AddLines(ds.Lines...)
	for _, q := range ds.Spreads {
		s.SetSpread(q.GameID, q.TeamID, q.Spread)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range ds.Outcomes {
		if _, ok := s.graded[o.ProjectionID]; ok {
			continue
		}
		s.graded[o.ProjectionID] = struct{}{}
		s.outcomes = append(s.outcomes, o)
	}
}
