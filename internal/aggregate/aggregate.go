// Package aggregate turns a player's recent box scores into windowed averages and a weighted baseline.
package aggregate

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
)

const (
	ShortWindow  = 5
	MediumWindow = 10
	FormWindow   = 3
	StdWindow    = 10
	MinGames     = 3

	DefaultLookback = 82

	weightShort  = 0.50
	weightMedium = 0.30
	weightSeason = 0.20
)

// ErrInsufficientData marks fewer than MinGames qualifying observations.
var ErrInsufficientData = errors.New("insufficient data")

// Line holds windowed averages over qualifying observations.
type Line struct {
	SeasonAvg float64 `json:"seasonAvg"`
	L5Avg     float64 `json:"l5Avg"`
	L10Avg    float64 `json:"l10Avg"`
	Games     int     `json:"games"`
}

// Sufficient reports whether enough games back a baseline.
func (l Line) Sufficient() bool {
	return l.Games >= MinGames
}

// Baseline weights recent form over the full sample.
func (l Line) Baseline() float64 {
	return l.L5Avg*weightShort + l.L10Avg*weightMedium + l.SeasonAvg*weightSeason
}

// Summarize computes averages over most-recent-first values. Empty input yields a zero Line.
func Summarize(values []float64) Line {
	if len(values) == 0 {
		return Line{}
	}
	return Line{
		SeasonAvg: stat.Mean(values, nil),
		L5Avg:     WindowMean(values, ShortWindow),
		L10Avg:    WindowMean(values, MediumWindow),
		Games:     len(values),
	}
}

// WindowMean averages the first n values (all of them when fewer exist).
func WindowMean(values []float64, n int) float64 {
	if len(values) == 0 || n <= 0 {
		return 0
	}
	if len(values) > n {
		values = values[:n]
	}
	return stat.Mean(values, nil)
}

// StdDev is the sample standard deviation over the first window values, zero below two.
func StdDev(values []float64, window int) float64 {
	if window > 0 && len(values) > window {
		values = values[:window]
	}
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// FormRatio compares the FormWindow average to the MediumWindow average. Zero medium returns 1.
func FormRatio(values []float64) float64 {
	medium := WindowMean(values, MediumWindow)
	if medium == 0 {
		return 1
	}
	return WindowMean(values, FormWindow) / medium
}

// ObservationReader is the slice of the storage collaborator the aggregator needs.
type ObservationReader interface {
	RecentObservations(ctx context.Context, playerID string, limit int, minMinutes float64) ([]stats.Observation, error)
}

// Aggregator loads qualifying observations and summarizes them.
type Aggregator struct {
	reader     ObservationReader
	lookback   int
	minMinutes float64
}

// New constructs an Aggregator. Non-positive lookback falls back to DefaultLookback.
func New(reader ObservationReader, lookback int, minMinutes float64) *Aggregator {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if minMinutes < 0 {
		minMinutes = stats.DefaultMinMinutes
	}
	return &Aggregator{reader: reader, lookback: lookback, minMinutes: minMinutes}
}

// Sample is a loaded set of qualifying values for one player and stat.
type Sample struct {
	Observations []stats.Observation
	Values       []float64
	Line         Line
}

// Load pulls qualifying observations most-recent-first and summarizes kind.
func (a *Aggregator) Load(ctx context.Context, playerID string, kind stats.Kind) (Sample, error) {
	obs, err := a.reader.RecentObservations(ctx, playerID, a.lookback, a.minMinutes)
	if err != nil {
		return Sample{}, fmt.Errorf("load observations for %s: %w", playerID, err)
	}
	qualifying := make([]stats.Observation, 0, len(obs))
	for _, o := range obs {
		if o.Qualifies(a.minMinutes) {
			qualifying = append(qualifying, o)
		}
	}
	values := stats.Values(qualifying, kind)
	return Sample{Observations: qualifying, Values: values, Line: Summarize(values)}, nil
}
