// Package montecarlo samples a projection's distribution for percentile bands,
// hit probabilities and market expected value.
package montecarlo

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/metrics"
	"github.com/preston-bernstein/nba-props-engine/internal/odds"
)

// DefaultSamples is the draw count per simulation.
const DefaultSamples = 10000

// ErrInvalidInput is returned for non-finite means or deviations.
var ErrInvalidInput = errors.New("invalid simulation input")

// ConfidenceLevels are the two-sided interval levels reported with every result.
var ConfidenceLevels = []float64{0.68, 0.80, 0.90, 0.95}

var percentileLevels = []float64{0.10, 0.25, 0.50, 0.75, 0.90}

// Input describes one simulation request. Threshold, prices and ceiling are optional.
type Input struct {
	Mean       float64
	StdDev     float64
	Stat       stats.Kind
	Threshold  *float64
	Ceiling    *float64
	OverPrice  *int
	UnderPrice *int
}

// Percentiles are the sampled distribution bands.
type Percentiles struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// Interval is a normal-theory confidence band around the mean.
type Interval struct {
	Level float64 `json:"level"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Result is an ephemeral simulation summary.
type Result struct {
	Samples     int              `json:"samples"`
	Percentiles Percentiles      `json:"percentiles"`
	Mean        float64          `json:"mean"`
	StdDev      float64          `json:"stdDev"`
	OverProb    *float64         `json:"overProb,omitempty"`
	UnderProb   *float64         `json:"underProb,omitempty"`
	EV          *odds.Evaluation `json:"ev,omitempty"`
	Fair        *odds.Fair       `json:"fair,omitempty"`
	Intervals   []Interval       `json:"confidenceIntervals"`
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithSamples overrides the draw count. Non-positive values are ignored.
func WithSamples(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.samples = n
		}
	}
}

// WithSeed makes the draw sequence reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithCeiling caps draws for a stat kind.
func WithCeiling(kind stats.Kind, ceiling float64) Option {
	return func(s *Simulator) {
		s.ceilings[kind] = ceiling
	}
}

// WithMetrics records simulation counts and latency.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(s *Simulator) {
		s.metrics = rec
	}
}

// Simulator draws from a floored normal distribution. Safe for concurrent use.
type Simulator struct {
	samples  int
	ceilings map[stats.Kind]float64
	metrics  *metrics.Recorder

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a simulator with DefaultSamples and a randomly seeded source.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		samples:  DefaultSamples,
		ceilings: make(map[stats.Kind]float64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// Samples returns the configured draw count.
func (s *Simulator) Samples() int {
	return s.samples
}

// Simulate runs one simulation. A non-positive deviation collapses every band to the mean
// pinned into [0, ceiling], the same bounds the sampled draws respect.
func (s *Simulator) Simulate(in Input) (Result, error) {
	if math.IsNaN(in.Mean) || math.IsInf(in.Mean, 0) || math.IsNaN(in.StdDev) || math.IsInf(in.StdDev, 0) {
		return Result{}, fmt.Errorf("%w: mean %v std %v", ErrInvalidInput, in.Mean, in.StdDev)
	}
	priced := in.OverPrice != nil && in.UnderPrice != nil
	if priced {
		if err := errors.Join(odds.Validate(*in.OverPrice), odds.Validate(*in.UnderPrice)); err != nil {
			return Result{}, err
		}
	}

	start := time.Now()
	res := Result{Samples: s.samples, Intervals: ConfidenceIntervals(in.Mean, in.StdDev)}
	if in.StdDev <= 0 {
		point := ClampedNormal{Mean: in.Mean, Ceiling: s.ceiling(in)}.pin(in.Mean)
		res.Percentiles = Percentiles{P10: point, P25: point, P50: point, P75: point, P90: point}
		res.Mean = point
		if in.Threshold != nil {
			over := 0.0
			if point > *in.Threshold {
				over = 1
			}
			res.setHit(over)
		}
	} else {
		draws := s.draw(ClampedNormal{Mean: in.Mean, StdDev: in.StdDev, Ceiling: s.ceiling(in)})
		slices.Sort(draws)
		q := make([]float64, len(percentileLevels))
		for i, p := range percentileLevels {
			q[i] = stat.Quantile(p, stat.Empirical, draws, nil)
		}
		res.Percentiles = Percentiles{P10: q[0], P25: q[1], P50: q[2], P75: q[3], P90: q[4]}
		res.Mean, res.StdDev = stat.PopMeanStdDev(draws, nil)
		if in.Threshold != nil {
			res.setHit(fractionAbove(draws, *in.Threshold))
		}
	}

	if priced {
		fair := odds.NoVig(*in.OverPrice, *in.UnderPrice)
		res.Fair = &fair
		if res.OverProb != nil {
			ev := odds.Evaluate(*res.OverProb, *res.UnderProb, *in.OverPrice, *in.UnderPrice)
			res.EV = &ev
		}
	}
	s.metrics.RecordSimulation(s.samples, time.Since(start))
	return res, nil
}

// ConfidenceIntervals returns normal-theory bands at ConfidenceLevels, lower bounds floored at zero.
func ConfidenceIntervals(mean, stdDev float64) []Interval {
	sd := math.Max(stdDev, 0)
	out := make([]Interval, 0, len(ConfidenceLevels))
	for _, level := range ConfidenceLevels {
		z := distuv.UnitNormal.Quantile((1 + level) / 2)
		out = append(out, Interval{
			Level: level,
			Lower: math.Max(0, mean-z*sd),
			Upper: mean + z*sd,
		})
	}
	return out
}

func (s *Simulator) draw(dist ClampedNormal) []float64 {
	out := make([]float64, s.samples)
	s.mu.Lock()
	dist.Fill(s.rng, out)
	s.mu.Unlock()
	return out
}

func (s *Simulator) ceiling(in Input) *float64 {
	if in.Ceiling != nil {
		return in.Ceiling
	}
	if c, ok := s.ceilings[in.Stat]; ok {
		return &c
	}
	return nil
}

func (r *Result) setHit(over float64) {
	under := 1 - over
	r.OverProb = &over
	r.UnderProb = &under
}

// fractionAbove counts sorted draws strictly greater than threshold.
func fractionAbove(sorted []float64, threshold float64) float64 {
	idx, found := slices.BinarySearch(sorted, threshold)
	if found {
		for idx < len(sorted) && sorted[idx] == threshold {
			idx++
		}
	}
	return float64(len(sorted)-idx) / float64(len(sorted))
}
