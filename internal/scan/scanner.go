// Package scan projects every posted market line for a date and keeps the lines
// where the projection disagrees with the market by at least a minimum edge.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/logging"
	"github.com/preston-bernstein/nba-props-engine/internal/metrics"
	"github.com/preston-bernstein/nba-props-engine/internal/projector"
	"github.com/preston-bernstein/nba-props-engine/internal/store"
	"github.com/preston-bernstein/nba-props-engine/internal/timeutil"
)

// DefaultWidth bounds concurrent work items when none is configured.
const DefaultWidth = 8

// Config tunes the fan-out.
type Config struct {
	Width   int
	MinEdge float64
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Query selects the lines to scan. Empty Stats scans projector.DefaultGameStats.
type Query struct {
	Date       time.Time
	Stats      []stats.Kind
	Sportsbook string
	Save       bool
}

// Result holds the kept edges, largest |edge| first.
type Result struct {
	Date    string                   `json:"date"`
	Scanned int                      `json:"scanned"`
	Skipped int                      `json:"skipped"`
	Edges   []projections.Projection `json:"edges"`
}

// Scanner fans projections out over isolated store sessions.
type Scanner struct {
	sessions store.SessionFactory
	engine   *projector.Engine
	cfg      Config
}

// New builds a scanner. Each work item opens its own session from sessions and
// projects through a copy of engine bound to that session.
func New(sessions store.SessionFactory, engine *projector.Engine, cfg Config) *Scanner {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	return &Scanner{sessions: sessions, engine: engine, cfg: cfg}
}

// Scan projects every line posted for q.Date. Players without enough history are
// skipped; any other failure cancels the remaining items and is returned.
func (s *Scanner) Scan(ctx context.Context, q Query) (Result, error) {
	start := time.Now()
	res, err := s.scan(ctx, q)
	s.cfg.Metrics.RecordScan(res.Scanned, time.Since(start), err)
	return res, err
}

func (s *Scanner) scan(ctx context.Context, q Query) (Result, error) {
	day := timeutil.DateOnly(q.Date)
	logger := logging.FromContext(ctx, s.cfg.Logger)
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With(
		slog.String(logging.FieldComponent, "scan"),
		slog.String(logging.FieldDate, timeutil.FormatDate(day)),
	)
	res := Result{Date: timeutil.FormatDate(day), Edges: []projections.Projection{}}

	lines, err := s.lines(ctx, day, q)
	if err != nil {
		return res, err
	}

	var (
		mu      sync.Mutex
		kept    []projections.Projection
		skipped int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Width)
	for _, line := range lines {
		g.Go(func() error {
			proj, ok, err := s.item(gctx, line, q.Save)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			switch {
			case !ok:
				skipped++
			case math.Abs(proj.EdgePct()) >= s.cfg.MinEdge:
				kept = append(kept, proj)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("scan aborted", slog.Any("err", err))
		return res, err
	}

	sort.SliceStable(kept, func(i, j int) bool {
		ei, ej := math.Abs(kept[i].EdgePct()), math.Abs(kept[j].EdgePct())
		if ei != ej {
			return ei > ej
		}
		if kept[i].PlayerID != kept[j].PlayerID {
			return kept[i].PlayerID < kept[j].PlayerID
		}
		return kept[i].Stat < kept[j].Stat
	})
	res.Scanned = len(lines)
	res.Skipped = skipped
	if kept != nil {
		res.Edges = kept
	}
	logger.Info("scan complete",
		slog.Int(logging.FieldCount, len(lines)),
		slog.Int("edges", len(res.Edges)),
		slog.Int("skipped", skipped))
	return res, nil
}

func (s *Scanner) lines(ctx context.Context, day time.Time, q Query) ([]projections.Line, error) {
	kinds := q.Stats
	if len(kinds) == 0 {
		kinds = projector.DefaultGameStats
	}
	session, err := s.sessions.OpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	var out []projections.Line
	for _, kind := range kinds {
		list, err := session.MarketLines(ctx, day, kind, q.Sportsbook)
		if err != nil {
			return nil, fmt.Errorf("load %s lines: %w", kind, err)
		}
		out = append(out, list...)
	}
	return out, nil
}

// item projects one line on its own session. ok is false for players the engine
// cannot project.
func (s *Scanner) item(ctx context.Context, line projections.Line, save bool) (projections.Projection, bool, error) {
	session, err := s.sessions.OpenSession(ctx)
	if err != nil {
		return projections.Projection{}, false, fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	threshold := line.Line
	proj, err := s.engine.With(session).Project(ctx, projector.Request{
		PlayerID:   line.PlayerID,
		Stat:       line.Stat,
		GameID:     line.GameID,
		Date:       line.Date,
		Threshold:  &threshold,
		OverPrice:  line.OverPrice,
		UnderPrice: line.UnderPrice,
		Sportsbook: line.Sportsbook,
	})
	switch {
	case errors.Is(err, projector.ErrInsufficientData), errors.Is(err, projector.ErrUnknownSubject):
		return projections.Projection{}, false, nil
	case err != nil:
		return projections.Projection{}, false, fmt.Errorf("project %s %s: %w", line.PlayerID, line.Stat, err)
	}
	if save {
		saved, err := session.SaveProjection(ctx, proj)
		if err != nil {
			return projections.Projection{}, false, fmt.Errorf("save projection %s: %w", proj.ID, err)
		}
		proj = saved
	}
	return proj, true, nil
}
