// Package server wires configuration, storage, feeds and the engine components
// into one App for the command line.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/config"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/grading"
	"github.com/preston-bernstein/nba-props-engine/internal/injury"
	"github.com/preston-bernstein/nba-props-engine/internal/matchup"
	"github.com/preston-bernstein/nba-props-engine/internal/metrics"
	"github.com/preston-bernstein/nba-props-engine/internal/montecarlo"
	"github.com/preston-bernstein/nba-props-engine/internal/projector"
	"github.com/preston-bernstein/nba-props-engine/internal/providers"
	"github.com/preston-bernstein/nba-props-engine/internal/scan"
	"github.com/preston-bernstein/nba-props-engine/internal/snapshots"
	"github.com/preston-bernstein/nba-props-engine/internal/store"
	"github.com/preston-bernstein/nba-props-engine/internal/timeutil"
)

var metricsSetup = metrics.Setup

// Exporter persists dated report exports.
type Exporter interface {
	Write(kind snapshots.Kind, date string, payload any) error
}

// App holds the wired components. Close releases them.
type App struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	Store     store.Store
	Resolver  *matchup.Resolver
	Injury    *injury.Estimator
	Engine    *projector.Engine
	Simulator *montecarlo.Simulator
	Grader    *grading.Grader
	Scanner   *scan.Scanner
	Exports   Exporter
	Archive   *snapshots.FSStore

	closeStore    func() error
	closeFeed     func()
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// deps overrides components in tests.
type deps struct {
	recorder *metrics.Recorder
	store    *storeComponents
	feed     providers.AvailabilityFeed
	now      func() time.Time
}

// New builds an App from configuration.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	return newApp(ctx, cfg, logger, deps{})
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger, d deps) (*App, error) {
	now := d.now
	if now == nil {
		now = time.Now
	}
	recorder, metricsSrv, metricsStop := buildMetrics(cfg, logger, d.recorder)

	sc := d.store
	if sc == nil {
		built, err := buildStore(ctx, cfg.Store, logger)
		if err != nil {
			return nil, fmt.Errorf("build store: %w", err)
		}
		sc = &built
	}

	resolver, err := matchup.Load(ctx, sc.store, time.Time{}, cfg.Engine.DefenseMinMinutes)
	if err != nil {
		_ = sc.close()
		return nil, fmt.Errorf("load defensive profiles: %w", err)
	}

	chain := feedChain{feed: d.feed, close: func() {}}
	if d.feed == nil {
		chain = newFeedFactory(logger, recorder).build(cfg.Feed, cfg.Engine.Timezone)
	}
	var reports injury.ReportSource
	if chain.feed != nil {
		loc := timeutil.ResolveLocation(cfg.Engine.Timezone)
		reports = providers.NewReleaseSchedule(chain.feed, cfg.Feed.ReleaseHours, loc, logger)
	}
	estimator := injury.New(sc.store, reports, injury.Config{
		UsageTTL:   cfg.Cache.UsageTTL,
		FeedTTL:    cfg.Cache.FeedTTL,
		MinMinutes: cfg.Engine.MinMinutes,
		Now:        now,
		Metrics:    recorder,
		Logger:     logger,
	})

	engine := projector.New(sc.store, projector.Config{
		Lookback:   cfg.Engine.Lookback,
		MinMinutes: cfg.Engine.MinMinutes,
		Resolver:   resolver,
		Injury:     estimator,
		Now:        now,
		Metrics:    recorder,
		Logger:     logger,
	})


	writer, archive := buildExports(cfg.Snapshots, now)
	return &App{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		now:           now,
		Store:         sc.store,
		Resolver:      resolver,
		Injury:        estimator,
		Engine:        engine,
		Simulator:     montecarlo.New(simulatorOptions(cfg.Engine, recorder, 0, 0)...),
		Grader:        grading.New(sc.store, now, recorder, logger),
		Scanner:       scan.New(sc.sessions, engine, scan.Config{Width: cfg.Scan.Width, MinEdge: cfg.Scan.MinEdge, Metrics: recorder, Logger: logger}),
		Exports:       writer,
		Archive:       archive,
		closeStore:    sc.close,
		closeFeed:     chain.close,
		metricsServer: metricsSrv,
		metricsStop:   metricsStop,
	}, nil
}

// simulatorOptions applies configured samples, seed and stat ceilings. Non-zero
// samples or seed override the configured values.
func simulatorOptions(cfg config.EngineConfig, recorder *metrics.Recorder, samples int, seed uint64) []montecarlo.Option {
	if samples <= 0 {
		samples = cfg.SimulationSamples
	}
	if seed == 0 {
		seed = cfg.SimulationSeed
	}
	opts := []montecarlo.Option{
		montecarlo.WithSamples(samples),
		montecarlo.WithMetrics(recorder),
	}
	if seed != 0 {
		opts = append(opts, montecarlo.WithSeed(seed))
	}
	for label, ceiling := range cfg.StatCeilings {
		if kind, err := stats.Parse(label); err == nil {
			opts = append(opts, montecarlo.WithCeiling(kind, ceiling))
		}
	}
	return opts
}

// NewSimulator builds a simulator with the configured ceilings and the given
// sample count and seed, falling back to configuration for zero values.
func (a *App) NewSimulator(samples int, seed uint64) *montecarlo.Simulator {
	return montecarlo.New(simulatorOptions(a.cfg.Engine, a.metrics, samples, seed)...)
}

func buildExports(cfg config.SnapshotConfig, now func() time.Time) (*snapshots.Writer, *snapshots.FSStore) {
	return snapshots.NewWriter(cfg.Folder, cfg.RetentionDays, now), snapshots.NewFSStore(cfg.Folder)
}

// Metrics exposes the shared recorder.
func (a *App) Metrics() *metrics.Recorder {
	return a.metrics
}

// Today returns the current date in the engine timezone.
func (a *App) Today() time.Time {
	return timeutil.DateOnly(a.now().In(timeutil.ResolveLocation(a.cfg.Engine.Timezone)))
}

// Edges scans the lines posted for q.Date and optionally exports the result.
func (a *App) Edges(ctx context.Context, q scan.Query, export bool) (scan.Result, error) {
	if q.Date.IsZero() {
		q.Date = a.Today()
	}
	res, err := a.Scanner.Scan(ctx, q)
	if err != nil {
		return res, err
	}
	return res, a.export(export, snapshots.KindEdges, res.Date, res)
}

// GradeDate grades every final game on day and exports the run when requested.
func (a *App) GradeDate(ctx context.Context, day time.Time, export bool) (grading.DaySummary, error) {
	res, err := a.Grader.GradeDate(ctx, day)
	if err != nil {
		return res, err
	}
	return res, a.export(export, snapshots.KindGrades, res.Date, res)
}

// Report summarizes graded history and exports it under today's date when requested.
func (a *App) Report(ctx context.Context, f grading.Filter, export bool) (grading.AccuracySummary, error) {
	res, err := a.Grader.Report(ctx, f)
	if err != nil {
		return res, err
	}
	return res, a.export(export, snapshots.KindReport, timeutil.FormatDate(a.Today()), res)
}

// Rankings lists every team's defensive profile for a role and stat, best matchup first.
func (a *App) Rankings(bucket stats.RoleBucket, kind stats.Kind, export bool) ([]matchup.Entry, error) {
	list := a.Resolver.Rankings(bucket, kind)
	return list, a.export(export, snapshots.KindRankings, timeutil.FormatDate(a.Today()), list)
}

func (a *App) export(enabled bool, kind snapshots.Kind, date string, payload any) error {
	if !enabled {
		return nil
	}
	if err := a.Exports.Write(kind, date, payload); err != nil {
		return fmt.Errorf("export %s: %w", kind, err)
	}
	if a.logger != nil {
		a.logger.Info("export written", slog.String("kind", string(kind)), slog.String("date", date))
	}
	return nil
}

// StartMetrics serves the Prometheus endpoint when metrics are enabled.
func (a *App) StartMetrics() {
	if a.metricsServer == nil {
		return
	}
	launchServer("metrics", a.metricsServer, a.logger, nil)
}

// Close flushes telemetry and releases the feed limiter and store.
func (a *App) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if a.metricsStop != nil {
		if err := a.metricsStop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
		}
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if a.closeFeed != nil {
		a.closeFeed()
	}
	if a.closeStore != nil {
		if err := a.closeStore(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		if logger != nil {
			logger.Warn("metrics setup failed, continuing without telemetry", "err", err)
		}
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = newMetricsServer(recCfg.Port, handler)
	}
	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if logger != nil {
			logger.Info("starting "+name+" server", slog.String("addr", srv.Addr()))
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if logger != nil {
				logger.Warn(name+" server failed", "error", err)
			}
			if onError != nil {
				onError(err)
			}
		}
	}()
}
