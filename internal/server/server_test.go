package server

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/config"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/grading"
	"github.com/preston-bernstein/nba-props-engine/internal/metrics"
	"github.com/preston-bernstein/nba-props-engine/internal/montecarlo"
	"github.com/preston-bernstein/nba-props-engine/internal/providers/fixture"
	"github.com/preston-bernstein/nba-props-engine/internal/providers/injuryreport"
	"github.com/preston-bernstein/nba-props-engine/internal/scan"
	"github.com/preston-bernstein/nba-props-engine/internal/snapshots"
	"github.com/preston-bernstein/nba-props-engine/internal/testutil"
	"github.com/preston-bernstein/nba-props-engine/internal/teststubs"
)

func metricsSetupSuccess(ctx context.Context, cfg metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error) {
	return metrics.NewRecorder(), http.NewServeMux(), func(context.Context) error { return nil }, nil
}

func metricsSetupFailure(ctx context.Context, cfg metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error) {
	return nil, nil, nil, errors.New("exporter unavailable")
}

func newTestApp(t *testing.T) (*App, *testutil.League, *teststubs.StubExportWriter) {
	t.Helper()
	l := testutil.NewLeague()
	closed := false
	cfg := config.New()
	cfg.Scan.MinEdge = 0
	cfg.Snapshots.Folder = t.TempDir()

	app, err := newApp(context.Background(), cfg, nil, deps{
		recorder: metrics.NewRecorder(),
		store: &storeComponents{store: l.Store, sessions: l.Store, close: func() error {
			closed = true
			return nil
		}},
		feed: &teststubs.StubFeed{},
		now:  testutil.NowAt(testutil.Day(21).Add(17 * time.Hour)),
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	exports := &teststubs.StubExportWriter{}
	app.Exports = exports
	t.Cleanup(func() {
		if err := app.Close(context.Background()); err != nil {
			t.Errorf("close: %v", err)
		}
		if !closed {
			t.Errorf("expected store to be closed")
		}
	})
	return app, l, exports
}

func TestBuildMetricsSuccessPathSetsServerAndShutdown(t *testing.T) {
	orig := metricsSetup
	defer func() { metricsSetup = orig }()
	metricsSetup = metricsSetupSuccess

	rec, srv, stop := buildMetrics(config.Config{
		Metrics: config.MetricsConfig{Enabled: true, Port: "9999"},
	}, nil, nil)

	if rec == nil || srv == nil || stop == nil {
		t.Fatalf("expected recorder, server, and shutdown to be set on success")
	}
	if srv.Addr() != ":9999" {
		t.Fatalf("expected metrics addr, got %s", srv.Addr())
	}
}

func TestBuildMetricsFallsBackOnSetupFailure(t *testing.T) {
	orig := metricsSetup
	defer func() { metricsSetup = orig }()
	metricsSetup = metricsSetupFailure

	logger, buf := testutil.NewBufferLogger()
	rec, srv, stop := buildMetrics(config.Config{Metrics: config.MetricsConfig{Enabled: true}}, logger, nil)
	if rec == nil {
		t.Fatalf("expected fallback recorder")
	}
	if srv != nil || stop != nil {
		t.Fatalf("expected no server on failure")
	}
	if buf.Len() == 0 {
		t.Fatalf("expected warning to be logged")
	}
}

func TestBuildMetricsKeepsInjectedRecorder(t *testing.T) {
	injected := metrics.NewRecorder()
	rec, srv, _ := buildMetrics(config.New(), nil, injected)
	if rec != injected || srv != nil {
		t.Fatalf("expected injected recorder without server")
	}
}

func TestSelectFeed(t *testing.T) {
	if feed := selectFeed(config.FeedConfig{Provider: feedNone}, "UTC", nil); feed != nil {
		t.Fatalf("expected no feed for none, got %T", feed)
	}
	if _, ok := selectFeed(config.FeedConfig{}, "UTC", nil).(*fixture.Feed); !ok {
		t.Fatalf("expected fixture feed by default")
	}
	if _, ok := selectFeed(config.FeedConfig{Provider: "injuryreport", BaseURL: "http://example.test"}, "UTC", nil).(*injuryreport.Client); !ok {
		t.Fatalf("expected injury report client")
	}

	logger, buf := testutil.NewBufferLogger()
	missing := filepath.Join(t.TempDir(), "missing.json")
	if _, ok := selectFeed(config.FeedConfig{FixturePath: missing}, "UTC", logger).(*fixture.Feed); !ok {
		t.Fatalf("expected sample fixture when file is missing")
	}
	if _, ok := selectFeed(config.FeedConfig{Provider: "carrier-pigeon"}, "UTC", logger).(*fixture.Feed); !ok {
		t.Fatalf("expected fixture fallback for unknown provider")
	}
	if buf.Len() == 0 {
		t.Fatalf("expected fallback warnings")
	}
}

func TestFeedFactoryBuild(t *testing.T) {
	f := newFeedFactory(nil, metrics.NewRecorder())
	chain := f.build(config.FeedConfig{Provider: feedNone}, "UTC")
	if chain.feed != nil || chain.close == nil {
		t.Fatalf("expected empty chain with no-op close")
	}
	chain.close()

	chain = f.build(config.FeedConfig{Provider: "fixture", MinInterval: time.Millisecond, RetryAttempts: 1}, "UTC")
	if chain.feed == nil {
		t.Fatalf("expected wrapped fixture feed")
	}
	chain.close()
}

func TestNormalizeFeedName(t *testing.T) {
	if got := normalizeFeedName("InjuryReport", nil); got != "injuryreport" {
		t.Fatalf("expected lowercased name, got %s", got)
	}
	if got := normalizeFeedName("", fixture.New()); got != "*fixture.feed" {
		t.Fatalf("expected type name, got %s", got)
	}
	if got := normalizeFeedName("", nil); got != "feed" {
		t.Fatalf("expected default name, got %s", got)
	}
}

func TestBuildStoreMemoryAndSQLite(t *testing.T) {
	ctx := context.Background()
	mem, err := buildStore(ctx, config.StoreConfig{Driver: "memory"}, nil)
	if err != nil || mem.store == nil || mem.sessions == nil {
		t.Fatalf("expected memory store, err %v", err)
	}
	if err := mem.close(); err != nil {
		t.Fatalf("memory close: %v", err)
	}

	dsn := "file:" + filepath.Join(t.TempDir(), "props.db") + "?_pragma=busy_timeout(5000)"
	db, err := buildStore(ctx, config.StoreConfig{Driver: "sqlite", DSN: dsn, MaxOpenConns: 2}, nil)
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	if err := db.close(); err != nil {
		t.Fatalf("sqlite close: %v", err)
	}

	missing := filepath.Join(t.TempDir(), "missing.json")
	if _, err := buildStore(ctx, config.StoreConfig{Driver: "memory", DatasetPath: missing}, nil); err == nil {
		t.Fatalf("expected error for missing dataset")
	}
	if _, err := buildStore(ctx, config.StoreConfig{Driver: "sqlite", DSN: dsn, DatasetPath: missing}, nil); err == nil {
		t.Fatalf("expected import error for missing dataset")
	}
}

func TestNewFromConfigUsesMemoryStore(t *testing.T) {
	cfg := config.New()
	cfg.Feed.Provider = feedNone
	cfg.Snapshots.Folder = t.TempDir()
	app, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if app.Engine == nil || app.Scanner == nil || app.Grader == nil || app.Simulator == nil || app.Archive == nil {
		t.Fatalf("expected wired components %+v", app)
	}
	app.StartMetrics()
	if err := app.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestAppEdgesExports(t *testing.T) {
	app, _, exports := newTestApp(t)

	res, err := app.Edges(context.Background(), scan.Query{}, true)
	if err != nil {
		t.Fatalf("edges: %v", err)
	}
	if res.Date != "2025-01-21" {
		t.Fatalf("expected today's slate, got %s", res.Date)
	}
	if res.Scanned == 0 {
		t.Fatalf("expected lines to be scanned")
	}
	if _, ok := exports.Payload(snapshots.KindEdges, res.Date); !ok {
		t.Fatalf("expected edges export")
	}
}

func TestAppRankingsWithoutExport(t *testing.T) {
	app, _, exports := newTestApp(t)

	list, err := app.Rankings(stats.BucketGuard, stats.Points, false)
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	if len(list) == 0 {
		t.Fatalf("expected ranked teams")
	}
	if _, ok := exports.Payload(snapshots.KindRankings, "2025-01-21"); ok {
		t.Fatalf("expected no export when disabled")
	}
}

func TestAppGradeDateExports(t *testing.T) {
	app, l, exports := newTestApp(t)
	ctx := context.Background()

	if _, err := app.Edges(ctx, scan.Query{Save: true}, false); err != nil {
		t.Fatalf("edges: %v", err)
	}
	l.Finish(testutil.UpcomingGameID,
		l.Box("brunson", testutil.UpcomingGameID, 36, 31, 3, 7),
		l.Box("tatum", testutil.UpcomingGameID, 37, 24, 9, 4),
		l.Box("hart", testutil.UpcomingGameID, 33, 8, 11, 5),
		l.Box("white", testutil.UpcomingGameID, 30, 14, 3, 6),
	)

	day, err := app.GradeDate(ctx, testutil.Day(21), true)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if day.Games != 1 || day.Graded == 0 {
		t.Fatalf("expected graded slate, got %+v", day)
	}
	if _, ok := exports.Payload(snapshots.KindGrades, "2025-01-21"); !ok {
		t.Fatalf("expected grades export")
	}
	if _, err := app.Report(ctx, grading.Filter{}, true); err != nil {
		t.Fatalf("report: %v", err)
	}
	if _, ok := exports.Payload(snapshots.KindReport, "2025-01-21"); !ok {
		t.Fatalf("expected report export")
	}
}

func TestAppExportFailureIsWrapped(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.Exports = (*snapshots.Writer)(nil)

	_, err := app.Rankings(stats.BucketGuard, stats.Points, true)
	if !errors.Is(err, snapshots.ErrNotConfigured) {
		t.Fatalf("expected wrapped not configured error, got %v", err)
	}
}

func TestCloseJoinsShutdownErrors(t *testing.T) {
	stopErr := errors.New("flush failed")
	storeErr := errors.New("db busy")
	feedClosed := false
	app := &App{
		metricsStop: func(context.Context) error { return stopErr },
		closeFeed:   func() { feedClosed = true },
		closeStore:  func() error { return storeErr },
	}

	err := app.Close(context.Background())
	if !errors.Is(err, stopErr) || !errors.Is(err, storeErr) {
		t.Fatalf("expected joined errors, got %v", err)
	}
	if !feedClosed {
		t.Fatalf("expected feed limiter to be released")
	}
}

func TestAppRankingsWritesExportFile(t *testing.T) {
	app, _, _ := newTestApp(t)
	writer := testutil.NewTempWriter(t, 14, testutil.Day(21))
	app.Exports = writer

	list, err := app.Rankings(stats.BucketForward, stats.Rebounds, true)
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	var stored []map[string]any
	testutil.ReadExport(t, writer.BasePath(), snapshots.KindRankings, "2025-01-21", &stored)
	if len(stored) != len(list) {
		t.Fatalf("expected %d stored entries, got %d", len(list), len(stored))
	}
}

func TestNewSimulatorAppliesConfiguredCeilings(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.cfg.Engine.StatCeilings = map[string]float64{"threes": 4}

	sim := app.NewSimulator(500, 3)
	if sim.Samples() != 500 {
		t.Fatalf("expected sample override, got %d", sim.Samples())
	}
	res, err := sim.Simulate(montecarlo.Input{Mean: 6, StdDev: 0, Stat: stats.Threes})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if res.Percentiles.P50 != 4 {
		t.Fatalf("expected p50 pinned to ceiling 4, got %v", res.Percentiles.P50)
	}
}

func TestSimulatorOptionsSkipsUnknownCeilingLabels(t *testing.T) {
	opts := simulatorOptions(config.EngineConfig{
		SimulationSamples: 100,
		StatCeilings:      map[string]float64{"threes": 4, "bogus": 2},
	}, nil, 0, 0)
	// samples, metrics, one ceiling
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}
}
