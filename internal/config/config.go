package config

import "time"

// Config holds runtime configuration for the engine and CLI.
type Config struct {
	Log       LogConfig      `koanf:"log"`
	Engine    EngineConfig   `koanf:"engine"`
	Feed      FeedConfig     `koanf:"feed"`
	Cache     CacheConfig    `koanf:"cache"`
	Store     StoreConfig    `koanf:"store"`
	Scan      ScanConfig     `koanf:"scan"`
	Metrics   MetricsConfig  `koanf:"metrics"`
	Snapshots SnapshotConfig `koanf:"snapshots"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// EngineConfig carries projection tuning that operators may override.
type EngineConfig struct {
	MinMinutes        float64 `koanf:"min_minutes"`
	Lookback          int     `koanf:"lookback"`
	DefenseMinMinutes float64 `koanf:"defense_min_minutes"`
	SimulationSamples int     `koanf:"simulation_samples"`
	SimulationSeed    uint64  `koanf:"simulation_seed"`
	Timezone          string  `koanf:"timezone"`

	// StatCeilings caps simulated draws per stat label, e.g. {threes: 12}.
	StatCeilings map[string]float64 `koanf:"stat_ceilings"`
}

// CacheConfig sets read-through cache lifetimes.
type CacheConfig struct {
	UsageTTL time.Duration `koanf:"usage_ttl"`
	FeedTTL  time.Duration `koanf:"feed_ttl"`
}

// ScanConfig bounds the edge-scan fan-out.
type ScanConfig struct {
	Width   int     `koanf:"width"`
	MinEdge float64 `koanf:"min_edge"`
}

// New returns a Config populated with defaults.
func New() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Engine: EngineConfig{
			MinMinutes:        10,
			Lookback:          82,
			DefenseMinMinutes: 15,
			SimulationSamples: 10000,
			Timezone:          defaultTimezone,
		},
		Feed: defaultFeed(),
		Cache: CacheConfig{
			UsageTTL: defaultUsageTTL,
			FeedTTL:  defaultFeedTTL,
		},
		Store: StoreConfig{
			Driver:       defaultStoreDriver,
			DSN:          defaultSQLiteDSN,
			MaxOpenConns: defaultMaxOpenConns,
		},
		Scan: ScanConfig{
			Width:   defaultScanWidth,
			MinEdge: defaultScanMinEdge,
		},
		Metrics: MetricsConfig{
			Enabled:      false,
			Port:         defaultMetricsPort,
			ServiceName:  defaultServiceName,
			OtlpInsecure: true,
		},
		Snapshots: SnapshotConfig{
			Folder:        defaultSnapshotFolder,
			RetentionDays: defaultSnapshotRetention,
		},
	}
}
