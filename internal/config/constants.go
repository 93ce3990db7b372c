package config

import "time"

const (
	envConfigPath   = "PROPS_CONFIG"
	envPrefix       = "PROPS_"
	envLogLevel     = "LOG_LEVEL"
	envLogFormat    = "LOG_FORMAT"
	envMetricsPort  = "METRICS_PORT"
	envMetricsOn    = "METRICS_ENABLED"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"
	envFeedAPIKey   = "INJURY_FEED_API_KEY"

	defaultServiceName = "nba-props-engine"
	defaultTimezone    = "America/New_York"
	defaultMetricsPort = "9090"

	defaultFeedBaseURL    = "https://injury-report.example.com/api/v1"
	defaultFeedTimeout    = 10 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBackoff   = 200 * time.Millisecond
	defaultFeedInterval   = time.Second
	defaultBreakerFails   = 5
	defaultBreakerTimeout = time.Minute

	// Usage profiles are expensive to rebuild; the feed refreshes a few times per day.
	defaultUsageTTL = 6 * time.Hour
	defaultFeedTTL  = time.Hour

	defaultStoreDriver  = "memory"
	defaultSQLiteDSN    = "file:props.db?_pragma=busy_timeout(5000)"
	defaultMaxOpenConns = 16

	defaultScanWidth   = 8
	defaultScanMinEdge = 5.0

	defaultSnapshotFolder    = "data/exports"
	defaultSnapshotRetention = 14
)

// defaultReleaseHours are the local report times tried in order, latest first.
var defaultReleaseHours = []int{17, 13, 11, 8}
