package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
)

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New)
//  2. YAML file when PROPS_CONFIG is set
//  3. env vars prefixed PROPS_, with "__" separating sections (PROPS_SCAN__WIDTH)
//  4. LOG_*, METRICS_* and OTEL_* conventional variables
func Load() (Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(envConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("config env: %w", err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("config decode: %w", err)
	}

	cfg.Log.Level = envOrDefault(envLogLevel, cfg.Log.Level)
	cfg.Log.Format = envOrDefault(envLogFormat, cfg.Log.Format)
	cfg.Feed.APIKey = envOrDefault(envFeedAPIKey, cfg.Feed.APIKey)
	cfg.Metrics = applyMetricsEnv(cfg.Metrics)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Engine.MinMinutes < 0 {
		errs = append(errs, errors.New("engine.min_minutes must not be negative"))
	}
	if c.Engine.Lookback <= 0 {
		errs = append(errs, errors.New("engine.lookback must be positive"))
	}
	if c.Engine.SimulationSamples <= 0 {
		errs = append(errs, errors.New("engine.simulation_samples must be positive"))
	}
	if c.Scan.Width <= 0 {
		errs = append(errs, errors.New("scan.width must be positive"))
	}
	if c.Store.MaxOpenConns > 0 && c.Scan.Width >= c.Store.MaxOpenConns {
		errs = append(errs, fmt.Errorf("scan.width (%d) must stay below store.max_open_conns (%d)", c.Scan.Width, c.Store.MaxOpenConns))
	}
	switch c.Store.Driver {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("store.driver %q not supported", c.Store.Driver))
	}
	for label, ceiling := range c.Engine.StatCeilings {
		if _, err := stats.Parse(label); err != nil {
			errs = append(errs, fmt.Errorf("engine.stat_ceilings: %w", err))
		} else if ceiling <= 0 {
			errs = append(errs, fmt.Errorf("engine.stat_ceilings.%s must be positive", label))
		}
	}
	for _, h := range c.Feed.ReleaseHours {
		if h < 0 || h > 23 {
			errs = append(errs, fmt.Errorf("feed.release_hours contains invalid hour %d", h))
		}
	}
	return errors.Join(errs...)
}
