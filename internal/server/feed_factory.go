package server

import (
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/nba-props-engine/internal/config"
	"github.com/preston-bernstein/nba-props-engine/internal/metrics"
	"github.com/preston-bernstein/nba-props-engine/internal/providers"
	"github.com/preston-bernstein/nba-props-engine/internal/providers/fixture"
	"github.com/preston-bernstein/nba-props-engine/internal/providers/injuryreport"
	"github.com/preston-bernstein/nba-props-engine/internal/timeutil"
)

const feedNone = "none"

// feedChain is the wrapped availability feed plus the hook that releases its limiter.
type feedChain struct {
	feed  providers.AvailabilityFeed
	close func()
}

// feedFactory assembles the feed with shared wrappers: rate limit, then retry, then breaker.
type feedFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newFeedFactory(logger *slog.Logger, metrics *metrics.Recorder) feedFactory {
	return feedFactory{logger: logger, metrics: metrics}
}

// build returns an empty chain when the feed is disabled, leaving injury impact to inference.
func (f feedFactory) build(cfg config.FeedConfig, timezone string) feedChain {
	base := selectFeed(cfg, timezone, f.logger)
	if base == nil {
		return feedChain{close: func() {}}
	}
	name := normalizeFeedName(cfg.Provider, base)
	limited := providers.NewRateLimitedFeed(base, cfg.MinInterval, f.logger)
	retried := providers.NewRetryingFeed(limited, f.logger, f.metrics, name, cfg.RetryAttempts, cfg.RetryBackoff)
	breaker := providers.NewBreakerFeed(retried, f.logger, name, uint32(max(cfg.BreakerFailures, 0)), cfg.BreakerTimeout)

	closeFn := func() {}
	if c, ok := limited.(interface{ Close() }); ok {
		closeFn = c.Close
	}
	return feedChain{feed: breaker, close: closeFn}
}

func selectFeed(cfg config.FeedConfig, timezone string, logger *slog.Logger) providers.AvailabilityFeed {
	switch cfg.Provider {
	case feedNone:
		return nil
	case "fixture", "":
		if cfg.FixturePath == "" {
			return fixture.New()
		}
		feed, err := fixture.Load(cfg.FixturePath, timeutil.ResolveLocation(timezone))
		if err != nil {
			if logger != nil {
				logger.Warn("fixture feed unreadable, using sample report", slog.String("path", cfg.FixturePath), slog.Any("err", err))
			}
			return fixture.New()
		}
		return feed
	case "injuryreport":
		return injuryreport.NewClient(injuryreport.Config{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			HTTPClient: &http.Client{Timeout: cfg.Timeout},
			Timezone:   timezone,
		})
	default:
		if logger != nil {
			logger.Warn("unknown feed provider, falling back to fixture", slog.String("provider", cfg.Provider))
		}
		return fixture.New()
	}
}
