package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
)

// rateLimitedFeed wraps an AvailabilityFeed and enforces a minimum interval between calls.
type rateLimitedFeed struct {
	next     AvailabilityFeed
	interval time.Duration
	ticker   *time.Ticker
	logger   *slog.Logger
}

// NewRateLimitedFeed returns a feed that limits calls to the given interval.
// Calls block until the interval elapses to avoid exceeding upstream quotas.
func NewRateLimitedFeed(next AvailabilityFeed, interval time.Duration, logger *slog.Logger) AvailabilityFeed {
	if interval <= 0 {
		interval = time.Second
	}
	return &rateLimitedFeed{
		next:     next,
		interval: interval,
		ticker:   time.NewTicker(interval),
		logger:   logger,
	}
}

func (p *rateLimitedFeed) FetchReport(ctx context.Context, at time.Time) ([]availability.RawRecord, error) {
	if p.next == nil {
		logWithFeed(ctx, p.logger, slog.LevelWarn, "rate-limited", "feed unavailable")
		return nil, ErrFeedUnavailable
	}
	select {
	case <-ctx.Done():
		logWithFeed(ctx, p.logger, slog.LevelWarn, "rate-limited", "rate-limited fetch canceled")
		return nil, ctx.Err()
	case <-p.ticker.C:
	}
	logWithFeed(ctx, p.logger, slog.LevelDebug, "rate-limited", "rate-limited feed fetch", slog.Time("at", at))
	return p.next.FetchReport(ctx, at)
}

// Close stops the limiter's ticker.
func (p *rateLimitedFeed) Close() {
	p.ticker.Stop()
}
