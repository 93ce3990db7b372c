package providers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/metrics"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
)

// retryingFeed wraps an AvailabilityFeed with bounded retry/backoff behavior.
type retryingFeed struct {
	inner       AvailabilityFeed
	logger      *slog.Logger
	metrics     *metrics.Recorder
	name        string
	maxAttempts int
	newBackOff  func() backoff.BackOff
}

// NewRetryingFeed wraps the given feed with retries. If maxAttempts/interval are <= 0, defaults are used.
// ErrReportNotPublished is permanent and never retried.
func NewRetryingFeed(inner AvailabilityFeed, logger *slog.Logger, rec *metrics.Recorder, name string, maxAttempts int, interval time.Duration) AvailabilityFeed {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if interval <= 0 {
		interval = defaultBackoff
	}
	return &retryingFeed{
		inner:       inner,
		logger:      logger,
		metrics:     rec,
		name:        name,
		maxAttempts: maxAttempts,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = interval
			b.RandomizationFactor = 0
			b.Multiplier = 2
			b.MaxElapsedTime = 0
			return b
		},
	}
}

func (r *retryingFeed) FetchReport(ctx context.Context, at time.Time) ([]availability.RawRecord, error) {
	var (
		records []availability.RawRecord
		attempt int
	)
	op := func() error {
		attempt++
		start := time.Now()
		out, err := r.inner.FetchReport(ctx, at)
		r.metrics.RecordFeedAttempt(r.name, time.Since(start), err)
		if rl, ok := AsRateLimitError(err); ok {
			r.metrics.RecordRateLimit(r.name, rl.RetryAfter)
		}
		switch {
		case err == nil:
			records = out
			return nil
		case errors.Is(err, ErrReportNotPublished):
			return backoff.Permanent(err)
		default:
			return err
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.maxAttempts-1)), ctx)
	err := backoff.RetryNotify(op, policy, func(err error, delay time.Duration) {
		logWithFeed(ctx, r.logger, slog.LevelWarn, r.name, "feed fetch retry",
			"attempt", attempt, "max_attempts", r.maxAttempts, "delay", delay, "err", err)
	})
	if err != nil {
		if !errors.Is(err, ErrReportNotPublished) {
			logWithFeed(ctx, r.logger, slog.LevelWarn, r.name, "feed fetch failed", "attempts", attempt, "err", err)
		}
		return nil, err
	}
	return records, nil
}
