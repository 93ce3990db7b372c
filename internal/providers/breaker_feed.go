package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
)

const (
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = time.Minute
)

// breakerFeed stops calling a failing feed until the breaker timeout elapses.
type breakerFeed struct {
	inner AvailabilityFeed
	cb    *gobreaker.CircuitBreaker
	name  string
}

// NewBreakerFeed wraps inner with a circuit breaker that opens after consecutive failures.
// Unpublished reports do not count as failures.
func NewBreakerFeed(inner AvailabilityFeed, logger *slog.Logger, name string, failures uint32, timeout time.Duration) AvailabilityFeed {
	if failures == 0 {
		failures = defaultBreakerFailures
	}
	if timeout <= 0 {
		timeout = defaultBreakerTimeout
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrReportNotPublished)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logWithFeed(context.Background(), logger, slog.LevelWarn, name, "feed breaker state changed",
				"from", from.String(), "to", to.String())
		},
	})
	return &breakerFeed{inner: inner, cb: cb, name: name}
}

func (b *breakerFeed) FetchReport(ctx context.Context, at time.Time) ([]availability.RawRecord, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.FetchReport(ctx, at)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %v", ErrFeedUnavailable, b.name, err)
	}
	if err != nil {
		return nil, err
	}
	records, _ := out.([]availability.RawRecord)
	return records, nil
}
