package providers

import (
	"context"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
)

// AvailabilityFeed fetches the raw injury report published at a release time.
// Implementations return ErrReportNotPublished when no report exists for that time.
type AvailabilityFeed interface {
	FetchReport(ctx context.Context, at time.Time) ([]availability.RawRecord, error)
}

// FeedFunc adapts a function to AvailabilityFeed.
type FeedFunc func(ctx context.Context, at time.Time) ([]availability.RawRecord, error)

// FetchReport calls f.
func (f FeedFunc) FetchReport(ctx context.Context, at time.Time) ([]availability.RawRecord, error) {
	return f(ctx, at)
}
