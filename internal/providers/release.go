package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/fallback"
	"github.com/preston-bernstein/nba-props-engine/internal/timeutil"
)

// DefaultReleaseHours are the report publication hours tried newest first.
var DefaultReleaseHours = []int{17, 13, 11, 8}

// Report is the outcome of walking the release schedule for one day.
type Report struct {
	Records    []availability.RawRecord
	ReleasedAt time.Time
	Attempts   []fallback.Attempt[[]availability.RawRecord]
}

// ReleaseSchedule looks up the latest published report for a day.
type ReleaseSchedule struct {
	feed   AvailabilityFeed
	hours  []int
	loc    *time.Location
	logger *slog.Logger
}

// NewReleaseSchedule builds a schedule over feed. Empty hours use DefaultReleaseHours; nil loc is UTC.
func NewReleaseSchedule(feed AvailabilityFeed, hours []int, loc *time.Location, logger *slog.Logger) *ReleaseSchedule {
	if len(hours) == 0 {
		hours = DefaultReleaseHours
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReleaseSchedule{feed: feed, hours: append([]int(nil), hours...), loc: loc, logger: logger}
}

// Strategies returns one strategy per release time for day, in schedule order.
// A release with no rows or no published report is a skip; transport errors are failures.
func (r *ReleaseSchedule) Strategies(day time.Time) []fallback.Strategy[[]availability.RawRecord] {
	chain := make([]fallback.Strategy[[]availability.RawRecord], 0, len(r.hours))
	for _, h := range r.hours {
		at := timeutil.AtHour(day, h, r.loc)
		chain = append(chain, fallback.Strategy[[]availability.RawRecord]{
			Name: at.Format("15:04"),
			Try: func(ctx context.Context) fallback.Attempt[[]availability.RawRecord] {
				records, err := r.feed.FetchReport(ctx, at)
				switch {
				case errors.Is(err, ErrReportNotPublished):
					return fallback.Skipped[[]availability.RawRecord]()
				case err != nil:
					return fallback.Fail[[]availability.RawRecord](err)
				case len(records) == 0:
					return fallback.Skipped[[]availability.RawRecord]()
				default:
					return fallback.Ok(records)
				}
			},
		})
	}
	return chain
}

// Fetch returns the first non-empty report for day. Every attempt is returned in the report,
// and when none succeeds the error wraps ErrFeedUnavailable.
func (r *ReleaseSchedule) Fetch(ctx context.Context, day time.Time) (Report, error) {
	if r == nil || r.feed == nil {
		return Report{}, ErrFeedUnavailable
	}
	chain := r.Strategies(day)
	won, ok, attempts := fallback.Run(ctx, chain)
	report := Report{Attempts: attempts}
	if ok {
		report.Records = won.Value
		for i, s := range chain {
			if s.Name == won.Strategy {
				report.ReleasedAt = timeutil.AtHour(day, r.hours[i], r.loc)
				break
			}
		}
		logWithFeed(ctx, r.logger, slog.LevelDebug, "release-schedule", "availability report resolved",
			"release", won.Strategy, "records", len(won.Value))
		return report, nil
	}

	var lastErr error
	for _, a := range attempts {
		if a.Err != nil {
			lastErr = a.Err
		}
	}
	logWithFeed(ctx, r.logger, slog.LevelInfo, "release-schedule", "no availability report",
		"date", timeutil.FormatDate(day), "attempts", len(attempts), "err", lastErr)
	if lastErr != nil {
		return report, fmt.Errorf("%w: %s: %v", ErrFeedUnavailable, timeutil.FormatDate(day), lastErr)
	}
	return report, fmt.Errorf("%w: %s: no report published", ErrFeedUnavailable, timeutil.FormatDate(day))
}
