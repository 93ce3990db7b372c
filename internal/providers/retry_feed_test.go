package providers

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/metrics"
	"github.com/preston-bernstein/nba-props-engine/internal/teststubs"
)

type flakeyFeed struct {
	failures int
	calls    int
	err      error
}

func (f *flakeyFeed) FetchReport(ctx context.Context, at time.Time) ([]availability.RawRecord, error) {
	_ = ctx
	_ = at
	f.calls++
	if f.calls <= f.failures {
		if f.err != nil {
			return nil, f.err
		}
		return nil, errors.New("boom")
	}
	return []availability.RawRecord{{"Player Name": "ok"}}, nil
}

func TestRetryingFeedRetriesAndSucceeds(t *testing.T) {
	ff := &flakeyFeed{failures: 2}
	rec := metrics.NewRecorder()
	rf := NewRetryingFeed(ff, slog.Default(), rec, "flakey", 3, time.Millisecond)

	records, err := rf.FetchReport(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("expected success, got error %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("unexpected records %+v", records)
	}
	if ff.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", ff.calls)
	}
	if rec.FeedCalls("flakey") != 3 || rec.FeedErrors("flakey") != 2 {
		t.Fatalf("unexpected feed metrics calls=%d errors=%d", rec.FeedCalls("flakey"), rec.FeedErrors("flakey"))
	}
}

func TestRetryingFeedStopsAfterMaxAttempts(t *testing.T) {
	ff := &flakeyFeed{failures: 5}
	rf := NewRetryingFeed(ff, nil, metrics.NewRecorder(), "flakey", 2, time.Millisecond)

	if _, err := rf.FetchReport(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error after retries")
	}
	if ff.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", ff.calls)
	}
}

func TestRetryingFeedDoesNotRetryUnpublished(t *testing.T) {
	ff := &flakeyFeed{failures: 5, err: ErrReportNotPublished}
	rf := NewRetryingFeed(ff, nil, nil, "flakey", 3, time.Millisecond)

	_, err := rf.FetchReport(context.Background(), time.Now())
	if !errors.Is(err, ErrReportNotPublished) {
		t.Fatalf("expected ErrReportNotPublished, got %v", err)
	}
	if ff.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", ff.calls)
	}
}

func TestRetryingFeedRespectsContextCancel(t *testing.T) {
	ff := &flakeyFeed{failures: 5}
	rf := NewRetryingFeed(ff, nil, nil, "flakey", 3, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := rf.FetchReport(ctx, time.Now()); err == nil {
		t.Fatal("expected context error")
	}
	if ff.calls > 1 {
		t.Fatalf("expected no retries after cancel, got %d calls", ff.calls)
	}
}

func TestRetryingFeedRecordsRateLimit(t *testing.T) {
	feed := &teststubs.StubFeed{Err: &RateLimitError{StatusCode: 429, RetryAfter: 2 * time.Second}}
	rec := metrics.NewRecorder()
	rf := NewRetryingFeed(feed, nil, rec, "limited", 1, time.Millisecond)

	if _, err := rf.FetchReport(context.Background(), time.Now()); err == nil {
		t.Fatal("expected rate limit error")
	}
	if rec.RateLimitHits("limited") != 1 || rec.LastRetryAfter("limited") != 2*time.Second {
		t.Fatalf("expected rate limit to be recorded")
	}
}

func TestRetryingFeedUsesCustomBackoff(t *testing.T) {
	ff := &flakeyFeed{failures: 1}
	rf := NewRetryingFeed(ff, nil, nil, "flakey", 2, time.Hour).(*retryingFeed)

	calls := 0
	rf.newBackOff = func() backoff.BackOff {
		calls++
		return &backoff.ZeroBackOff{}
	}
	if _, err := rf.FetchReport(context.Background(), time.Now()); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected custom backoff to be used once, got %d", calls)
	}
}
