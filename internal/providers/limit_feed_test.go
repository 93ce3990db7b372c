package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/teststubs"
)

func TestRateLimitedFeedBlocksUntilTick(t *testing.T) {
	inner := &teststubs.StubFeed{}
	rl := NewRateLimitedFeed(inner, 5*time.Millisecond, nil)

	start := time.Now()
	if _, err := rl.FetchReport(context.Background(), start); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Fatalf("expected call to wait for ticker, elapsed %s", elapsed)
	}
	if inner.Calls.Load() != 1 {
		t.Fatalf("expected inner feed called once, got %d", inner.Calls.Load())
	}
}

func TestRateLimitedFeedRespectsCanceledContext(t *testing.T) {
	inner := &teststubs.StubFeed{}
	rl := NewRateLimitedFeed(inner, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := rl.FetchReport(ctx, time.Now()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled error, got %v", err)
	}
	if inner.Calls.Load() != 0 {
		t.Fatalf("expected inner feed not called on canceled context")
	}
}

func TestRateLimitedFeedHandlesNilInner(t *testing.T) {
	rl := NewRateLimitedFeed(nil, time.Millisecond, nil)
	if _, err := rl.FetchReport(context.Background(), time.Now()); !errors.Is(err, ErrFeedUnavailable) {
		t.Fatalf("expected ErrFeedUnavailable, got %v", err)
	}
}

func TestRateLimitedFeedClose(t *testing.T) {
	rl := NewRateLimitedFeed(&teststubs.StubFeed{}, time.Millisecond, nil)
	closer, ok := rl.(interface{ Close() })
	if !ok {
		t.Fatalf("expected rate-limited feed to expose Close")
	}
	closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := rl.FetchReport(ctx, time.Now()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected stopped ticker to block until deadline, got %v", err)
	}
}
