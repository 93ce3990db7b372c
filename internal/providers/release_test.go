package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/fallback"
	"github.com/preston-bernstein/nba-props-engine/internal/teststubs"
)

var gameDay = time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)

func TestReleaseScheduleFallsBackToEarlierRelease(t *testing.T) {
	feed := &teststubs.StubFeed{
		Err: ErrReportNotPublished,
		ByHour: map[int]teststubs.StubReport{
			17: {Err: ErrReportNotPublished},
			13: {Records: nil},
			11: {Records: []availability.RawRecord{{"Player Name": "Jalen Brunson", "Current Status": "Out"}}},
		},
	}
	schedule := NewReleaseSchedule(feed, nil, time.UTC, nil)

	report, err := schedule.Fetch(context.Background(), gameDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Records) != 1 || report.ReleasedAt.Hour() != 11 {
		t.Fatalf("expected 11:00 report, got %+v", report)
	}
	wantOutcomes := []fallback.Outcome{fallback.Skip, fallback.Skip, fallback.Success}
	if len(report.Attempts) != len(wantOutcomes) {
		t.Fatalf("expected %d attempts, got %d", len(wantOutcomes), len(report.Attempts))
	}
	for i, want := range wantOutcomes {
		if report.Attempts[i].Outcome != want {
			t.Fatalf("attempt %d: expected %s, got %s", i, want, report.Attempts[i].Outcome)
		}
	}
	if feed.Calls.Load() != 3 {
		t.Fatalf("expected 08:00 release to be left untried, got %d calls", feed.Calls.Load())
	}
}

func TestReleaseScheduleReportsUnavailable(t *testing.T) {
	boom := errors.New("connection refused")
	feed := &teststubs.StubFeed{Err: boom}
	schedule := NewReleaseSchedule(feed, []int{17, 13}, time.UTC, nil)

	report, err := schedule.Fetch(context.Background(), gameDay)
	if !errors.Is(err, ErrFeedUnavailable) {
		t.Fatalf("expected ErrFeedUnavailable, got %v", err)
	}
	if len(report.Attempts) != 2 || report.Attempts[1].Outcome != fallback.Failed {
		t.Fatalf("unexpected attempts %+v", report.Attempts)
	}
}

func TestReleaseScheduleUsesLocation(t *testing.T) {
	loc := time.FixedZone("ET", -5*3600)
	feed := &teststubs.StubFeed{Records: []availability.RawRecord{{"Player Name": "x"}}}
	schedule := NewReleaseSchedule(feed, nil, loc, nil)

	if _, err := schedule.Fetch(context.Background(), gameDay); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	asked := feed.Asked()
	if len(asked) != 1 {
		t.Fatalf("expected single request, got %d", len(asked))
	}
	want := time.Date(2025, time.February, 3, 17, 0, 0, 0, loc)
	if !asked[0].Equal(want) {
		t.Fatalf("expected %s, got %s", want, asked[0])
	}
}

func TestReleaseScheduleNilFeed(t *testing.T) {
	var schedule *ReleaseSchedule
	if _, err := schedule.Fetch(context.Background(), gameDay); !errors.Is(err, ErrFeedUnavailable) {
		t.Fatalf("expected ErrFeedUnavailable, got %v", err)
	}
}

func TestFeedFuncAdapter(t *testing.T) {
	var f AvailabilityFeed = FeedFunc(func(ctx context.Context, at time.Time) ([]availability.RawRecord, error) {
		return []availability.RawRecord{{"Team": "NYK"}}, nil
	})
	got, err := f.FetchReport(context.Background(), gameDay)
	if err != nil || len(got) != 1 {
		t.Fatalf("unexpected adapter result %+v err=%v", got, err)
	}
}
