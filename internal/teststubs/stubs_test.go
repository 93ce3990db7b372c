package teststubs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/snapshots"
)

func TestStubFeedTracksCalls(t *testing.T) {
	err := errors.New("boom")
	f := &StubFeed{Err: err}
	if _, got := f.FetchReport(context.Background(), time.Now()); !errors.Is(got, err) {
		t.Fatalf("expected error passthrough, got %v", got)
	}
	if f.Calls.Load() != 1 {
		t.Fatalf("expected call count 1, got %d", f.Calls.Load())
	}
}

func TestStubFeedByHour(t *testing.T) {
	f := &StubFeed{
		Records: []availability.RawRecord{{"Player Name": "Default"}},
		ByHour: map[int]StubReport{
			13: {Records: []availability.RawRecord{{"Player Name": "One PM"}}},
		},
	}
	at := time.Date(2025, 1, 2, 13, 0, 0, 0, time.UTC)
	got, _ := f.FetchReport(context.Background(), at)
	if len(got) != 1 || got[0]["Player Name"] != "One PM" {
		t.Fatalf("expected hour override, got %+v", got)
	}
	got, _ = f.FetchReport(context.Background(), at.Add(time.Hour))
	if got[0]["Player Name"] != "Default" {
		t.Fatalf("expected default records, got %+v", got)
	}
	if asked := f.Asked(); len(asked) != 2 || !asked[0].Equal(at) {
		t.Fatalf("unexpected asked times %+v", asked)
	}
}

func TestStubFeedNotifyClosesOnce(t *testing.T) {
	ch := make(chan struct{})
	f := &StubFeed{Notify: ch}
	_, _ = f.FetchReport(context.Background(), time.Now())
	_, _ = f.FetchReport(context.Background(), time.Now())
	select {
	case <-ch:
	default:
		t.Fatalf("expected notify channel to be closed")
	}
}

func TestStubExportWriter(t *testing.T) {
	w := &StubExportWriter{}
	if err := w.Write(snapshots.KindReport, "2024-01-01", map[string]int{"n": 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := w.Payload(snapshots.KindReport, "2024-01-01"); !ok {
		t.Fatalf("expected payload to be recorded")
	}
	w.Err = errors.New("fail")
	if err := w.Write(snapshots.KindReport, "2024-01-02", nil); err == nil {
		t.Fatalf("expected configured error")
	}
}
