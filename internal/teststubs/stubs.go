package teststubs

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/snapshots"
)

// StubReport is a canned response for one release hour.
type StubReport struct {
	Records []availability.RawRecord
	Err     error
}

// StubFeed is a test double for providers.AvailabilityFeed.
// ByHour responses win over Records/Err when the requested hour is present.
type StubFeed struct {
	Records []availability.RawRecord
	Err     error
	ByHour  map[int]StubReport
	Calls   atomic.Int32
	Notify  chan struct{}

	mu    sync.Mutex
	asked []time.Time
}

// FetchReport returns the configured report while tracking calls.
func (s *StubFeed) FetchReport(ctx context.Context, at time.Time) ([]availability.RawRecord, error) {
	_ = ctx
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	s.Calls.Add(1)
	s.mu.Lock()
	s.asked = append(s.asked, at)
	s.mu.Unlock()

	if r, ok := s.ByHour[at.Hour()]; ok {
		return r.Records, r.Err
	}
	return s.Records, s.Err
}

// Asked returns the report times requested so far.
func (s *StubFeed) Asked() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Time, len(s.asked))
	copy(out, s.asked)
	return out
}

// StubExportWriter is a test double for the report export writer.
type StubExportWriter struct {
	Written map[string]any
	Err     error

	mu sync.Mutex
}

// Write records the payload under "kind/date" for verification in tests.
func (w *StubExportWriter) Write(kind snapshots.Kind, date string, payload any) error {
	if w.Err != nil {
		return w.Err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Written == nil {
		w.Written = make(map[string]any)
	}
	w.Written[string(kind)+"/"+date] = payload
	return nil
}

// Payload returns the recorded payload for kind and date.
func (w *StubExportWriter) Payload(kind snapshots.Kind, date string) (any, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.Written[string(kind)+"/"+date]
	return v, ok
}
