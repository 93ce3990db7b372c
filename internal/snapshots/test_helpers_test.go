package snapshots

import (
	"os"
	"testing"
	"time"
)

var fixedNow = time.Date(2025, time.January, 21, 12, 0, 0, 0, time.UTC)

type edgeExport struct {
	Date  string   `json:"date"`
	Edges []string `json:"edges"`
}

func newTestWriter(t *testing.T, retention int) *Writer {
	t.Helper()
	return NewWriter(t.TempDir(), retention, func() time.Time { return fixedNow })
}

func writeExport(t *testing.T, w *Writer, kind Kind, date string) {
	t.Helper()
	if err := w.Write(kind, date, edgeExport{Date: date, Edges: []string{"brunson-points"}}); err != nil {
		t.Fatalf("failed to write %s export %s: %v", kind, date, err)
	}
}

func requireExportExists(t *testing.T, w *Writer, kind Kind, date string, want bool) {
	t.Helper()
	_, err := os.Stat(ExportPath(w.BasePath(), kind, date))
	if want && err != nil {
		t.Fatalf("expected %s export for %s: %v", kind, date, err)
	}
	if !want && err == nil {
		t.Fatalf("expected %s export for %s to be absent", kind, date)
	}
}

func assertDatesEqual(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("dates length mismatch: got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("dates mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}
