package snapshots

import (
	"errors"
	"os"
	"testing"
)

func TestFSStoreLoadsWrittenExports(t *testing.T) {
	w := newTestWriter(t, 10)
	writeExport(t, w, KindEdges, "2025-01-19")
	writeExport(t, w, KindEdges, "2025-01-20")

	store := NewFSStore(w.BasePath())
	var got edgeExport
	if err := store.Load(KindEdges, "2025-01-19", &got); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Date != "2025-01-19" || len(got.Edges) != 1 {
		t.Fatalf("unexpected export %+v", got)
	}

	var latest edgeExport
	date, err := store.Latest(KindEdges, &latest)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if date != "2025-01-20" || latest.Date != date {
		t.Fatalf("expected newest export, got %s %+v", date, latest)
	}
}

func TestFSStoreMissingExports(t *testing.T) {
	w := newTestWriter(t, 10)
	writeExport(t, w, KindEdges, "2025-01-20")
	store := NewFSStore(w.BasePath())

	var payload edgeExport
	if _, err := store.Latest(KindReport, &payload); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist for empty kind, got %v", err)
	}
	if err := store.Load(KindEdges, "", &payload); err == nil {
		t.Fatalf("expected error for empty date")
	}
	var nilStore *FSStore
	if err := nilStore.Load(KindEdges, "2025-01-20", &payload); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := NewFSStore(t.TempDir()).Dates(KindEdges); err == nil {
		t.Fatalf("expected error without manifest")
	}
}
