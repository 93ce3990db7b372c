package testutil

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/snapshots"
)

// NewTempWriter returns an export writer rooted in a temp dir with a fixed clock.
func NewTempWriter(t *testing.T, retention int, now time.Time) *snapshots.Writer {
	t.Helper()
	return snapshots.NewWriter(t.TempDir(), retention, NowAt(now))
}

// ReadExport decodes the kind export for date under basePath into dest.
func ReadExport(t *testing.T, basePath string, kind snapshots.Kind, date string, dest any) {
	t.Helper()
	data, err := os.ReadFile(snapshots.ExportPath(basePath, kind, date))
	if err != nil {
		t.Fatalf("read %s export %s: %v", kind, date, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("decode %s export %s: %v", kind, date, err)
	}
}
