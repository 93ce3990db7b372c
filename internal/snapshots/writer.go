// Package snapshots writes dated JSON exports of engine output (edge scans,
// accuracy reports, matchup rankings, grading runs) with a manifest and a
// rolling retention window.
package snapshots

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/timeutil"
)

// Kind names an export family. Each kind lives in its own folder.
type Kind string

const (
	KindEdges    Kind = "edges"
	KindReport   Kind = "report"
	KindRankings Kind = "rankings"
	KindGrades   Kind = "grades"
)

// DefaultRetentionDays applies when a non-positive retention is configured.
const DefaultRetentionDays = 14

// ErrNotConfigured is returned by a nil writer or store.
var ErrNotConfigured = errors.New("snapshot writer not configured")

// Valid reports whether k is a known export kind.
func (k Kind) Valid() bool {
	switch k {
	case KindEdges, KindReport, KindRankings, KindGrades:
		return true
	default:
		return false
	}
}

// Writer persists exports and the manifest, pruning dates older than the retention window.
type Writer struct {
	basePath      string
	retentionDays int
	now           func() time.Time
}

// NewWriter constructs a writer rooted at basePath. A nil now uses time.Now.
func NewWriter(basePath string, retentionDays int, now func() time.Time) *Writer {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	if now == nil {
		now = time.Now
	}
	return &Writer{
		basePath:      basePath,
		retentionDays: retentionDays,
		now:           now,
	}
}

// BasePath exposes the writer root path.
func (w *Writer) BasePath() string {
	if w == nil {
		return ""
	}
	return w.basePath
}

// Write stores payload as the kind export for date (YYYY-MM-DD). Rewriting identical
// content only refreshes the manifest.
func (w *Writer) Write(kind Kind, date string, payload any) error {
	if w == nil {
		return ErrNotConfigured
	}
	if !kind.Valid() {
		return fmt.Errorf("unknown export kind %q", kind)
	}
	if _, err := timeutil.ParseDate(date); err != nil {
		return fmt.Errorf("export date %q: %w", date, err)
	}

	target := ExportPath(w.basePath, kind, date)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s export: %w", kind, err)
	}

	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
		return w.updateManifest(kind, date)
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		return err
	}
	return w.updateManifest(kind, date)
}

func (w *Writer) updateManifest(kind Kind, date string) error {
	m, _ := readManifest(filepath.Join(w.basePath, manifestName), w.retentionDays)

	dates, err := w.listDates(kind)
	if err != nil {
		return err
	}
	if !containsDate(dates, date) {
		dates = append(dates, date)
	}

	if m.Kinds == nil {
		m.Kinds = map[Kind]KindMeta{}
	}
	m.Kinds[kind] = KindMeta{
		Dates:         w.prune(kind, dates),
		LastRefreshed: w.now().UTC(),
	}
	m.RetentionDays = w.retentionDays
	return writeManifest(w.basePath, m, w.now())
}

func containsDate(dates []string, date string) bool {
	for _, d := range dates {
		if d == date {
			return true
		}
	}
	return false
}

func (w *Writer) listDates(kind Kind) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(w.basePath, string(kind)))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		dates = append(dates, name[:len(name)-len(".json")])
	}
	sort.Strings(dates)
	return dates, nil
}

// prune removes exports dated before the retention cutoff and returns the rest sorted.
// Names that are not dates are kept.
func (w *Writer) prune(kind Kind, dates []string) []string {
	cutoff := timeutil.DateOnly(w.now().UTC()).AddDate(0, 0, -w.retentionDays)
	keep := []string{}
	for _, d := range dates {
		parsed, err := timeutil.ParseDate(d)
		if err == nil && parsed.Before(cutoff) {
			_ = os.Remove(ExportPath(w.basePath, kind, d))
			continue
		}
		keep = append(keep, d)
	}
	sort.Strings(keep)
	return keep
}
