package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/providers"
)

const defaultHour = 17

// Report is one published report in a fixture file.
type Report struct {
	Date    string                   `json:"date"`
	Hour    int                      `json:"hour"`
	Records []availability.RawRecord `json:"records"`
}

// Feed serves injury reports from memory, useful for local runs and tests.
type Feed struct {
	reports map[string][]availability.RawRecord
	loc     *time.Location
}

var _ providers.AvailabilityFeed = (*Feed)(nil)

// New returns a feed that publishes a deterministic sample report at 17:00 every day.
func New() *Feed {
	return &Feed{loc: time.UTC}
}

// NewFromReports returns a feed that serves exactly the given reports.
func NewFromReports(reports []Report, loc *time.Location) *Feed {
	if loc == nil {
		loc = time.UTC
	}
	f := &Feed{reports: make(map[string][]availability.RawRecord, len(reports)), loc: loc}
	for _, r := range reports {
		f.reports[key(r.Date, r.Hour)] = r.Records
	}
	return f
}

// Load reads a JSON array of reports from path.
func Load(path string, loc *time.Location) (*Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reports []Report
	if err := json.NewDecoder(f).Decode(&reports); err != nil {
		return nil, fmt.Errorf("fixture: decode %s: %w", path, err)
	}
	return NewFromReports(reports, loc), nil
}

// FetchReport returns the report for the release time or ErrReportNotPublished.
func (f *Feed) FetchReport(ctx context.Context, at time.Time) ([]availability.RawRecord, error) {
	_ = ctx
	local := at.In(f.loc)
	if f.reports == nil {
		if local.Hour() != defaultHour {
			return nil, providers.ErrReportNotPublished
		}
		return sampleReport(), nil
	}
	records, ok := f.reports[key(local.Format("2006-01-02"), local.Hour())]
	if !ok {
		return nil, providers.ErrReportNotPublished
	}
	return records, nil
}

func key(date string, hour int) string {
	return fmt.Sprintf("%sT%02d", date, hour)
}

func sampleReport() []availability.RawRecord {
	return []availability.RawRecord{
		{"Player Name": "Tatum, Jayson", "Team": "Boston Celtics", "Current Status": "Out", "Reason": "Injury/Illness - Right Achilles; Repair"},
		{"Player Name": "Doe, Jane", "Team": "Boston Celtics", "Current Status": "Questionable", "Reason": "Rest"},
		{"Player Name": "Smith, John", "Team": "Los Angeles Lakers", "Current Status": "Available", "Reason": ""},
	}
}
