package injuryreport

import "time"

const (
	feedName           = "injuryreport"
	defaultBaseURL     = "https://injury-report.example.com/v1"
	defaultHTTPTimeout = 10 * time.Second
	defaultTimezone    = "America/New_York"
	maxErrorBody       = 512
)
