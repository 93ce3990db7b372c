package providers

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrFeedUnavailable means no usable report could be obtained.
	ErrFeedUnavailable = errors.New("availability feed unavailable")
	// ErrReportNotPublished means the feed has no report for the requested release time.
	ErrReportNotPublished = errors.New("availability report not published")
)

// RateLimitError captures rate limit responses from upstream feeds.
type RateLimitError struct {
	Feed       string
	StatusCode int
	RetryAfter time.Duration
	Remaining  string
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "feed rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}
