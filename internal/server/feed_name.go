package server

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/nba-props-engine/internal/providers"
)

// normalizeFeedName returns a lower-cased feed name, deriving from the instance when not configured.
// Used for breaker names, metrics and logs.
func normalizeFeedName(raw string, feed providers.AvailabilityFeed) string {
	if raw != "" {
		return strings.ToLower(raw)
	}
	if feed != nil {
		return strings.ToLower(fmt.Sprintf("%T", feed))
	}
	return "feed"
}
