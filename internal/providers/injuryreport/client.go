// Package injuryreport fetches published league injury reports over HTTP.
package injuryreport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/providers"
)

// Config controls how the client reaches the report service.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timezone   string
}

// StatusError is returned for unexpected upstream status codes.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("injuryreport: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client fetches report rows for a release time.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpDoer
	now        func() time.Time
	loc        *time.Location
}

var _ providers.AvailabilityFeed = (*Client)(nil)

// NewClient constructs a report client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		apiKey:     cfg.APIKey,
		httpClient: resolveHTTPClient(cfg.HTTPClient),
		now:        time.Now,
		loc:        resolveLocation(cfg.Timezone),
	}
}

// FetchReport retrieves the report released at the given time, expressed in the
// league timezone. 403 and 404 mean the report is not out yet.
func (c *Client) FetchReport(ctx context.Context, at time.Time) ([]availability.RawRecord, error) {
	req, err := c.buildRequest(ctx, at)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", providers.ErrReportNotPublished, req.URL.RawQuery)
	case http.StatusTooManyRequests:
		return nil, &providers.RateLimitError{
			Feed:       feedName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
			Remaining:  resp.Header.Get("X-RateLimit-Remaining"),
			Message:    "injuryreport: rate limited",
		}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload reportResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("injuryreport: decode: %w", err)
	}
	return payload.Data, nil
}

func (c *Client) buildRequest(ctx context.Context, at time.Time) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reports", nil)
	if err != nil {
		return nil, err
	}

	local := at.In(c.loc)
	q := req.URL.Query()
	q.Set("date", local.Format("2006-01-02"))
	q.Set("time", local.Format("15:04"))
	req.URL.RawQuery = q.Encode()

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}
