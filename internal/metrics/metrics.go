package metrics

import (
	"sync"
	"time"
)

type feedStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about feed calls and engine work.
// When built by Setup it also forwards to OpenTelemetry instruments.
type Recorder struct {
	mu       sync.Mutex
	feeds    map[string]*feedStats
	counters map[string]int
	otel     *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		feeds:    make(map[string]*feedStats),
		counters: make(map[string]int),
		otel:     otel,
	}
}

// RecordFeedAttempt increments counters for a feed call and stores the last observed latency.
func (r *Recorder) RecordFeedAttempt(feed string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureFeed(feed)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordFeedAttempt(feed, duration, err)
	}
}

// RecordRateLimit tracks that a feed response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(feed string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureFeed(feed)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRateLimit(feed, retryAfter)
	}
}

// RecordCacheLookup counts a read-through cache hit or miss.
func (r *Recorder) RecordCacheLookup(cache string, hit bool) {
	if r == nil {
		return
	}
	outcome := OutcomeMiss
	if hit {
		outcome = OutcomeHit
	}
	r.incr(counterKey("cache", cache, outcome))
	if r.otel != nil {
		r.otel.recordCache(cache, outcome)
	}
}

// RecordProjection counts a projection attempt by stat and outcome.
func (r *Recorder) RecordProjection(stat, outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.incr(counterKey("projection", stat, outcome))
	if r.otel != nil {
		r.otel.recordProjection(stat, outcome, duration)
	}
}

// RecordSimulation counts a Monte Carlo run.
func (r *Recorder) RecordSimulation(samples int, duration time.Duration) {
	if r == nil {
		return
	}
	r.incr(counterKey("simulation", "", ""))
	if r.otel != nil {
		r.otel.recordSimulation(samples, duration)
	}
}

// RecordGrade counts an appended (or skipped) graded outcome.
func (r *Recorder) RecordGrade(result string) {
	if r == nil {
		return
	}
	r.incr(counterKey("grade", result, ""))
	if r.otel != nil {
		r.otel.recordGrade(result)
	}
}

// RecordScan tracks a fan-out edge scan.
func (r *Recorder) RecordScan(items int, duration time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	r.incr(counterKey("scan", outcome, ""))
	if r.otel != nil {
		r.otel.recordScan(items, duration, err)
	}
}

// FeedCalls returns the total attempts recorded for a feed.
func (r *Recorder) FeedCalls(feed string) int {
	return r.Snapshot(feed).Calls
}

// FeedErrors returns the total failed attempts recorded for a feed.
func (r *Recorder) FeedErrors(feed string) int {
	return r.Snapshot(feed).Errors
}

// RateLimitHits returns the number of rate limit events seen for a feed.
func (r *Recorder) RateLimitHits(feed string) int {
	return r.Snapshot(feed).RateLimitHits
}

// LastRetryAfter returns the most recent Retry-After recorded for a feed.
func (r *Recorder) LastRetryAfter(feed string) time.Duration {
	return r.Snapshot(feed).LastRetryAfter
}

// LastCallLatency returns the last recorded latency for a feed call.
func (r *Recorder) LastCallLatency(feed string) time.Duration {
	return r.Snapshot(feed).LastCallLatency
}

// CacheHits returns recorded hits for a cache.
func (r *Recorder) CacheHits(cache string) int {
	return r.count(counterKey("cache", cache, OutcomeHit))
}

// CacheMisses returns recorded misses for a cache.
func (r *Recorder) CacheMisses(cache string) int {
	return r.count(counterKey("cache", cache, OutcomeMiss))
}

// Projections returns the projection count for a stat and outcome.
func (r *Recorder) Projections(stat, outcome string) int {
	return r.count(counterKey("projection", stat, outcome))
}

// Simulations returns the number of Monte Carlo runs.
func (r *Recorder) Simulations() int {
	return r.count(counterKey("simulation", "", ""))
}

// Grades returns the count for a grading result.
func (r *Recorder) Grades(result string) int {
	return r.count(counterKey("grade", result, ""))
}

// Scans returns the number of scans with the given outcome.
func (r *Recorder) Scans(outcome string) int {
	return r.count(counterKey("scan", outcome, ""))
}

// Snapshot returns a copy of the current stats for the feed.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(feed string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.feeds[feed]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// ensureFeed must be called with r.mu held.
func (r *Recorder) ensureFeed(feed string) *feedStats {
	stats, ok := r.feeds[feed]
	if !ok {
		stats = &feedStats{}
		r.feeds[feed] = stats
	}
	return stats
}

func (r *Recorder) incr(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[key]++
}

func (r *Recorder) count(key string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[key]
}

func counterKey(kind, a, b string) string {
	return kind + "|" + a + "|" + b
}
