// Package cache provides a read-through cache with per-entry expiry.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/preston-bernstein/nba-props-engine/internal/metrics"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// Loader computes the value for a key on a miss.
type Loader[V any] func(ctx context.Context) (V, error)

// TTL maps keys to values that expire after a fixed lifetime.
// Concurrent misses on the same key share one load.
type TTL[K comparable, V any] struct {
	name    string
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Recorder

	mu      sync.Mutex
	entries map[K]entry[V]
	group   singleflight.Group
}

// Option customizes a TTL cache.
type Option func(*options)

type options struct {
	now     func() time.Time
	metrics *metrics.Recorder
}

// WithClock injects the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMetrics records hits and misses under the cache name.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(o *options) {
		o.metrics = rec
	}
}

// New constructs a cache. A non-positive ttl disables storage (every Get loads).
func New[K comparable, V any](name string, ttl time.Duration, opts ...Option) *TTL[K, V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &TTL[K, V]{
		name:    name,
		ttl:     ttl,
		now:     o.now,
		metrics: o.metrics,
		entries: make(map[K]entry[V]),
	}
}

// Peek returns a live value without loading.
func (c *TTL[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the cache lifetime.
func (c *TTL[K, V]) Set(key K, value V) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expires: c.now().Add(c.ttl)}
}

// Get returns the cached value or loads, stores and returns it. Load errors are not cached.
func (c *TTL[K, V]) Get(ctx context.Context, key K, load Loader[V]) (V, error) {
	if v, ok := c.Peek(key); ok {
		c.metrics.RecordCacheLookup(c.name, true)
		return v, nil
	}
	c.metrics.RecordCacheLookup(c.name, false)

	res, err, _ := c.group.Do(fmt.Sprint(key), func() (any, error) {
		if v, ok := c.Peek(key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Invalidate drops a key.
func (c *TTL[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Purge drops expired entries and returns how many were removed.
func (c *TTL[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
