// Package cache memoizes warehouse query results for a bounded time window
// so repeated dashboard renders do not re-issue identical queries.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/meridian-data/funnelboard/pkg/core"
)

// DefaultTTL bounds how long a fetched result is served without going back
// to the warehouse.
const DefaultTTL = time.Hour

// FetchFunc executes query text against the warehouse.
type FetchFunc func(ctx context.Context, sqlText string) (core.ResultSet, error)

type entry struct {
	result    core.ResultSet
	fetchedAt time.Time
}

// Cache is a TTL-bounded, whole-value memoization of query results keyed by
// query ID. Expired entries are treated as absent; a fetch failure is
// propagated to callers and never stored. Concurrent misses for the same key
// share a single warehouse round trip.
type Cache struct {
	fetch  FetchFunc
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]entry
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock injects the time source. Used by tests to step past expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger attaches a logger for hit/miss debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// New creates a Cache delegating misses to fetch.
func New(fetch FetchFunc, opts ...Option) *Cache {
	c := &Cache{
		fetch:   fetch,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  slog.New(slog.DiscardHandler),
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrFetch returns the cached result for id if an unexpired entry exists,
// otherwise executes sqlText, stores the outcome, and returns it. The stored
// value is replaced wholesale; there are no partial updates.
func (c *Cache) GetOrFetch(ctx context.Context, id string, sqlText string) (core.ResultSet, error) {
	if rs, ok := c.lookup(id); ok {
		c.logger.Debug("cache hit", "query", id)
		return rs, nil
	}

	v, err, shared := c.group.Do(id, func() (any, error) {
		// Re-check under the flight: another caller may have just stored.
		if rs, ok := c.lookup(id); ok {
			return rs, nil
		}

		c.logger.Debug("cache miss, querying warehouse", "query", id)
		rs, err := c.fetch(ctx, sqlText)
		if err != nil {
			return core.ResultSet{}, err
		}

		c.mu.Lock()
		c.entries[id] = entry{result: rs, fetchedAt: c.now()}
		c.mu.Unlock()
		return rs, nil
	})
	if err != nil {
		return core.ResultSet{}, err
	}
	if shared {
		c.logger.Debug("cache fetch shared in flight", "query", id)
	}
	return v.(core.ResultSet), nil
}

// FetchedAt returns when the entry for id was stored, if one exists
// (expired or not). Used for the dashboard's freshness footer.
func (c *Cache) FetchedAt(id string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return e.fetchedAt, ok
}

// Invalidate removes the entry for id.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Reset drops every entry. The next render re-queries the warehouse.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

func (c *Cache) lookup(id string) (core.ResultSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return core.ResultSet{}, false
	}
	return e.result, true
}
