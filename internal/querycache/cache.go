// Package querycache implements the shared keyed response cache. One
// instance is constructed at startup and handed to every view; entries
// are inserted or replaced wholesale, never mutated in place.
package querycache

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/evdash/internal/metrics"
	"github.com/yourorg/evdash/internal/model"
)

// FetchFunc performs the actual backend fetch for a filter key.
type FetchFunc func(ctx context.Context, f model.Filters) (*model.OpportunitiesResponse, error)

// Entry is the cached outcome of the most recent fetch for one key.
// Exactly one of Response and Err is meaningful.
type Entry struct {
	Response  *model.OpportunitiesResponse
	Err       error
	FetchedAt time.Time
}

type call struct {
	done  chan struct{}
	entry *Entry
}

// Cache maps filter keys to their latest fetch outcome. At most one fetch
// is in flight per key; concurrent requests for the same key wait for the
// leader's result.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*Entry
	inflight map[string]*call
	freshFor time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache whose successful entries are served without a
// network call for freshFor after the fetch.
func New(freshFor time.Duration) *Cache {
	c := &Cache{
		entries:  make(map[string]*Entry),
		inflight: make(map[string]*call),
		freshFor: freshFor,
		stop:     make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Close stops the background cleanup loop.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Lookup returns the entry for f if one exists, and whether it is a fresh
// success that can be served without a fetch.
func (c *Cache) Lookup(f model.Filters) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[f.Key()]
	if !ok {
		return nil, false
	}
	return e, c.freshLocked(e)
}

// Do returns the fresh cached entry for f when one exists, otherwise runs
// fn (coalescing with any in-flight fetch for the same key) and caches the
// outcome.
func (c *Cache) Do(ctx context.Context, f model.Filters, fn FetchFunc) *Entry {
	key := f.Key()
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.freshLocked(e) {
		c.mu.Unlock()
		metrics.CacheHits.Inc()
		logrus.Debugf("Cache hit for %s", key)
		return e
	}
	metrics.CacheMisses.Inc()
	return c.fetchLocked(ctx, key, f, fn)
}

// Refresh always re-fetches f, bypassing the freshness window. Used by the
// poll timer and manual retry. Still coalesces with an in-flight fetch.
func (c *Cache) Refresh(ctx context.Context, f model.Filters, fn FetchFunc) *Entry {
	c.mu.Lock()
	return c.fetchLocked(ctx, f.Key(), f, fn)
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// freshLocked reports whether e is a success still inside the freshness
// window. Failures are never served as fresh; a re-request for their key
// starts a new attempt sequence.
func (c *Cache) freshLocked(e *Entry) bool {
	return e.Err == nil && time.Since(e.FetchedAt) < c.freshFor
}

// fetchLocked coalesces on the in-flight call for key or becomes the
// leader. Called with c.mu held; releases it.
func (c *Cache) fetchLocked(ctx context.Context, key string, f model.Filters, fn FetchFunc) *Entry {
	if existing, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-existing.done:
			return existing.entry
		case <-ctx.Done():
			return &Entry{Err: ctx.Err(), FetchedAt: time.Now()}
		}
	}

	cl := &call{done: make(chan struct{})}
	c.inflight[key] = cl
	c.mu.Unlock()

	resp, err := fn(ctx, f)
	entry := &Entry{Response: resp, Err: err, FetchedAt: time.Now()}

	c.mu.Lock()
	c.entries[key] = entry
	delete(c.inflight, key)
	c.mu.Unlock()

	cl.entry = entry
	close(cl.done)
	return entry
}

// cleanupLoop periodically evicts entries past the freshness window so the
// map does not grow with every filter keystroke ever typed.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *Cache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.Sub(e.FetchedAt) >= c.freshFor {
			delete(c.entries, key)
		}
	}
}
