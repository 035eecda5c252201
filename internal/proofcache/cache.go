// Package proofcache holds the most recently fetched proof record.
package proofcache

import (
	"sync"
	"time"

	"github.com/NoCritics/succinct-tesseract/internal/types"
)

// DefaultWindow is how long a fetched record is served without refetching.
const DefaultWindow = 30 * time.Second

// Cache is a single-slot store: it holds either nothing or one record and the
// instant it was fetched. A stored record is replaced, never merged.
type Cache struct {
	mu        sync.RWMutex
	record    *types.ProofRecord
	fetchedAt time.Time
	window    time.Duration
	now       func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates an empty cache with the given freshness window.
// A non-positive window uses DefaultWindow.
func New(window time.Duration, opts ...Option) *Cache {
	if window <= 0 {
		window = DefaultWindow
	}
	c := &Cache{window: window, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fresh returns a copy of the cached record if one exists and is younger than the window.
func (c *Cache) Fresh() (types.ProofRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.record == nil || c.now().Sub(c.fetchedAt) >= c.window {
		return types.ProofRecord{}, false
	}
	return *c.record, true
}

// Store replaces the cached record and stamps it with the current time.
func (c *Cache) Store(rec types.ProofRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.record = &rec
	c.fetchedAt = c.now()
}

// Snapshot reports whether a record has ever been stored and when it was fetched.
func (c *Cache) Snapshot() (warm bool, fetchedAt time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.record != nil, c.fetchedAt
}

// Reset empties the cache.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record = nil
	c.fetchedAt = time.Time{}
}

// Window returns the freshness window.
func (c *Cache) Window() time.Duration {
	return c.window
}
