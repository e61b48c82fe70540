// Package cache provides the in-process caches shared across a pipeline run:
// a TTL-based response cache for raw fetch bodies and a score cache keyed by
// listing identity.
package cache

import (
	"sync"
	"time"
)

// DefaultResponseTTL is how long a cached response body stays fresh.
const DefaultResponseTTL = 300 * time.Second

type responseEntry struct {
	body     string
	cachedAt time.Time
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Entries int     `json:"entries"`
	HitRate float64 `json:"hitRate"`
}

// ResponseCache is a URL-keyed TTL cache of raw fetch bodies. Stale entries
// are evicted lazily on read; there is no background sweeper. Safe for
// concurrent use.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]responseEntry
	ttl     time.Duration
	hits    uint64
	misses  uint64
}

// NewResponseCache creates a cache with the default TTL.
func NewResponseCache() *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]responseEntry),
		ttl:     DefaultResponseTTL,
	}
}

// Get returns the cached body for url if present and fresh. A fresh hit
// increments the hit counter; absence or staleness increments misses, and a
// stale entry is evicted before returning.
func (c *ResponseCache) Get(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[url]
	if !ok {
		c.misses++
		return "", false
	}
	if time.Since(e.cachedAt) >= c.ttl {
		delete(c.entries, url)
		c.misses++
		return "", false
	}
	c.hits++
	return e.body, true
}

// Set stores body for url, stamping it with the current time.
func (c *ResponseCache) Set(url, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = responseEntry{body: body, cachedAt: time.Now()}
}

// Clear drops all entries. Counters are preserved.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]responseEntry)
}

// SetTTL changes the freshness window. Stored timestamps are untouched; only
// future freshness comparisons use the new TTL.
func (c *ResponseCache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

// Stats returns a snapshot of the counters. HitRate is 0 before any request.
func (c *ResponseCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}
