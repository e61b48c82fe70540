package cache

import (
	"sync"

	"jobradar/pipeline-service/internal/model"
)

// ScoreKey builds a score-cache key from a listing's identity hash and the
// scoring-context version. Bumping the version (e.g. when resume-aware scoring
// is toggled) invalidates old entries without an explicit purge.
func ScoreKey(identityHash, contextVersion string) string {
	return identityHash + ":" + contextVersion
}

// ScoreCache caches computed scores by ScoreKey. Entries have no TTL: a score
// for a fixed scoring context does not go stale within a run cadence measured
// in hours, so invalidation happens only through key construction.
// Safe for concurrent use.
type ScoreCache struct {
	mu      sync.Mutex
	entries map[string]model.Score
}

// NewScoreCache creates an empty score cache.
func NewScoreCache() *ScoreCache {
	return &ScoreCache{entries: make(map[string]model.Score)}
}

// Get returns the cached score for key.
func (c *ScoreCache) Get(key string) (model.Score, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[key]
	return s, ok
}

// Set stores score under key.
func (c *ScoreCache) Set(key string, score model.Score) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = score
}

// Len returns the number of cached scores.
func (c *ScoreCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
