package cache_test

import (
	"testing"

	"jobradar/pipeline-service/internal/cache"
	"jobradar/pipeline-service/internal/model"
)

func TestScoreCache_RoundTrip(t *testing.T) {
	c := cache.NewScoreCache()
	key := cache.ScoreKey("abc123", "v1")

	if _, ok := c.Get(key); ok {
		t.Fatal("expected a miss on an empty cache")
	}

	c.Set(key, model.Score{Total: 0.9})
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if got.Total != 0.9 {
		t.Errorf("Total = %v, want 0.9", got.Total)
	}
}

func TestScoreKey_VersionSaltsKey(t *testing.T) {
	if cache.ScoreKey("h", "v1") == cache.ScoreKey("h", "v2") {
		t.Error("bumping the context version must produce a different key")
	}
}
