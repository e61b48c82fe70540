package cache_test

import (
	"testing"
	"time"

	"jobradar/pipeline-service/internal/cache"
)

func TestResponseCache_HitAfterSet(t *testing.T) {
	c := cache.NewResponseCache()
	c.Set("https://example.com/jobs", "body")

	body, ok := c.Get("https://example.com/jobs")
	if !ok {
		t.Fatal("expected a hit immediately after Set")
	}
	if body != "body" {
		t.Errorf("Get returned %q, want %q", body, "body")
	}
}

func TestResponseCache_MissWhenAbsent(t *testing.T) {
	c := cache.NewResponseCache()
	if _, ok := c.Get("https://example.com/absent"); ok {
		t.Error("expected a miss for an absent URL")
	}

	s := c.Stats()
	if s.Misses != 1 || s.Hits != 0 {
		t.Errorf("Stats = %+v, want 1 miss and 0 hits", s)
	}
}

func TestResponseCache_TTLExpiry(t *testing.T) {
	c := cache.NewResponseCache()
	c.SetTTL(100 * time.Millisecond)
	c.Set("u", "v")

	time.Sleep(50 * time.Millisecond)
	if _, ok := c.Get("u"); !ok {
		t.Fatal("entry should still be fresh at 50ms")
	}

	time.Sleep(100 * time.Millisecond)
	if _, ok := c.Get("u"); ok {
		t.Fatal("entry should be stale after TTL elapsed")
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Errorf("Stats = %+v, want 1 hit and 1 miss", s)
	}
	if s.Entries != 0 {
		t.Errorf("stale entry should be evicted on read, have %d entries", s.Entries)
	}
}

func TestResponseCache_HitRate(t *testing.T) {
	c := cache.NewResponseCache()
	if rate := c.Stats().HitRate; rate != 0 {
		t.Errorf("hit rate before any request = %v, want 0", rate)
	}

	c.Set("a", "1")
	c.Get("a")
	c.Get("b")

	if rate := c.Stats().HitRate; rate != 0.5 {
		t.Errorf("hit rate = %v, want 0.5", rate)
	}
}

func TestResponseCache_Clear(t *testing.T) {
	c := cache.NewResponseCache()
	c.Set("a", "1")
	c.Set("b", "2")
	c.Clear()

	if s := c.Stats(); s.Entries != 0 {
		t.Errorf("entries after Clear = %d, want 0", s.Entries)
	}
}
