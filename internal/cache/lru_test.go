package cache

import (
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Set("a", "1")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q,%v, want 1,true", v, ok)
	}

	// Overwrite keeps a single entry.
	c.Set("a", "2")
	if v, _ := c.Get("a"); v != "2" {
		t.Errorf("Get(a) after overwrite = %q, want 2", v)
	}
	if c.Size() != 1 {
		t.Errorf("size = %d, want 1", c.Size())
	}
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected least recently used entry to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry should survive")
	}
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache[int](4, 10*time.Millisecond)
	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expected expired entry to miss")
	}

	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	if removed := c.CleanExpired(); removed != 1 {
		t.Errorf("CleanExpired removed %d, want 1", removed)
	}
	if c.Size() != 0 {
		t.Errorf("size after sweep = %d, want 0", c.Size())
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected deleted entry to miss")
	}
	// Deleting a missing key is a no-op.
	c.Delete("missing")
}
