package cache

import (
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("empty cache returned a value")
	}

	c.Set("a", "1")
	c.Set("b", "2")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}

	// "a" was just used, so adding "c" evicts "b".
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry not evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheOverwrite(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	c.Set("k", 1)
	c.Set("k", 2)
	if v, _ := c.Get("k"); v != 2 {
		t.Errorf("Get(k) = %d, want 2", v)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[int](4, 10*time.Millisecond)
	c.Set("k", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry still readable")
	}
	c.Set("k", 2)
	time.Sleep(20 * time.Millisecond)
	if cleaned := c.CleanExpired(); cleaned != 1 {
		t.Errorf("CleanExpired() = %d, want 1", cleaned)
	}
	if c.Size() != 0 {
		t.Errorf("Size() after clean = %d, want 0", c.Size())
	}
}

func TestLRUCachePurgeAndDelete(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry still readable")
	}

	c.Purge()
	if c.Size() != 0 {
		t.Errorf("Size() after purge = %d, want 0", c.Size())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("purged entry still readable")
	}

	// Cache stays usable after purge.
	c.Set("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) after purge = %d, %v", v, ok)
	}
}

func TestManagerCleanup(t *testing.T) {
	c := NewLRUCache[int](4, 5*time.Millisecond)
	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)

	c.Set("k", 1)
	time.Sleep(40 * time.Millisecond)
	m.Stop()

	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0 after periodic cleanup", c.Size())
	}
}
