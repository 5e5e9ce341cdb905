package cache

import "testing"

func TestGetPutInvalidate(t *testing.T) {
	c := New()

	if _, ok := c.Get(1, 10); ok {
		t.Error("empty cache returned a value")
	}

	c.Put(1, 10, "view-a")
	c.Put(1, 11, "view-b")
	c.Put(2, 10, "view-c")

	value, ok := c.Get(1, 10)
	if !ok || value != "view-a" {
		t.Errorf("Get(1, 10) = (%v, %v), want (view-a, true)", value, ok)
	}

	c.Invalidate(1, 10)
	if _, ok := c.Get(1, 10); ok {
		t.Error("invalidated entry still present")
	}
	if _, ok := c.Get(1, 11); !ok {
		t.Error("sibling entry dropped by single-key invalidation")
	}
	if _, ok := c.Get(2, 10); !ok {
		t.Error("entry of another chat dropped by single-key invalidation")
	}
}

func TestInvalidateChat(t *testing.T) {
	c := New()

	c.Put(1, 10, "view-a")
	c.Put(1, 11, "view-b")
	c.Put(2, 10, "view-c")

	c.InvalidateChat(1)

	if _, ok := c.Get(1, 10); ok {
		t.Error("chat entry survived chat-wide invalidation")
	}
	if _, ok := c.Get(1, 11); ok {
		t.Error("chat entry survived chat-wide invalidation")
	}
	if _, ok := c.Get(2, 10); !ok {
		t.Error("entry of another chat dropped by chat-wide invalidation")
	}
}

func TestStatsCounters(t *testing.T) {
	c := New()

	c.Put(1, 10, "view-a")
	c.Get(1, 10)
	c.Get(1, 99)
	c.Invalidate(1, 10)
	c.Invalidate(1, 10) // second invalidation of a gone key is not an eviction

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Evictions != 1 || stats.Entries != 0 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 eviction, 0 entries", stats)
	}
}
