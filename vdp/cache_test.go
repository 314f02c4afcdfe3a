package vdp

import "testing"

func TestDerivedCache_PutGet(t *testing.T) {
	c := newDerivedCache[int, string](4)
	c.put(1, "one")
	if v, ok := c.get(1); !ok || v != "one" {
		t.Errorf("get(1) = %q, %v; want \"one\", true", v, ok)
	}
	if _, ok := c.get(2); ok {
		t.Error("get(2) should miss on an empty key")
	}
}

func TestDerivedCache_PurgeDropsEverything(t *testing.T) {
	c := newDerivedCache[int, int](4)
	c.put(1, 10)
	c.put(2, 20)
	c.purge()
	if _, ok := c.get(1); ok {
		t.Error("expected purge to evict key 1")
	}
	if _, ok := c.get(2); ok {
		t.Error("expected purge to evict key 2")
	}
}

func TestDerivedCache_Remove(t *testing.T) {
	c := newDerivedCache[int, int](4)
	c.put(1, 10)
	c.remove(1)
	if _, ok := c.get(1); ok {
		t.Error("expected key 1 to be removed")
	}
}

func TestDerivedCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newDerivedCache[int, int](2)
	c.put(1, 10)
	c.put(2, 20)
	c.put(3, 30) // evicts key 1, the least recently touched
	if _, ok := c.get(1); ok {
		t.Error("expected key 1 to be evicted at capacity 2")
	}
	if v, ok := c.get(3); !ok || v != 30 {
		t.Errorf("get(3) = %d, %v; want 30, true", v, ok)
	}
}
