package vdp

import lru "github.com/hashicorp/golang-lru/v2"

// derivedCache is the shared shape for derived data in this core, used
// instead of hand-rolling a dirty-bit array per consumer. Two consumers
// use it: the SpriteChecker keeps its per-line sprite records in one and
// purges it wholesale on both UpdateVRAM and UpdateWindow, and the YJK
// decoder memoizes its pure (Y, J, K) -> RGB results in another.
type derivedCache[K comparable, V any] struct {
	lru *lru.Cache[K, V]
}

// newDerivedCache builds a cache holding up to size entries. size <= 0 is
// rejected by the underlying LRU constructor, so callers always pass a
// sane positive bound (the largest being the YJK table's 32768 entries).
func newDerivedCache[K comparable, V any](size int) *derivedCache[K, V] {
	c, err := lru.New[K, V](size)
	if err != nil {
		// Only possible if size <= 0, which no caller in this package does.
		panic(err)
	}
	return &derivedCache[K, V]{lru: c}
}

func (c *derivedCache[K, V]) get(key K) (V, bool) {
	return c.lru.Get(key)
}

func (c *derivedCache[K, V]) put(key K, value V) {
	c.lru.Add(key, value)
}

func (c *derivedCache[K, V]) remove(key K) {
	c.lru.Remove(key)
}

// purge drops every cached entry; called from UpdateWindow, since a mask
// change or disable invalidates every address mapping at once.
func (c *derivedCache[K, V]) purge() {
	c.lru.Purge()
}
