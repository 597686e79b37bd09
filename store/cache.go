package store

import (
	"sync"
	"time"
)

// cacheEntry pairs a decoded collection snapshot with the time it was read
// from (or written to) disk.
type cacheEntry struct {
	value    any
	loadedAt time.Time
}

// cache is the per-collection read-through cache. Each entry is timestamped
// independently so a hot collection never forces reloading of a cold one.
// Entries are refreshed eagerly on every successful save, which is what makes
// a write immediately visible to the next read regardless of TTL.
type cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[Collection]cacheEntry
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		ttl:     ttl,
		entries: make(map[Collection]cacheEntry),
	}
}

// get returns the cached snapshot if it is still within the freshness
// window. A zero or negative TTL disables caching entirely.
func (c *cache) get(col Collection, now time.Time) (any, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[col]
	if !ok || now.Sub(e.loadedAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

// put stores a fresh snapshot. Callers invoke it after a successful disk
// read or save; a failed save must never reach here.
func (c *cache) put(col Collection, v any, now time.Time) {
	c.mu.Lock()
	c.entries[col] = cacheEntry{value: v, loadedAt: now}
	c.mu.Unlock()
}

// invalidate drops a single collection's entry so the next read hits disk.
func (c *cache) invalidate(col Collection) {
	c.mu.Lock()
	delete(c.entries, col)
	c.mu.Unlock()
}

// clear drops every entry. Used when the backing files may have been
// mutated by another process.
func (c *cache) clear() {
	c.mu.Lock()
	c.entries = make(map[Collection]cacheEntry)
	c.mu.Unlock()
}
