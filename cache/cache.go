// Package cache memoizes expensive completion calls. Entries are keyed by
// the user message plus the history length at the time of the call, so a
// repeated question in an unchanged conversation never hits the provider
// twice. The base contract has no eviction beyond an administrative Clear;
// an optional TTL can be enabled without breaking callers.
package cache

import (
	"fmt"
	"sync"
	"time"
)

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Size    int     `json:"size"`
	Hits    int     `json:"hits"`
	Misses  int     `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

type entry struct {
	value    string
	storedAt time.Time
}

// Options configure the cache.
type Options struct {
	// TTL expires entries on read when set. Zero keeps entries until Clear.
	TTL time.Duration
	// Now overrides the clock for tests.
	Now func() time.Time
}

// Cache is an in-memory keyed response store with hit/miss accounting.
// Safe for concurrent access.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	hits    int
	misses  int
	ttl     time.Duration
	now     func() time.Time
}

// New constructs an empty cache with optional overrides.
func New(optFns ...func(o *Options)) *Cache {
	opts := Options{Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Cache{entries: make(map[string]entry), ttl: opts.TTL, now: opts.Now}
}

// Key derives the cache key from the message text and the conversation
// history length at call time.
func Key(text string, historyLen int) string {
	return fmt.Sprintf("%s-%d", text, historyLen)
}

// Get returns the cached value and whether it was present (and fresh).
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok && c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		ok = false
	}
	if !ok {
		c.misses++
		return "", false
	}
	c.hits++
	return e.value, true
}

// Set stores a value under the key, overwriting any previous entry.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, storedAt: c.now()}
}

// Stats returns current size and hit/miss counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{Size: len(c.entries), Hits: c.hits, Misses: c.misses, HitRate: rate}
}

// Clear drops every entry and resets the counters, returning the number of
// entries removed. This is the administrative reset hook.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]entry)
	c.hits = 0
	c.misses = 0
	return n
}
