package githubstats

import (
	"strings"
	"sync"
	"time"
)

const DefaultCacheTTL = 24 * time.Hour

type cacheEntry struct {
	stats    Stats
	storedAt time.Time
}

// Cache is a concurrency-safe TTL cache of Stats keyed by username. Writers
// racing on one key store equivalent values, so the last write wins.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// NewCache returns a cache with the given ttl. A nil now uses time.Now.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached stats for username if the entry is at most ttl old.
func (c *Cache) Get(username string) (Stats, bool) {
	key := cacheKey(username)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return Stats{}, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.storedAt.Equal(entry.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return Stats{}, false
	}
	return entry.stats, true
}

// Set stores stats for username. Empty stats are ignored so a failed lookup
// is retried on the next call.
func (c *Cache) Set(username string, stats Stats) {
	if stats.IsEmpty() {
		return
	}

	c.mu.Lock()
	c.entries[cacheKey(username)] = cacheEntry{stats: stats, storedAt: c.now()}
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache) Purge() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func cacheKey(username string) string {
	return strings.ToLower(username)
}
