package weather

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value   string
	expires time.Time
}

// ttlCache is a bounded map with per-entry expiry. When full, the
// entry closest to expiry is evicted.
type ttlCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	max     int
	now     func() time.Time
}

func newTTLCache(ttl time.Duration, max int) *ttlCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if max <= 0 {
		max = 1000
	}
	return &ttlCache{entries: make(map[string]cacheEntry), ttl: ttl, max: max, now: time.Now}
}

func (c *ttlCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

func (c *ttlCache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.max {
		c.evictOldestLocked()
	}
	c.entries[key] = cacheEntry{value: value, expires: c.now().Add(c.ttl)}
}

func (c *ttlCache) evictOldestLocked() {
	var oldest string
	var oldestAt time.Time
	for k, e := range c.entries {
		if oldest == "" || e.expires.Before(oldestAt) {
			oldest = k
			oldestAt = e.expires
		}
	}
	if oldest != "" {
		delete(c.entries, oldest)
	}
}

func (c *ttlCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
