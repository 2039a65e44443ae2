package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	raw     []byte
	expires time.Time
}

// MemoryCache is used when no redis address is configured. Values are stored
// as JSON so callers get the same copy semantics as with redis.
type MemoryCache struct {
	mu      sync.Mutex
	gen     uint64
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Generation(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.gen, nil
}

func (c *MemoryCache) Get(_ context.Context, gen uint64, key string, dst any) (bool, error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false, nil
	}
	e, ok := c.entries[key]
	if ok && !e.expires.After(c.now()) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.raw, dst); err != nil {
		return false, fmt.Errorf("json.Unmarshal -> %w", err)
	}
	return true, nil
}

func (c *MemoryCache) Set(_ context.Context, gen uint64, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return nil
	}
	c.entries[key] = memoryEntry{raw: raw, expires: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.entries = make(map[string]memoryEntry)
	return nil
}
