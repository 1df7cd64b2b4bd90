// Package cache provides two cache variants: an in-process map and a
// Redis-backed remote store, both behind out.Cache.
package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jpmarichal/ccmwf-go/core/port/out"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is the in-process cache variant: a mutex-guarded map with
// absolute per-entry expiration.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	hits, misses, writes, invalidations int64
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		atomic.AddInt64(&c.misses, 1)
		return nil, false, nil
	}
	atomic.AddInt64(&c.hits, 1)
	return entry.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	atomic.AddInt64(&c.writes, 1)
	return nil
}

// Invalidate matches keys against a "*:<branch_id>:<generation_date>"
// style glob where "*" is the only wildcard, always in leading
// position.
func (c *MemoryCache) Invalidate(_ context.Context, prefix string) error {
	suffix := strings.TrimPrefix(prefix, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k := range c.entries {
		if strings.HasSuffix(k, suffix) {
			delete(c.entries, k)
			removed++
		}
	}
	if removed > 0 {
		atomic.AddInt64(&c.invalidations, 1)
	}
	return nil
}

func (c *MemoryCache) Metrics() out.CacheMetrics {
	return out.CacheMetrics{
		Hits:          atomic.LoadInt64(&c.hits),
		Misses:        atomic.LoadInt64(&c.misses),
		Writes:        atomic.LoadInt64(&c.writes),
		Invalidations: atomic.LoadInt64(&c.invalidations),
	}
}
