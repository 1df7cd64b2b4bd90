package cache

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jpmarichal/ccmwf-go/core/port/out"
)

// RemoteCache is the remote cache variant, usable across processes. Reads
// may briefly observe a stale entry after an invalidation publishes
// but before this subscriber applies it; writes for the same key are
// last-writer-wins by construction (a plain SET).
type RemoteCache struct {
	client *redis.Client

	hits, misses, writes, invalidations int64
}

func NewRemoteCache(client *redis.Client) *RemoteCache {
	return &RemoteCache{client: client}
}

func (c *RemoteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	atomic.AddInt64(&c.hits, 1)
	return val, true, nil
}

func (c *RemoteCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return err
	}
	atomic.AddInt64(&c.writes, 1)
	return nil
}

// Invalidate uses non-blocking SCAN in batches rather than KEYS, so a
// large keyspace does not stall other Redis clients during
// invalidation.
func (c *RemoteCache) Invalidate(ctx context.Context, prefix string) error {
	pattern := "*" + strings.TrimPrefix(prefix, "*")
	var cursor uint64
	removed := 0
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			removed += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if removed > 0 {
		atomic.AddInt64(&c.invalidations, 1)
	}
	return nil
}

func (c *RemoteCache) Metrics() out.CacheMetrics {
	return out.CacheMetrics{
		Hits:          atomic.LoadInt64(&c.hits),
		Misses:        atomic.LoadInt64(&c.misses),
		Writes:        atomic.LoadInt64(&c.writes),
		Invalidations: atomic.LoadInt64(&c.invalidations),
	}
}
