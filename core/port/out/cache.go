package out

import (
	"context"
	"time"
)

// Cache is the dataset cache outbound port: polymorphic over {get, set(ttl),
// invalidate(prefix), metrics}. The in-process and remote variants
// both satisfy this contract; selection is by configuration.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate removes every key matching the given prefix, e.g.
	// "*:<branch_id>:<generation_date>".
	Invalidate(ctx context.Context, prefix string) error

	Metrics() CacheMetrics
}

// CacheMetrics is the cumulative counter set exposed read-only.
type CacheMetrics struct {
	Hits         int64
	Misses       int64
	Writes       int64
	Invalidations int64
}
