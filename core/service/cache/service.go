// Package cache wires a port/out.Cache variant to dataset.invalidated
// events and collapses concurrent recomputation of the same key.
package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jpmarichal/ccmwf-go/core/port/out"
)

// Loader recomputes the dataset for a cache-miss key. It is supplied
// by the caller of GetOrLoad, not the cache layer itself, since the
// cache does not know how to build a BranchSummary or an
// UpcomingArrival list.
type Loader func(ctx context.Context) ([]byte, error)

// Service is a strategy-based cache with TTL, prefix invalidation
// driven by dataset.invalidated, and singleflight-collapsed misses.
type Service struct {
	store out.Cache
	ttl   time.Duration
	group singleflight.Group
}

func New(store out.Cache, ttl time.Duration) *Service {
	return &Service{store: store, ttl: ttl}
}

// GetOrLoad returns the cached value for key, or invokes load exactly
// once across concurrent callers sharing the same key, caching the
// result before returning it.
func (s *Service) GetOrLoad(ctx context.Context, key string, load Loader) ([]byte, error) {
	if val, ok, err := s.store.Get(ctx, key); err != nil {
		return nil, err
	} else if ok {
		return val, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		val, loadErr := load(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if setErr := s.store.Set(ctx, key, val, s.ttl); setErr != nil {
			return nil, setErr
		}
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// OnDatasetInvalidated is registered as an event-bus subscriber; it
// invalidates every cache key for the generation/branch pair across
// all dataset_ids.
func (s *Service) OnDatasetInvalidated(ctx context.Context, evt out.DatasetInvalidated) error {
	prefix := "*:" + evt.BranchID + ":" + evt.GenerationDate
	return s.store.Invalidate(ctx, prefix)
}

func (s *Service) Metrics() out.CacheMetrics {
	return s.store.Metrics()
}
