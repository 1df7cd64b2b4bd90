package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDebouncerWithoutRedisFallsBackToLocalMap(t *testing.T) {
	d := NewDebouncer(nil, 50*time.Millisecond)
	ctx := context.Background()

	if d.IsDuplicate(ctx, "key1") {
		t.Fatal("first sighting of a key must not be a duplicate")
	}
	d.Mark(ctx, "key1")
	if !d.IsDuplicate(ctx, "key1") {
		t.Error("expected key1 to be flagged as a duplicate immediately after Mark")
	}
}

func TestDebouncerExpiresAfterDuration(t *testing.T) {
	d := NewDebouncer(nil, 10*time.Millisecond)
	ctx := context.Background()

	d.Mark(ctx, "key1")
	time.Sleep(30 * time.Millisecond)
	if d.IsDuplicate(ctx, "key1") {
		t.Error("expected duplicate window to have elapsed")
	}
}

func TestSlidingWindowLimiterWithoutRedisAllowsAll(t *testing.T) {
	l := NewSlidingWindowLimiter(nil, 10, 5)
	allowed, wait := l.Allow(context.Background(), "any-key")
	if !allowed {
		t.Error("expected fallback allow=true when redis is unavailable")
	}
	if wait != 0 {
		t.Errorf("expected zero wait, got %v", wait)
	}
}

func TestMemoryGuardLimiting(t *testing.T) {
	g := NewMemoryGuard(50)

	if got := g.LimitInt(100, 30); got != 30 {
		t.Errorf("LimitInt(100, 30) = %d, want 30", got)
	}
	if got := g.LimitInt(10, 30); got != 10 {
		t.Errorf("LimitInt(10, 30) = %d, want 10", got)
	}

	if got := g.LimitPayloadSize(100); got != 50 {
		t.Errorf("LimitPayloadSize(100) = %d, want 50", got)
	}
	if got := g.LimitPayloadSize(10); got != 10 {
		t.Errorf("LimitPayloadSize(10) = %d, want 10", got)
	}

	if got := g.LimitSliceLen(200); got != 50 {
		t.Errorf("LimitSliceLen(200) = %d, want 50", got)
	}
}

func TestAPIProtectorSemaphoreLimitsConcurrency(t *testing.T) {
	p := NewAPIProtector(nil, &Config{MaxConcurrent: 1, RequestsPerSecond: 100, BurstSize: 100, DebounceDuration: time.Millisecond})

	result1, release1 := p.Acquire(context.Background(), "k1")
	if !result1.Allowed {
		t.Fatal("expected first Acquire to succeed")
	}

	result2, _ := p.Acquire(context.Background(), "k2")
	if result2.Allowed {
		t.Error("expected second concurrent Acquire to be rejected (semaphore exhausted)")
	}

	release1()

	result3, release3 := p.Acquire(context.Background(), "k3")
	if !result3.Allowed {
		t.Error("expected Acquire to succeed after release")
	}
	if release3 != nil {
		release3()
	}
}
