package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryLimiter_RejectsAfterMax(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	lim := NewMemoryLimiter(3, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		dec, err := lim.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !dec.Allowed {
			t.Fatalf("request %d: expected allowed", i)
		}
		if dec.Remaining != 3-i {
			t.Fatalf("request %d: expected remaining %d, got %d", i, 3-i, dec.Remaining)
		}
	}

	dec, _ := lim.Allow(ctx, "10.0.0.1")
	if dec.Allowed {
		t.Fatalf("expected 4th request to be rejected")
	}
	if dec.RetryAfter != time.Minute {
		t.Fatalf("expected RetryAfter=1m, got %s", dec.RetryAfter)
	}
}

func TestMemoryLimiter_WindowExpiryResets(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	lim := NewMemoryLimiter(1, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	if dec, _ := lim.Allow(ctx, "k"); !dec.Allowed {
		t.Fatalf("expected first request allowed")
	}
	if dec, _ := lim.Allow(ctx, "k"); dec.Allowed {
		t.Fatalf("expected second request rejected")
	}

	clock.Advance(30 * time.Second)
	if dec, _ := lim.Allow(ctx, "k"); dec.Allowed {
		t.Fatalf("expected request inside window to be rejected")
	}

	clock.Advance(30 * time.Second)
	if dec, _ := lim.Allow(ctx, "k"); !dec.Allowed {
		t.Fatalf("expected request after window to be allowed")
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	lim := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	if dec, _ := lim.Allow(ctx, "a"); !dec.Allowed {
		t.Fatalf("expected a allowed")
	}
	if dec, _ := lim.Allow(ctx, "b"); !dec.Allowed {
		t.Fatalf("expected b allowed")
	}
	if dec, _ := lim.Allow(ctx, "a"); dec.Allowed {
		t.Fatalf("expected second a rejected")
	}
}

func TestMemoryLimiter_SweepRemovesExpired(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	lim := NewMemoryLimiter(5, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	_, _ = lim.Allow(ctx, "old")
	clock.Advance(45 * time.Second)
	_, _ = lim.Allow(ctx, "new")
	clock.Advance(20 * time.Second)

	if removed := lim.Sweep(); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if lim.Len() != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", lim.Len())
	}
}

func TestMemoryLimiter_ConcurrentCountsAreExact(t *testing.T) {
	lim := NewMemoryLimiter(50, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dec, _ := lim.Allow(ctx, "same")
			if dec.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Fatalf("expected exactly 50 allowed, got %d", allowed)
	}
}
