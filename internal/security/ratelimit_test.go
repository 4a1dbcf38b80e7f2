package security

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestRateLimiter_AllowWithinLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{RendersPerMin: 5})

	for i := range 5 {
		if err := rl.Allow("user:1"); err != nil {
			t.Fatalf("Allow(%d) returned error: %v", i, err)
		}
	}

	// 6th should be denied.
	if err := rl.Allow("user:1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestRateLimiter_KeysIndependent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{RendersPerMin: 1})

	if err := rl.Allow("user:1"); err != nil {
		t.Fatalf("user:1 first call: %v", err)
	}
	if err := rl.Allow("user:1"); !errors.Is(err, ErrRateLimited) {
		t.Fatal("user:1 second call should be limited")
	}
	if err := rl.Allow("user:2"); err != nil {
		t.Fatalf("user:2 should have its own window, got %v", err)
	}
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimitConfig{RendersPerMin: 2})
	rl.now = func() time.Time { return now }

	// Fill the window.
	_ = rl.Allow("user:1")
	_ = rl.Allow("user:1")

	if err := rl.Allow("user:1"); !errors.Is(err, ErrRateLimited) {
		t.Fatal("expected rate limit")
	}

	// Advance past the window.
	now = now.Add(61 * time.Second)

	if err := rl.Allow("user:1"); err != nil {
		t.Fatalf("expected allow after window, got %v", err)
	}
}

func TestRateLimiter_SweepsExpiredKeys(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimitConfig{RendersPerMin: 10, MaxTracked: 3})
	rl.now = func() time.Time { return now }

	for i := range 3 {
		if err := rl.Allow(fmt.Sprintf("user:%d", i)); err != nil {
			t.Fatalf("Allow(user:%d): %v", i, err)
		}
	}

	// Table is full of active keys, a new key is refused.
	if err := rl.Allow("user:new"); !errors.Is(err, ErrRateLimited) {
		t.Fatal("expected ErrRateLimited for new key with full table")
	}

	// Once the old windows expire the sweep makes room.
	now = now.Add(2 * time.Minute)
	if err := rl.Allow("user:new"); err != nil {
		t.Fatalf("expected allow after sweep, got %v", err)
	}
	if got := rl.Tracked(); got != 1 {
		t.Errorf("Tracked() = %d, want 1 after sweep", got)
	}
}

func TestRateLimiter_SweepExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimitConfig{RendersPerMin: 10})
	rl.now = func() time.Time { return now }

	_ = rl.Allow("user:1")
	_ = rl.Allow("user:2")

	if got := rl.SweepExpired(); got != 0 {
		t.Errorf("SweepExpired() = %d, want 0 while windows active", got)
	}

	now = now.Add(2 * time.Minute)
	if got := rl.SweepExpired(); got != 2 {
		t.Errorf("SweepExpired() = %d, want 2 after expiry", got)
	}
	if got := rl.Tracked(); got != 0 {
		t.Errorf("Tracked() = %d, want 0 after sweep", got)
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{})

	if rl.config.RendersPerMin != 20 {
		t.Errorf("default RendersPerMin = %d, want 20", rl.config.RendersPerMin)
	}
	if rl.config.MaxTracked != 10_000 {
		t.Errorf("default MaxTracked = %d, want 10000", rl.config.MaxTracked)
	}
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{RendersPerMin: 1000})

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = rl.Allow(fmt.Sprintf("user:%d", i%10))
		}()
	}
	wg.Wait()
}
