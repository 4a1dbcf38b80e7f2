package security

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when a request exceeds the rate limit.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitConfig bounds how fast a single requester can ask for renders.
type RateLimitConfig struct {
	RendersPerMin int `yaml:"renders_per_min"`
	MaxTracked    int `yaml:"max_tracked"`
}

// rateLimitConfigDefaults returns a config with sensible defaults.
func rateLimitConfigDefaults() RateLimitConfig {
	return RateLimitConfig{
		RendersPerMin: 20,
		MaxTracked:    10_000,
	}
}

// RateLimiter implements sliding window rate limiting per requester key,
// typically a Telegram user ID. Each key tracks timestamps of its recent
// events within a one-minute window.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	config  RateLimitConfig
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter with the given config.
// Zero-value fields in cfg are replaced with defaults.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	defaults := rateLimitConfigDefaults()
	if cfg.RendersPerMin <= 0 {
		cfg.RendersPerMin = defaults.RendersPerMin
	}
	if cfg.MaxTracked <= 0 {
		cfg.MaxTracked = defaults.MaxTracked
	}
	return &RateLimiter{
		config:  cfg,
		now:     time.Now,
		windows: make(map[string][]time.Time),
	}
}

// Allow checks whether an event for the given key is allowed right now.
// Returns nil if allowed, ErrRateLimited if the key exceeded its limit or
// the tracking table is full of active keys.
func (rl *RateLimiter) Allow(key string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-time.Minute)

	events, tracked := rl.windows[key]
	events = evict(events, cutoff)

	if !tracked && len(rl.windows) >= rl.config.MaxTracked {
		rl.sweep(cutoff)
		if len(rl.windows) >= rl.config.MaxTracked {
			return ErrRateLimited
		}
	}

	if len(events) >= rl.config.RendersPerMin {
		rl.windows[key] = events
		return ErrRateLimited
	}

	rl.windows[key] = append(events, now)
	return nil
}

// Tracked returns the number of keys currently held in the table.
func (rl *RateLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}

// SweepExpired drops keys whose windows have fully expired and reports how
// many were removed. Intended for periodic housekeeping.
func (rl *RateLimiter) SweepExpired() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	before := len(rl.windows)
	rl.sweep(rl.now().Add(-time.Minute))
	return before - len(rl.windows)
}

// sweep drops keys whose windows have fully expired. Caller holds rl.mu.
func (rl *RateLimiter) sweep(cutoff time.Time) {
	for key, events := range rl.windows {
		if remaining := evict(events, cutoff); len(remaining) == 0 {
			delete(rl.windows, key)
		} else {
			rl.windows[key] = remaining
		}
	}
}

// evict removes events before the cutoff. Events are chronologically ordered.
func evict(events []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(events) && events[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		events = events[i:]
	}
	return events
}
