package rest

import (
	"sync"
	"time"
)

// rateLimiter is a sliding-window counter keyed by mobile number. It
// caps how often one number can request an SMS code.
type rateLimiter struct {
	mu       sync.Mutex
	history  map[string][]time.Time
	limit    int
	interval time.Duration
}

func newRateLimiter(limit int, interval time.Duration) *rateLimiter {
	if limit <= 0 {
		limit = 3
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &rateLimiter{
		history:  make(map[string][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *rateLimiter) Allow(mobile string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[mobile]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) >= rl.limit {
		rl.history[mobile] = fresh
		return false
	}
	rl.history[mobile] = append(fresh, now)
	return true
}
