package ratelimit

import (
	"sync"
	"time"
)

// RateLimiter enforces per-caller request limits. Each key (user id, or
// client IP for anonymous requests) gets its own sliding windows.
type RateLimiter struct {
	requestsPerMinute int
	requestsPerHour   int
	enabled           bool

	// Request tracking per key
	keys map[string]*keyWindows
	mu   sync.Mutex
}

type keyWindows struct {
	minuteWindow []time.Time
	hourWindow   []time.Time
}

// NewRateLimiter creates a new rate limiter with the given limits
func NewRateLimiter(requestsPerMinute, requestsPerHour int, enabled bool) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		enabled:           enabled,
		keys:              make(map[string]*keyWindows),
	}
}

// AllowRequest checks if a request from key is allowed.
// Returns true if allowed, false if rate limit exceeded.
func (rl *RateLimiter) AllowRequest(key string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	kw, ok := rl.keys[key]
	if !ok {
		kw = &keyWindows{}
		rl.keys[key] = kw
	}

	// Clean up old entries
	kw.cleanup(now)

	// Check limits
	if rl.requestsPerMinute > 0 && len(kw.minuteWindow) >= rl.requestsPerMinute {
		return false
	}
	if rl.requestsPerHour > 0 && len(kw.hourWindow) >= rl.requestsPerHour {
		return false
	}

	// Record the request
	kw.minuteWindow = append(kw.minuteWindow, now)
	kw.hourWindow = append(kw.hourWindow, now)

	return true
}

// cleanup removes expired entries from the time windows
func (kw *keyWindows) cleanup(now time.Time) {
	kw.minuteWindow = filterTimes(kw.minuteWindow, now.Add(-1*time.Minute))
	kw.hourWindow = filterTimes(kw.hourWindow, now.Add(-1*time.Hour))
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	result := make([]time.Time, 0, len(times))
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}

// Prune drops keys with no activity in the last hour. Called periodically
// so the key map does not grow without bound.
func (rl *RateLimiter) Prune() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	pruned := 0
	for key, kw := range rl.keys {
		kw.cleanup(now)
		if len(kw.hourWindow) == 0 {
			delete(rl.keys, key)
			pruned++
		}
	}
	return pruned
}

// Stats contains rate limiter statistics
type Stats struct {
	Enabled            bool `json:"enabled"`
	ActiveKeys         int  `json:"active_keys"`
	RequestsLastMinute int  `json:"requests_last_minute"`
	RequestsLastHour   int  `json:"requests_last_hour"`
	LimitPerMinute     int  `json:"limit_per_minute"`
	LimitPerHour       int  `json:"limit_per_hour"`
}

// GetStats returns aggregate rate limiter statistics across all keys
func (rl *RateLimiter) GetStats() Stats {
	if !rl.enabled {
		return Stats{Enabled: false}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	stats := Stats{
		Enabled:        true,
		LimitPerMinute: rl.requestsPerMinute,
		LimitPerHour:   rl.requestsPerHour,
	}

	for _, kw := range rl.keys {
		kw.cleanup(now)
		stats.RequestsLastMinute += len(kw.minuteWindow)
		stats.RequestsLastHour += len(kw.hourWindow)
	}
	stats.ActiveKeys = len(rl.keys)

	return stats
}

// Reset clears all tracked requests (useful for testing)
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.keys = make(map[string]*keyWindows)
}
