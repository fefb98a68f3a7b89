package server

import (
	"sync"
	"time"
)

// rateLimiter is a fixed-window counter keyed by client.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time
	mu     sync.Mutex
	items  map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		now:    func() time.Time { return time.Now().UTC() },
		items:  make(map[string]*rateLimitEntry),
	}
}

// Allow counts one hit for key and reports whether it was within the limit.
func (r *rateLimiter) Allow(key string) bool {
	if key == "" {
		return false
	}

	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.current(key, now)
	if entry.count >= r.limit {
		return false
	}

	entry.count++
	return true
}

// Exceeded reports whether key already used up its window without counting a hit.
func (r *rateLimiter) Exceeded(key string) bool {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.items[key]
	if !ok || now.Sub(entry.windowStart) > r.window {
		return false
	}
	return entry.count >= r.limit
}

func (r *rateLimiter) current(key string, now time.Time) *rateLimitEntry {
	entry := r.items[key]
	if entry == nil || now.Sub(entry.windowStart) > r.window {
		entry = &rateLimitEntry{windowStart: now}
		r.items[key] = entry
	}
	return entry
}
