// Package ratelimit implements per-client fixed-window admission control in
// process memory.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/quillpost/blog-api/internal/core/ports"
)

const (
	DefaultWindow = 60 * time.Second
	DefaultLimit  = 60
)

type bucket struct {
	count   int
	resetAt time.Time
}

// FixedWindow counts requests per key in windows that start at the first
// request after the previous window expired, not at calendar boundaries.
type FixedWindow struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	window  time.Duration
	limit   int
	now     func() time.Time
}

var _ ports.RateLimiter = (*FixedWindow)(nil)

// Option customizes a FixedWindow.
type Option func(*FixedWindow)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *FixedWindow) { l.now = now }
}

// NewFixedWindow admits up to limit requests per key per window.
// Non-positive arguments fall back to DefaultLimit and DefaultWindow.
func NewFixedWindow(limit int, window time.Duration, opts ...Option) *FixedWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &FixedWindow{
		buckets: make(map[string]*bucket),
		window:  window,
		limit:   limit,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow counts the request and reports whether it fits the current window.
// Rejected requests still count.
func (l *FixedWindow) Allow(_ context.Context, key string) (ports.RateDecision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{resetAt: now.Add(l.window)}
		l.buckets[key] = b
	}
	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(l.window)
	}
	b.count++

	remaining := l.limit - b.count
	if remaining < 0 {
		remaining = 0
	}
	return ports.RateDecision{
		Allowed:   b.count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   b.resetAt,
	}, nil
}

// Cleanup drops buckets whose window has already expired. A dropped bucket
// is indistinguishable from an expired one on the next request.
func (l *FixedWindow) Cleanup() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, b := range l.buckets {
		if now.After(b.resetAt) {
			delete(l.buckets, k)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked keys.
func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// StartJanitor runs Cleanup every interval until ctx is cancelled.
func (l *FixedWindow) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}
