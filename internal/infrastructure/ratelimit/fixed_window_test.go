package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func TestFixedWindow_RejectsOverCapacity(t *testing.T) {
	clock := newClock()
	l := NewFixedWindow(60, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	for i := 1; i <= 60; i++ {
		d, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 60-i, d.Remaining)
		clock.Advance(500 * time.Millisecond)
	}

	d, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, 60, d.Limit)
}

func TestFixedWindow_ResetsAfterWindow(t *testing.T) {
	clock := newClock()
	l := NewFixedWindow(60, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	start := clock.Now()
	for i := 0; i < 61; i++ {
		_, _ = l.Allow(ctx, "k")
	}

	// Exactly at resetAt the window is still live.
	clock.Advance(time.Minute)
	d, _ := l.Allow(ctx, "k")
	assert.False(t, d.Allowed)
	assert.Equal(t, start.Add(time.Minute), d.ResetAt)

	clock.Advance(time.Millisecond)
	d, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 59, d.Remaining, "count restarts at 1")
	assert.Equal(t, clock.Now().Add(time.Minute), d.ResetAt, "window restarts from this request")
}

func TestFixedWindow_KeysAreIndependent(t *testing.T) {
	l := NewFixedWindow(1, time.Minute, WithClock(newClock().Now))
	ctx := context.Background()

	a, _ := l.Allow(ctx, "a")
	b, _ := l.Allow(ctx, "b")
	a2, _ := l.Allow(ctx, "a")

	assert.True(t, a.Allowed)
	assert.True(t, b.Allowed)
	assert.False(t, a2.Allowed)
}

func TestFixedWindow_Defaults(t *testing.T) {
	l := NewFixedWindow(0, 0)
	assert.Equal(t, DefaultLimit, l.limit)
	assert.Equal(t, DefaultWindow, l.window)
}

func TestFixedWindow_ConcurrentSameKey(t *testing.T) {
	l := NewFixedWindow(50, time.Minute, WithClock(newClock().Now))
	ctx := context.Background()

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d, _ := l.Allow(ctx, "same"); d.Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 50, admitted.Load())
}

func TestFixedWindow_Cleanup(t *testing.T) {
	clock := newClock()
	l := NewFixedWindow(5, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	_, _ = l.Allow(ctx, "old")
	clock.Advance(30 * time.Second)
	_, _ = l.Allow(ctx, "fresh")
	clock.Advance(31 * time.Second)

	assert.Equal(t, 1, l.Cleanup())
	assert.Equal(t, 1, l.Len())

	d, _ := l.Allow(ctx, "old")
	assert.Equal(t, 4, d.Remaining)
}

func TestFixedWindow_JanitorStopsWithContext(t *testing.T) {
	clock := newClock()
	l := NewFixedWindow(5, time.Millisecond, WithClock(clock.Now))
	_, _ = l.Allow(context.Background(), "k")
	clock.Advance(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l.StartJanitor(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)
}
