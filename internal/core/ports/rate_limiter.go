package ports

import (
	"context"
	"time"
)

// RateDecision is the outcome of a single admission check.
type RateDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the time left until the client's window resets.
func (d RateDecision) RetryAfter(now time.Time) time.Duration {
	if d.ResetAt.Before(now) {
		return 0
	}
	return d.ResetAt.Sub(now)
}

// RateLimiter counts one request for key and decides whether to admit it.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateDecision, error)
}
