package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quillpost/blog-api/internal/core/ports"
)

const keyPrefix = "ratelimit:"

// fixedWindowScript increments the bucket, starts its window on the first hit
// and returns {count, remaining_ttl_ms}. A key without TTL (left behind by an
// interrupted call) gets one so it cannot block a client forever.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// FixedWindow is a fixed-window limiter whose buckets live in Redis, so every
// replica shares the same counts. Key expiry plays the role of resetAt.
type FixedWindow struct {
	client redis.Scripter
	limit  int
	window time.Duration
	now    func() time.Time
}

var _ ports.RateLimiter = (*FixedWindow)(nil)

func NewFixedWindow(client redis.Scripter, limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{client: client, limit: limit, window: window, now: time.Now}
}

func (l *FixedWindow) Allow(ctx context.Context, key string) (ports.RateDecision, error) {
	res, err := fixedWindowScript.Run(ctx, l.client,
		[]string{bucketKey(key)},
		l.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return ports.RateDecision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return ports.RateDecision{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	return decide(l.limit, res[0], res[1], l.now()), nil
}

func decide(limit int, count, ttlMillis int64, now time.Time) ports.RateDecision {
	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}
	return ports.RateDecision{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: int(remaining),
		ResetAt:   now.Add(time.Duration(ttlMillis) * time.Millisecond),
	}
}

func bucketKey(key string) string {
	return keyPrefix + key
}
