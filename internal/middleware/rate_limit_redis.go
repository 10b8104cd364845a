package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisRateLimitPrefix = "casebreak:ratelimit:"

// takeScript increments the window counter, starting the window on the first
// hit, and returns the new count with the window's remaining milliseconds.
var takeScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// RedisWindowCounter shares fixed windows between replicas.
type RedisWindowCounter struct {
	client redis.UniversalClient
	scope  string
	rate   int
	window time.Duration
}

// NewRedisWindowCounter counts under scope so limiters sharing a client keep
// separate windows.
func NewRedisWindowCounter(client redis.UniversalClient, scope string, rate int, window time.Duration) *RedisWindowCounter {
	return &RedisWindowCounter{client: client, scope: scope, rate: rate, window: window}
}

func (r *RedisWindowCounter) Take(ctx context.Context, key string, _ time.Time) (Quota, error) {
	res, err := takeScript.Run(ctx, r.client, []string{redisRateLimitPrefix + r.scope + ":" + key}, r.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Quota{}, fmt.Errorf("take rate limit window: %w", err)
	}
	if len(res) != 2 {
		return Quota{}, fmt.Errorf("take rate limit window: unexpected reply %v", res)
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if ttl < 0 {
		ttl = r.window
	}
	return Quota{
		Allowed:   count <= r.rate,
		Remaining: max(0, r.rate-count),
		ResetIn:   ttl,
	}, nil
}
