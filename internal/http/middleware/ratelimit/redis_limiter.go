package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills and takes one token atomically.
// KEYS[1] bucket hash; ARGV: rate/s, burst, now ms, ttl ms.
// Returns {allowed, tokens*1000}.
var tokenBucketScript = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])
local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil then
  tokens = burst
  ts = now
end
if now > ts then
  tokens = math.min(burst, tokens + (now - ts) / 1000 * rate)
  ts = now
end
local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end
redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'ts', tostring(ts))
redis.call('PEXPIRE', KEYS[1], ttl)
return {allowed, math.floor(tokens * 1000)}
`)

// RedisLimiter is a token bucket shared by every instance using the same redis.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	cfg    Config
	clock  Clock
}

// NewRedisLimiter creates a shared limiter. Keys idle for cfg.TTL expire; a
// zero TTL falls back to the time a full refill takes.
func NewRedisLimiter(client redis.Scripter, prefix string, clock Clock, cfg Config) *RedisLimiter {
	if clock == nil {
		clock = RealClock{}
	}
	cfg = cfg.normalized()
	if cfg.TTL <= 0 {
		cfg.TTL = time.Duration(float64(cfg.Burst)/cfg.Rate*float64(time.Second)) + time.Second
	}
	return &RedisLimiter{client: client, prefix: prefix, cfg: cfg, clock: clock}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := tokenBucketScript.Run(ctx, l.client, []string{l.prefix + key},
		l.cfg.Rate, l.cfg.Burst, l.clock.Now().UnixMilli(), l.cfg.TTL.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %q: %w", key, err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit %q: unexpected reply %v", key, res)
	}
	if res[0] == 1 {
		return Decision{Allowed: true}, nil
	}
	return Decision{RetryAfter: l.cfg.wait(float64(res[1]) / 1000)}, nil
}
