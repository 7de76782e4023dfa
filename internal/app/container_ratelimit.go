package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/http/middleware/ratelimit"
	"courier-dispatch/internal/logx"
)

type rateLimiterIn struct {
	dig.In
	Config *config.Config
	Clock  ratelimit.Clock
	Redis  redis.UniversalClient `optional:"true"`
}

// newRateLimiter shares buckets through redis when the state backend does.
func newRateLimiter(in rateLimiterIn) ratelimit.Limiter {
	rl := in.Config.RateLimit
	if !rl.Enabled {
		return ratelimit.NopLimiter{}
	}
	cfg := ratelimit.Config{
		Rate:       rl.Rate,
		Burst:      rl.Burst,
		TTL:        rl.TTL,
		MaxBuckets: rl.MaxBuckets,
	}
	if in.Redis != nil {
		return ratelimit.NewRedisLimiter(in.Redis, in.Config.Redis.Prefix+"ratelimit:", in.Clock, cfg)
	}
	return ratelimit.NewTokenBucketLimiter(in.Clock, cfg)
}

func newRateLimitClock() ratelimit.Clock {
	return ratelimit.RealClock{}
}

type rateLimitIn struct {
	dig.In
	Logger  logx.Logger
	Counter prometheus.Counter `name:"rate_limit_exceeded_total"`
	Limiter ratelimit.Limiter
}

func newRateLimitMiddleware(in rateLimitIn) *ratelimit.Middleware {
	return ratelimit.New(in.Logger, in.Counter, in.Limiter)
}
