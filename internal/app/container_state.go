package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"courier-dispatch/internal/acceptance"
	"courier-dispatch/internal/config"
	"courier-dispatch/internal/jobs"
	"courier-dispatch/internal/ledger"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/proximity"
)

var errRedisRequired = errors.New("redis state backend needs a redis client")

func registerState(container *dig.Container) error {
	return provideAll(container, provideRedis, provideState)
}

// provideRedis connects only for the redis backend; memory returns nil.
func provideRedis(ctx context.Context, cfg *config.Config, logger logx.Logger) (redis.UniversalClient, error) {
	if cfg.Backend != config.BackendRedis {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}
	logger.Info("redis connected", logx.String("addr", cfg.Redis.Addr))
	return client, nil
}

type stateIn struct {
	dig.In
	Config *config.Config
	Logger logx.Logger
	Redis  redis.UniversalClient `optional:"true"`
}

type stateOut struct {
	dig.Out
	Index    proximity.Index
	Ledger   ledger.Ledger
	Waiter   acceptance.Waiter
	Signaler acceptance.Signaler
	// Sweeper is nil when holds expire on their own.
	Sweeper jobs.Sweeper
}

// provideState picks the proximity index, alert ledger and acceptance
// coordinator for the configured backend. Memory state is per process.
func provideState(in stateIn) (stateOut, error) {
	cfg := in.Config
	switch cfg.Backend {
	case config.BackendRedis:
		if in.Redis == nil {
			return stateOut{}, errRedisRequired
		}
		coord := acceptance.NewRedisCoordinator(in.Redis, cfg.Redis.Prefix+"accept:", 0)
		in.Logger.Info("state backend selected", logx.String("backend", cfg.Backend))
		return stateOut{
			Index:    proximity.NewRedisIndex(in.Redis, cfg.Redis.Prefix+"partners:geo", cfg.Dispatch.LocationTTL),
			Ledger:   ledger.NewRedis(in.Redis, cfg.Redis.Prefix+"alerts:", cfg.Dispatch.AlertTTL, 0),
			Waiter:   coord,
			Signaler: coord,
		}, nil
	case config.BackendMemory, "":
		led := ledger.NewMemory(cfg.Dispatch.AlertTTL)
		hub := acceptance.NewHub()
		in.Logger.Info("state backend selected", logx.String("backend", config.BackendMemory))
		return stateOut{
			Index:    proximity.NewMemoryIndex(cfg.Dispatch.LocationTTL),
			Ledger:   led,
			Waiter:   hub,
			Signaler: hub,
			Sweeper:  led,
		}, nil
	default:
		return stateOut{}, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
}
