package app

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/repository"
)

var newPool = repository.NewPool

const attemptTimeout = 3 * time.Second

func connectDbWithRetry(
	ctx context.Context,
	logger logx.Logger,
	dsn string,
	retries int,
	delay time.Duration,
) (*pgxpool.Pool, error) {
	if retries < 1 {
		retries = 1
	}
	attempt := 0
	op := func() (*pgxpool.Pool, error) {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		defer cancel()
		return newPool(attemptCtx, dsn)
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("db connect failed",
			logx.Int("attempt", attempt),
			logx.Int("of", retries),
			logx.Duration("next_in", next),
			logx.Err(err),
		)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(retries-1)), ctx)
	pool, err := backoff.RetryNotifyWithData(op, b, notify)
	if err != nil {
		return nil, fmt.Errorf("db connect failed after %d attempts: %w", attempt, err)
	}
	logger.Info("db connected", logx.Int("attempt", attempt))
	return pool, nil
}
