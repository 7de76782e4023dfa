package acceptance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"courier-dispatch/internal/apperr"
)

// DefaultPrefix namespaces acceptance keys and channels.
const DefaultPrefix = "dispatch:accept:"

const (
	statePending  = "pending"
	stateAccepted = "accepted"
)

// The state key moves pending -> accepted (Signal) or pending -> expired
// (timeout/cancel) exactly once; whoever loses the race observes the winner.
// The order's winner key is set NX, so only the first signal of a round wins.
var acceptScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) ~= 'pending' then
	return 0
end
if not redis.call('SET', KEYS[2], ARGV[1], 'NX', 'PX', ARGV[2]) then
	return 0
end
redis.call('SET', KEYS[1], 'accepted', 'PX', ARGV[2])
return 1
`)

var expireScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v == 'pending' then
	redis.call('SET', KEYS[1], 'expired', 'PX', ARGV[1])
	return 0
end
if v == 'accepted' then
	return 1
end
return 0
`)

// RedisCoordinator is a Coordinator shared across instances: the state key
// carries the single-winner decision and pub/sub wakes the waiter early.
//
// Keys of one order share a hash tag so the scripts run on a single cluster slot.
type RedisCoordinator struct {
	client redis.UniversalClient
	prefix string
	linger time.Duration
}

// NewRedisCoordinator creates a redis coordinator. linger is how long resolved
// state is kept so late signals are recognised as late.
func NewRedisCoordinator(client redis.UniversalClient, prefix string, linger time.Duration) *RedisCoordinator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if linger <= 0 {
		linger = 10 * time.Minute
	}
	return &RedisCoordinator{client: client, prefix: prefix, linger: linger}
}

func (r *RedisCoordinator) orderTag(orderID string) string {
	return r.prefix + "{" + orderID + "}"
}

func (r *RedisCoordinator) stateKey(orderID, partnerID string) string {
	return r.orderTag(orderID) + ":state:" + partnerID
}

func (r *RedisCoordinator) winnerKey(orderID string) string {
	return r.orderTag(orderID) + ":winner"
}

func (r *RedisCoordinator) channel(orderID, partnerID string) string {
	return r.prefix + "accepted:" + orderID + ":" + partnerID
}

// Wait implements Waiter.
func (r *RedisCoordinator) Wait(ctx context.Context, orderID, partnerID string, timeout time.Duration) (bool, error) {
	key := r.stateKey(orderID, partnerID)
	ok, err := r.client.SetNX(ctx, key, statePending, timeout+r.linger).Result()
	if err != nil {
		return false, fmt.Errorf("register wait %s/%s: %w", orderID, partnerID, err)
	}
	if !ok {
		return false, fmt.Errorf("wait for %s/%s already registered: %w", orderID, partnerID, apperr.ErrConflict)
	}

	sub := r.client.Subscribe(ctx, r.channel(orderID, partnerID))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return r.finish(ctx, key, err)
	}

	// a signal may have landed between SETNX and SUBSCRIBE
	if v, err := r.client.Get(ctx, key).Result(); err == nil && v == stateAccepted {
		return true, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-sub.Channel():
		return true, nil
	case <-timer.C:
		return r.finish(ctx, key, nil)
	case <-ctx.Done():
		return r.finish(ctx, key, ctx.Err())
	}
}

// finish closes the wait; cause is returned unless a signal won the race.
func (r *RedisCoordinator) finish(ctx context.Context, key string, cause error) (bool, error) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	won, err := expireScript.Run(rctx, r.client, []string{key}, r.linger.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("resolve wait: %w", err)
	}
	if won == 1 {
		return true, nil
	}
	return false, cause
}

// Signal implements Signaler.
func (r *RedisCoordinator) Signal(ctx context.Context, orderID, partnerID string) (bool, error) {
	keys := []string{r.stateKey(orderID, partnerID), r.winnerKey(orderID)}
	won, err := acceptScript.Run(ctx, r.client, keys, partnerID, r.linger.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("signal %s/%s: %w", orderID, partnerID, err)
	}
	if won != 1 {
		return false, nil
	}
	// a lost publish only delays the waiter: its resolve step reads the accepted state
	_ = r.client.Publish(ctx, r.channel(orderID, partnerID), partnerID).Err()
	return true, nil
}

// Forget implements Waiter.
func (r *RedisCoordinator) Forget(ctx context.Context, orderID string) error {
	if err := r.client.Del(ctx, r.winnerKey(orderID)).Err(); err != nil {
		return fmt.Errorf("forget winner of %s: %w", orderID, err)
	}
	return nil
}

// Pending reports whether a wait is registered and unresolved.
func (r *RedisCoordinator) Pending(ctx context.Context, orderID, partnerID string) (bool, error) {
	v, err := r.client.Get(ctx, r.stateKey(orderID, partnerID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == statePending, nil
}

var _ Coordinator = (*RedisCoordinator)(nil)
