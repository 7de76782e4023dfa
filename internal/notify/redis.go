package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannelPrefix is prepended to the partner id to form its channel.
const DefaultChannelPrefix = "dispatch:partner:"

// RedisGateway publishes envelopes on a per-partner redis channel, which the
// realtime edge (websocket/push) fans out to the partner's device.
type RedisGateway struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisGateway creates a pub/sub gateway.
func NewRedisGateway(client redis.UniversalClient, prefix string) *RedisGateway {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisGateway{client: client, prefix: prefix, now: time.Now}
}

// Channel returns the channel a partner listens on.
func (g *RedisGateway) Channel(partnerID string) string {
	return g.prefix + partnerID
}

// AlertPartner implements Gateway.
func (g *RedisGateway) AlertPartner(ctx context.Context, a Alert) error {
	return g.publish(ctx, alertEnvelope(a, g.now()))
}

// NotifyOutcome implements Gateway.
func (g *RedisGateway) NotifyOutcome(ctx context.Context, o Outcome) error {
	var firstErr error
	for _, e := range takenEnvelopes(o, g.now()) {
		if err := g.publish(ctx, e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (g *RedisGateway) publish(ctx context.Context, e Envelope) error {
	body, err := encode(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Type, err)
	}
	if err := g.client.Publish(ctx, g.Channel(e.PartnerID), body).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", e.Type, e.PartnerID, err)
	}
	return nil
}

var _ Gateway = (*RedisGateway)(nil)
