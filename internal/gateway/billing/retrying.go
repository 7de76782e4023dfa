package billing

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"courier-dispatch/internal/logx"
)

type gateway interface {
	Refund(ctx context.Context, orderID string) (bool, error)
	MarkDeliveryAssigned(ctx context.Context, orderID, partnerID string) error
}

type counter interface {
	Inc()
}

// RetryConfig describes RetryingGateway behaviour.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGateway retries transient billing failures with exponential backoff.
type RetryingGateway struct {
	next    gateway
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingGateway returns nil when next is nil.
func NewRetryingGateway(next gateway, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &RetryingGateway{next: next, logger: logger, retries: retries, cfg: cfg}
}

// Refund retries next.Refund.
func (g *RetryingGateway) Refund(ctx context.Context, orderID string) (bool, error) {
	var refunded bool
	err := g.do(ctx, "Refund", func() error {
		ok, err := g.next.Refund(ctx, orderID)
		refunded = ok
		return err
	})
	return refunded, err
}

// MarkDeliveryAssigned retries next.MarkDeliveryAssigned.
func (g *RetryingGateway) MarkDeliveryAssigned(ctx context.Context, orderID, partnerID string) error {
	return g.do(ctx, "MarkDeliveryAssigned", func() error {
		return g.next.MarkDeliveryAssigned(ctx, orderID, partnerID)
	})
}

func (g *RetryingGateway) do(ctx context.Context, method string, op func() error) error {
	attempt := 0
	b := backoff.WithContext(
		backoff.WithMaxRetries(g.policy(), uint64(g.cfg.MaxAttempts-1)),
		ctx,
	)
	return backoff.RetryNotify(func() error {
		attempt++
		err := op()
		if err != nil && (ctx.Err() != nil || !isRetryable(err)) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, delay time.Duration) {
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("billing gateway retry",
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
	})
}

func (g *RetryingGateway) policy() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.cfg.BaseDelay
	b.MaxInterval = max(g.cfg.MaxDelay, g.cfg.BaseDelay)
	b.MaxElapsedTime = 0
	b.RandomizationFactor = 0
	return b
}

// isRetryable accepts 5xx/429 responses and transport failures.
func isRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var ue *url.Error
	return errors.As(err, &ue)
}
