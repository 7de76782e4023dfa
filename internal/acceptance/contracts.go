// Package acceptance lets the orchestrator wait, with a deadline, for one
// partner to accept one order.
package acceptance

import (
	"context"
	"time"
)

// Waiter blocks until the partner accepts the order, the timeout elapses or ctx
// is cancelled.
//
// Wait returns true exactly when a Signal for the same (order, partner) pair was
// accepted by the waiter, so the caller and the signalling partner always agree
// on the outcome. A cancelled wait returns ctx.Err() unless the signal won.
//
// At most one partner per order is accepted until Forget is called for the
// order; the caller calls it once every wait of the round has returned.
type Waiter interface {
	Wait(ctx context.Context, orderID, partnerID string, timeout time.Duration) (bool, error)
	Forget(ctx context.Context, orderID string) error
}

// Signaler delivers a partner's acceptance. It returns false when no wait is
// pending for the pair (never alerted, timed out, abandoned, already accepted)
// or when another partner already won the order.
type Signaler interface {
	Signal(ctx context.Context, orderID, partnerID string) (bool, error)
}

// Coordinator is both sides of the acceptance handshake.
type Coordinator interface {
	Waiter
	Signaler
}
