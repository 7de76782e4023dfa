// Package ledger tracks which partners have been alerted, per order and globally.
//
// A partner held in the global set is "in play" for exactly one order and must
// not be offered another order until released or until the hold expires. The
// per-order set remembers every partner already tried for an order so retries
// never re-alert them.
package ledger

import (
	"context"

	"courier-dispatch/internal/domain"
)

// Ledger is the alert ledger used by the orchestrator. Implementations must be
// safe for concurrent use by many orders.
type Ledger interface {
	// Claim atomically filters candidates (keeping their order) against both
	// sets and marks up to limit of the survivors alerted for orderID.
	Claim(ctx context.Context, orderID string, candidates []domain.Candidate, limit int) ([]domain.Candidate, error)
	// MarkAlerted adds partners to both sets; it fails with apperr.ErrConflict
	// if any of them is held for another order.
	MarkAlerted(ctx context.Context, orderID string, partnerIDs ...string) error
	// FilterEligible drops candidates present in the order set or the global set.
	FilterEligible(ctx context.Context, orderID string, candidates []domain.Candidate) ([]domain.Candidate, error)
	// Release removes global holds owned by orderID; per-order entries stay.
	Release(ctx context.Context, orderID string, partnerIDs ...string) error
	// ClearOrderAlerts drops the per-order set.
	ClearOrderAlerts(ctx context.Context, orderID string) error
}
