//go:generate mockgen -source=contracts.go -destination=dispatch_mocks_test.go -package=dispatch

package dispatch

import (
	"context"
	"time"

	"courier-dispatch/internal/domain"
)

// AssignmentStore persists the assignment record of an order. Transition is a
// compare-and-set from searching; it reports false when the record is already
// terminal, which makes it the single-winner guard for an order.
type AssignmentStore interface {
	Begin(ctx context.Context, orderID string) error
	Transition(ctx context.Context, a domain.Assignment) (bool, error)
	Get(ctx context.Context, orderID string) (domain.Assignment, error)
}

// Billing is the order/payment collaborator.
type Billing interface {
	Refund(ctx context.Context, orderID string) (bool, error)
	MarkDeliveryAssigned(ctx context.Context, orderID, partnerID string) error
}

// Availability is the partner availability store.
type Availability interface {
	FilterAvailable(ctx context.Context, partnerIDs []string) ([]string, error)
	MarkBusy(ctx context.Context, partnerID string) error
	MarkAvailable(ctx context.Context, partnerID string) error
}

// Metrics receives orchestrator observations.
type Metrics interface {
	RoundStarted()
	WaitFinished(d time.Duration, accepted bool)
	FlowFinished(state domain.State)
	ActiveFlows(n int)
}

type nopMetrics struct{}

func (nopMetrics) RoundStarted() {}
func (nopMetrics) WaitFinished(time.Duration, bool) {}
func (nopMetrics) FlowFinished(domain.State) {}
func (nopMetrics) ActiveFlows(int) {}
