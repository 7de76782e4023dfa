//go:generate mockgen -source=contracts.go -destination=orders_mocks_test.go -package=orders_test

package orders

import (
	"context"

	"courier-dispatch/internal/domain"
)

// DispatchPort abstracts the dispatcher operations driven by order events.
type DispatchPort interface {
	Submit(ctx context.Context, att domain.Attempt) error
	Cancel(ctx context.Context, orderID string) error
	Status(ctx context.Context, orderID string) (domain.Assignment, error)
}

// PartnerPort releases a partner once their delivery is over.
type PartnerPort interface {
	MarkAvailable(ctx context.Context, partnerID string) error
}
