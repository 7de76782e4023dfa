//go:generate mockgen -source=contracts.go -destination=partner_mocks_test.go -package=partner

package partner

import (
	"context"

	"courier-dispatch/internal/domain"
)

// availabilityRepository keeps the busy/available status of partners.
type availabilityRepository interface {
	FilterAvailable(ctx context.Context, partnerIDs []string) ([]string, error)
	MarkBusy(ctx context.Context, partnerID string) error
	MarkAvailable(ctx context.Context, partnerID string) error
	Status(ctx context.Context, partnerID string) (domain.PartnerStatus, error)
}
