package partner

import (
	"context"
	"fmt"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/proximity"
)

// NearbyQuery selects partners around a point.
type NearbyQuery struct {
	Origin        domain.Point
	Radius        float64
	Unit          domain.Unit
	OnlyAvailable bool
}

// Service coordinates partner locations and availability.
type Service struct {
	index            proximity.Index
	repo             availabilityRepository
	operationTimeout time.Duration
}

// NewService creates and configures a partner Service.
func NewService(index proximity.Index, r availabilityRepository, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{index: index, repo: r, operationTimeout: timeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// UpdateLocation records the partner's current position.
func (s *Service) UpdateLocation(ctx context.Context, partnerID string, p domain.Point) error {
	id, err := domain.NormalizeID(partnerID)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.index.Upsert(ctx, id, p)
}

// GoOffline drops the partner from proximity search.
func (s *Service) GoOffline(ctx context.Context, partnerID string) error {
	id, err := domain.NormalizeID(partnerID)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.index.Remove(ctx, id)
}

// MarkAvailable returns the partner to the dispatch pool after a delivery.
func (s *Service) MarkAvailable(ctx context.Context, partnerID string) error {
	id, err := domain.NormalizeID(partnerID)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.MarkAvailable(ctx, id)
}

// SetStatus sets the availability status explicitly.
func (s *Service) SetStatus(ctx context.Context, partnerID string, status domain.PartnerStatus) error {
	id, err := domain.NormalizeID(partnerID)
	if err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("partner status %q: %w", status, apperr.ErrInvalid)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if status == domain.PartnerBusy {
		return s.repo.MarkBusy(ctx, id)
	}
	return s.repo.MarkAvailable(ctx, id)
}

// Status returns the partner's availability status.
func (s *Service) Status(ctx context.Context, partnerID string) (domain.PartnerStatus, error) {
	id, err := domain.NormalizeID(partnerID)
	if err != nil {
		return "", err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.Status(ctx, id)
}

// Nearby lists partners within the radius, nearest first.
func (s *Service) Nearby(ctx context.Context, q NearbyQuery) ([]domain.Candidate, error) {
	if q.Unit == "" {
		q.Unit = domain.UnitKilometers
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	cands, err := s.index.QueryNearby(ctx, q.Origin, q.Radius, q.Unit)
	if err != nil {
		return nil, err
	}
	if !q.OnlyAvailable || len(cands) == 0 {
		return cands, nil
	}
	ids, err := s.repo.FilterAvailable(ctx, domain.PartnerIDs(cands))
	if err != nil {
		return nil, fmt.Errorf("filter available partners: %w", err)
	}
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	out := cands[:0]
	for _, c := range cands {
		if _, ok := keep[c.PartnerID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}
