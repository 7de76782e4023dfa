package handlers

import (
	"context"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/service/dispatch"
	"courier-dispatch/internal/service/partner"
)

type partnerUsecase interface {
	UpdateLocation(ctx context.Context, partnerID string, p domain.Point) error
	GoOffline(ctx context.Context, partnerID string) error
	MarkAvailable(ctx context.Context, partnerID string) error
	Nearby(ctx context.Context, q partner.NearbyQuery) ([]domain.Candidate, error)
}

// NewPartnerUsecase wires a partner Service into a partnerUsecase.
func NewPartnerUsecase(svc *partner.Service) partnerUsecase {
	return svc
}

type dispatchUsecase interface {
	Submit(ctx context.Context, att domain.Attempt) error
	Accept(ctx context.Context, orderID, partnerID string) error
	Cancel(ctx context.Context, orderID string) error
	Status(ctx context.Context, orderID string) (domain.Assignment, error)
}

// NewDispatchUsecase wires a Dispatcher into a dispatchUsecase.
func NewDispatchUsecase(d *dispatch.Dispatcher) dispatchUsecase {
	return d
}
