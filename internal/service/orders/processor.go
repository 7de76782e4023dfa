package orders

import (
	"context"
	"errors"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// Processor maps order events to dispatcher calls.
type Processor struct {
	dispatch DispatchPort
	partners PartnerPort
	factory  *actionFactory
}

// NewProcessor creates a new orders.Processor.
func NewProcessor(dispatch DispatchPort, partners PartnerPort) *Processor {
	p := &Processor{
		dispatch: dispatch,
		partners: partners,
	}
	p.factory = newActionFactory(p.onPaid, p.onCanceled, p.onCompleted)
	return p
}

// Handle processes a single event. Unknown statuses are ignored.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	if p.factory == nil {
		return nil
	}
	fn, ok := p.factory.get(e.Status)
	if !ok {
		return nil
	}
	return fn(ctx, e)
}

// onPaid starts the partner search; a redelivered event hits ErrConflict.
func (p *Processor) onPaid(ctx context.Context, e Event) error {
	err := p.dispatch.Submit(ctx, domain.Attempt{
		OrderID: e.OrderID,
		Origin:  domain.Point{Lat: e.Lat, Lon: e.Lon},
	})
	if errors.Is(err, apperr.ErrConflict) {
		return nil
	}
	return err
}

func (p *Processor) onCanceled(ctx context.Context, e Event) error {
	err := p.dispatch.Cancel(ctx, e.OrderID)
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrConflict) {
		return nil
	}
	return err
}

func (p *Processor) onCompleted(ctx context.Context, e Event) error {
	a, err := p.dispatch.Status(ctx, e.OrderID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if a.Status != domain.AssignmentAssigned || a.PartnerID == "" {
		return nil
	}
	return p.partners.MarkAvailable(ctx, a.PartnerID)
}
