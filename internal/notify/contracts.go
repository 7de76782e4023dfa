// Package notify pushes order alerts and "order taken" notices to partners.
// Delivery is best effort: callers log failures and never block on them.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message types carried in Envelope.Type.
const (
	TypeOrderAlert = "order_alert"
	TypeOrderTaken = "order_taken"
)

// Alert offers an order to a single partner.
type Alert struct {
	PartnerID  string
	OrderID    string
	DistanceKm float64
	Deadline   time.Time
}

// Outcome tells losing candidates that the order is no longer available.
// AcceptedPartnerID is empty when nobody accepted.
type Outcome struct {
	OrderID           string
	PartnerIDs        []string
	AcceptedPartnerID string
}

// Gateway is the notification capability used by the orchestrator.
type Gateway interface {
	AlertPartner(ctx context.Context, a Alert) error
	NotifyOutcome(ctx context.Context, o Outcome) error
}

// Envelope is the wire payload for every transport.
type Envelope struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	OrderID           string    `json:"order_id"`
	PartnerID         string    `json:"partner_id"`
	DistanceKm        float64   `json:"distance_km,omitempty"`
	Deadline          time.Time `json:"deadline,omitempty"`
	AcceptedPartnerID string    `json:"accepted_partner_id,omitempty"`
	SentAt            time.Time `json:"sent_at"`
}

func alertEnvelope(a Alert, now time.Time) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Type:       TypeOrderAlert,
		OrderID:    a.OrderID,
		PartnerID:  a.PartnerID,
		DistanceKm: a.DistanceKm,
		Deadline:   a.Deadline.UTC(),
		SentAt:     now.UTC(),
	}
}

func takenEnvelopes(o Outcome, now time.Time) []Envelope {
	out := make([]Envelope, 0, len(o.PartnerIDs))
	for _, pid := range o.PartnerIDs {
		if pid == o.AcceptedPartnerID {
			continue
		}
		out = append(out, Envelope{
			ID:                uuid.NewString(),
			Type:              TypeOrderTaken,
			OrderID:           o.OrderID,
			PartnerID:         pid,
			AcceptedPartnerID: o.AcceptedPartnerID,
			SentAt:            now.UTC(),
		})
	}
	return out
}

func encode(e Envelope) ([]byte, error) {
	return json.Marshal(e)
}
