package domain

import (
	"strings"
	"time"

	"courier-dispatch/internal/apperr"
)

// PartnerStatus is the availability status of a delivery partner.
type PartnerStatus string

// List of possible partner statuses
const (
	PartnerAvailable PartnerStatus = "available"
	PartnerBusy      PartnerStatus = "busy"
)

// Valid checks if the PartnerStatus is valid
func (s PartnerStatus) Valid() bool {
	return s == PartnerAvailable || s == PartnerBusy
}

// PartnerLocation is the last known position of a partner.
type PartnerLocation struct {
	PartnerID   string
	Point       Point
	LastUpdated time.Time
}

// Candidate is a partner returned by a proximity query with its distance to the origin.
type Candidate struct {
	PartnerID  string
	DistanceKm float64
}

// PartnerIDs returns the ids of the given candidates preserving order.
func PartnerIDs(cs []Candidate) []string {
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.PartnerID)
	}
	return ids
}

// NormalizeID trims an identifier and rejects empty ones.
func NormalizeID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", apperr.ErrInvalid
	}
	return id, nil
}
