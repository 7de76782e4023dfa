package proximity

import (
	"context"
	"sort"
	"sync"
	"time"

	"courier-dispatch/internal/domain"
)

// MemoryIndex is an in-process Index for single-instance deployments and tests.
type MemoryIndex struct {
	mu        sync.RWMutex
	locations map[string]domain.PartnerLocation
	ttl       time.Duration
	now       func() time.Time
}

// NewMemoryIndex creates an index whose entries expire ttl after their last upsert.
func NewMemoryIndex(ttl time.Duration) *MemoryIndex {
	return &MemoryIndex{
		locations: make(map[string]domain.PartnerLocation),
		ttl:       ttl,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (m *MemoryIndex) WithClock(now func() time.Time) *MemoryIndex {
	if now != nil {
		m.now = now
	}
	return m
}

// Upsert records or refreshes a partner location.
func (m *MemoryIndex) Upsert(_ context.Context, partnerID string, p domain.Point) error {
	id, err := domain.NormalizeID(partnerID)
	if err != nil {
		return err
	}
	if err := validatePoint(p); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[id] = domain.PartnerLocation{PartnerID: id, Point: p, LastUpdated: m.now()}
	return nil
}

// QueryNearby returns non-expired partners within radius sorted by distance.
func (m *MemoryIndex) QueryNearby(
	_ context.Context,
	origin domain.Point,
	radius float64,
	unit domain.Unit,
) ([]domain.Candidate, error) {
	if err := validateQuery(origin, radius, unit); err != nil {
		return nil, err
	}
	radiusKm := unit.ToKilometers(radius)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Candidate, 0)
	for id, loc := range m.locations {
		if m.expired(loc, now) {
			delete(m.locations, id)
			continue
		}
		d := domain.DistanceKm(origin, loc.Point)
		if d <= radiusKm {
			out = append(out, domain.Candidate{PartnerID: id, DistanceKm: d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm == out[j].DistanceKm {
			return out[i].PartnerID < out[j].PartnerID
		}
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out, nil
}

// Remove deletes a partner from the index.
func (m *MemoryIndex) Remove(_ context.Context, partnerID string) error {
	id, err := domain.NormalizeID(partnerID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locations, id)
	return nil
}

func (m *MemoryIndex) expired(loc domain.PartnerLocation, now time.Time) bool {
	return m.ttl > 0 && !now.Before(loc.LastUpdated.Add(m.ttl))
}

var _ Index = (*MemoryIndex)(nil)
