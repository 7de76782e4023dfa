package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

type hold struct {
	orderID string
	expires time.Time
}

// Memory is a mutex guarded Ledger for single-instance deployments.
type Memory struct {
	mu      sync.Mutex
	global  map[string]hold
	byOrder map[string]map[string]struct{}
	holdTTL time.Duration
	now     func() time.Time
}

// NewMemory creates an in-process ledger. A positive holdTTL bounds how long a
// partner can stay in the global set without being released.
func NewMemory(holdTTL time.Duration) *Memory {
	return &Memory{
		global:  make(map[string]hold),
		byOrder: make(map[string]map[string]struct{}),
		holdTTL: holdTTL,
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	if now != nil {
		m.now = now
	}
	return m
}

// Claim implements Ledger.
func (m *Memory) Claim(_ context.Context, orderID string, candidates []domain.Candidate, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	out := make([]domain.Candidate, 0, limit)
	for _, c := range candidates {
		if len(out) == limit {
			break
		}
		if !m.eligibleLocked(orderID, c.PartnerID, now) {
			continue
		}
		m.markLocked(orderID, c.PartnerID, now)
		out = append(out, c)
	}
	return out, nil
}

// MarkAlerted implements Ledger.
func (m *Memory) MarkAlerted(_ context.Context, orderID string, partnerIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, id := range partnerIDs {
		if h, ok := m.global[id]; ok && h.orderID != orderID && m.live(h, now) {
			return fmt.Errorf("partner %s alerted for order %s: %w", id, h.orderID, apperr.ErrConflict)
		}
	}
	for _, id := range partnerIDs {
		m.markLocked(orderID, id, now)
	}
	return nil
}

// FilterEligible implements Ledger.
func (m *Memory) FilterEligible(_ context.Context, orderID string, candidates []domain.Candidate) ([]domain.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	out := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if m.eligibleLocked(orderID, c.PartnerID, now) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Release implements Ledger.
func (m *Memory) Release(_ context.Context, orderID string, partnerIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range partnerIDs {
		if h, ok := m.global[id]; ok && h.orderID == orderID {
			delete(m.global, id)
		}
	}
	return nil
}

// ClearOrderAlerts implements Ledger.
func (m *Memory) ClearOrderAlerts(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byOrder, orderID)
	return nil
}

// Sweep drops expired global holds and returns how many were removed.
func (m *Memory) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for id, h := range m.global {
		if !m.live(h, now) {
			delete(m.global, id)
			n++
		}
	}
	return n, nil
}

// HeldBy returns the order currently holding partnerID, if any.
func (m *Memory) HeldBy(partnerID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.global[partnerID]
	if !ok || !m.live(h, m.now()) {
		return "", false
	}
	return h.orderID, true
}

// Tried reports whether partnerID is in the per-order set of orderID.
func (m *Memory) Tried(orderID, partnerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byOrder[orderID][partnerID]
	return ok
}

func (m *Memory) eligibleLocked(orderID, partnerID string, now time.Time) bool {
	if _, tried := m.byOrder[orderID][partnerID]; tried {
		return false
	}
	if h, ok := m.global[partnerID]; ok && m.live(h, now) {
		return false
	}
	return true
}

func (m *Memory) markLocked(orderID, partnerID string, now time.Time) {
	var expires time.Time
	if m.holdTTL > 0 {
		expires = now.Add(m.holdTTL)
	}
	m.global[partnerID] = hold{orderID: orderID, expires: expires}

	set, ok := m.byOrder[orderID]
	if !ok {
		set = make(map[string]struct{})
		m.byOrder[orderID] = set
	}
	set[partnerID] = struct{}{}
}

func (m *Memory) live(h hold, now time.Time) bool {
	return h.expires.IsZero() || now.Before(h.expires)
}

var _ Ledger = (*Memory)(nil)
