package acceptance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courier-dispatch/internal/apperr"
)

type waitKey struct {
	orderID   string
	partnerID string
}

type pendingWait struct {
	done     chan struct{}
	accepted bool
}

// Hub is the in-process Coordinator: one-shot listeners keyed by (order, partner)
// and the accepted partner of every order with a round in progress.
type Hub struct {
	mu      sync.Mutex
	pending map[waitKey]*pendingWait
	winners map[string]string
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		pending: make(map[waitKey]*pendingWait),
		winners: make(map[string]string),
	}
}

// Wait implements Waiter.
func (h *Hub) Wait(ctx context.Context, orderID, partnerID string, timeout time.Duration) (bool, error) {
	k := waitKey{orderID: orderID, partnerID: partnerID}

	h.mu.Lock()
	if _, dup := h.pending[k]; dup {
		h.mu.Unlock()
		return false, fmt.Errorf("wait for %s/%s already pending: %w", orderID, partnerID, apperr.ErrConflict)
	}
	w := &pendingWait{done: make(chan struct{})}
	h.pending[k] = w
	h.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-w.done:
		return true, nil
	case <-timer.C:
		return h.resolve(k, w), nil
	case <-ctx.Done():
		if h.resolve(k, w) {
			return true, nil
		}
		return false, ctx.Err()
	}
}

// Signal implements Signaler.
func (h *Hub) Signal(_ context.Context, orderID, partnerID string) (bool, error) {
	k := waitKey{orderID: orderID, partnerID: partnerID}

	h.mu.Lock()
	defer h.mu.Unlock()
	w, ok := h.pending[k]
	if !ok {
		return false, nil
	}
	if _, taken := h.winners[orderID]; taken {
		return false, nil
	}
	h.winners[orderID] = partnerID
	delete(h.pending, k)
	w.accepted = true
	close(w.done)
	return true, nil
}

// Forget implements Waiter.
func (h *Hub) Forget(_ context.Context, orderID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.winners, orderID)
	return nil
}

// Winner returns the accepted partner of the order's current round.
func (h *Hub) Winner(orderID string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := h.winners[orderID]
	return id, ok
}

// Pending reports whether a wait is registered for the pair.
func (h *Hub) Pending(orderID, partnerID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.pending[waitKey{orderID: orderID, partnerID: partnerID}]
	return ok
}

// resolve ends a wait without acceptance unless a signal got there first.
func (h *Hub) resolve(k waitKey, w *pendingWait) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if w.accepted {
		return true
	}
	if h.pending[k] == w {
		delete(h.pending, k)
	}
	return false
}

var _ Coordinator = (*Hub)(nil)
