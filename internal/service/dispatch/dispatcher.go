package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"courier-dispatch/internal/acceptance"
	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

var (
	// ErrShuttingDown is returned by Submit after Shutdown was called.
	ErrShuttingDown = errors.New("dispatcher is shutting down")

	errOrderCancelled = errors.New("order cancelled")
)

type assigner interface {
	Assign(ctx context.Context, att domain.Attempt) (domain.Outcome, error)
}

// Dispatcher runs assignment flows in the background, at most one per order and
// at most maxConcurrent at a time.
type Dispatcher struct {
	orch     assigner
	store    AssignmentStore
	signaler acceptance.Signaler
	sem      *semaphore.Weighted
	metrics  Metrics
	logger   logx.Logger

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu     sync.Mutex
	flows  map[string]context.CancelCauseFunc
	closed bool
	done   func(domain.Outcome)
}

// NewDispatcher creates a dispatcher. Metrics may be nil.
func NewDispatcher(
	orch *Orchestrator,
	store AssignmentStore,
	signaler acceptance.Signaler,
	maxConcurrent int,
	metrics Metrics,
	logger logx.Logger,
) *Dispatcher {
	return newDispatcher(orch, store, signaler, maxConcurrent, metrics, logger)
}

func newDispatcher(
	orch assigner,
	store AssignmentStore,
	signaler acceptance.Signaler,
	maxConcurrent int,
	metrics Metrics,
	logger logx.Logger,
) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 64
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = logx.Nop()
	}
	base, stop := context.WithCancel(context.Background())
	return &Dispatcher{
		orch:     orch,
		store:    store,
		signaler: signaler,
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
		metrics:  metrics,
		logger:   logger,
		base:     base,
		stop:     stop,
		flows:    make(map[string]context.CancelCauseFunc),
		done:     func(domain.Outcome) {},
	}
}

// OnOutcome registers a callback invoked after every finished flow.
func (d *Dispatcher) OnOutcome(fn func(domain.Outcome)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.done = fn
}

// Submit starts an assignment flow for a paid order. It blocks while the
// concurrency bound is reached and fails with apperr.ErrConflict when the order
// already has a flow or an assignment record.
func (d *Dispatcher) Submit(ctx context.Context, att domain.Attempt) error {
	att, err := att.Validate()
	if err != nil {
		return err
	}
	flowCtx, cancel, err := d.reserve(att.OrderID)
	if err != nil {
		return err
	}
	abandon := func() {
		d.forget(att.OrderID)
		cancel(nil)
		d.wg.Done()
	}
	if err := d.store.Begin(ctx, att.OrderID); err != nil {
		abandon()
		return err
	}
	if err := d.sem.Acquire(ctx, 1); err != nil {
		abandon()
		if _, terr := d.store.Transition(context.WithoutCancel(ctx), domain.Assignment{
			OrderID: att.OrderID,
			Status:  domain.AssignmentCancelled,
		}); terr != nil {
			d.logger.Warn("cancelled status not stored", logx.String("order_id", att.OrderID), logx.Err(terr))
		}
		return fmt.Errorf("acquire dispatch slot: %w", err)
	}

	go func() {
		defer d.wg.Done()
		defer d.sem.Release(1)
		defer cancel(nil)
		d.run(flowCtx, att)
	}()
	return nil
}

func (d *Dispatcher) run(ctx context.Context, att domain.Attempt) {
	defer d.forget(att.OrderID)
	out, err := d.orch.Assign(ctx, att)
	if err != nil {
		d.logger.Error("assignment flow failed", logx.String("order_id", att.OrderID), logx.Err(err))
		return
	}
	d.logger.Info("assignment flow finished",
		logx.String("order_id", out.OrderID),
		logx.String("state", string(out.State)),
		logx.String("partner_id", out.PartnerID),
		logx.Int("rounds", out.Rounds),
		logx.Int("retries", out.Retries),
		logx.Bool("refunded", out.Refunded),
	)
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	done(out)
}

// reserve registers the flow before any store call, so two local submits for
// one order cannot both reach Begin.
func (d *Dispatcher) reserve(orderID string) (context.Context, context.CancelCauseFunc, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, nil, ErrShuttingDown
	}
	if _, ok := d.flows[orderID]; ok {
		return nil, nil, fmt.Errorf("order %s already dispatching: %w", orderID, apperr.ErrConflict)
	}
	ctx, cancel := context.WithCancelCause(d.base)
	d.flows[orderID] = cancel
	d.wg.Add(1)
	d.metrics.ActiveFlows(len(d.flows))
	return ctx, cancel, nil
}

func (d *Dispatcher) forget(orderID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.flows, orderID)
	d.metrics.ActiveFlows(len(d.flows))
}

// Accept delivers a partner's acceptance. It fails with apperr.ErrTooLate when
// no wait is pending for the pair.
func (d *Dispatcher) Accept(ctx context.Context, orderID, partnerID string) error {
	orderID, err := domain.NormalizeID(orderID)
	if err != nil {
		return err
	}
	partnerID, err = domain.NormalizeID(partnerID)
	if err != nil {
		return err
	}
	ok, err := d.signaler.Signal(ctx, orderID, partnerID)
	if err != nil {
		return fmt.Errorf("signal acceptance: %w", err)
	}
	if !ok {
		return apperr.ErrTooLate
	}
	return nil
}

// Cancel stops the order's search. A local flow is cancelled through its
// context; otherwise the stored record is moved to cancelled so a flow on
// another instance stops at its next round.
func (d *Dispatcher) Cancel(ctx context.Context, orderID string) error {
	orderID, err := domain.NormalizeID(orderID)
	if err != nil {
		return err
	}
	d.mu.Lock()
	cancel, ok := d.flows[orderID]
	d.mu.Unlock()
	if ok {
		cancel(errOrderCancelled)
		return nil
	}

	a, err := d.store.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if a.Status.Terminal() {
		return fmt.Errorf("order %s is %s: %w", orderID, a.Status, apperr.ErrConflict)
	}
	a.Status = domain.AssignmentCancelled
	ok, err = d.store.Transition(ctx, a)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("order %s is no longer searching: %w", orderID, apperr.ErrConflict)
	}
	return nil
}

// Status returns the stored assignment record.
func (d *Dispatcher) Status(ctx context.Context, orderID string) (domain.Assignment, error) {
	orderID, err := domain.NormalizeID(orderID)
	if err != nil {
		return domain.Assignment{}, err
	}
	return d.store.Get(ctx, orderID)
}

// Active returns the number of running flows.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.flows)
}

// Shutdown rejects new submits, cancels running flows and waits for them.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.stop()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
