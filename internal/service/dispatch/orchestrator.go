package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"courier-dispatch/internal/acceptance"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/ledger"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/notify"
	"courier-dispatch/internal/proximity"
)

const cleanupTimeout = 5 * time.Second

// Policy holds the tunables of the assignment loop.
type Policy struct {
	RadiusKm           float64
	AcceptTimeout      time.Duration
	RetryDelay         time.Duration
	MaxRetries         int
	CandidatesPerRound int
}

// DefaultPolicy returns 5 km, 30 s, 3 retries and one candidate per round.
func DefaultPolicy() Policy {
	return Policy{
		RadiusKm:           5,
		AcceptTimeout:      30 * time.Second,
		RetryDelay:         30 * time.Second,
		MaxRetries:         3,
		CandidatesPerRound: 1,
	}
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.RadiusKm <= 0 {
		p.RadiusKm = def.RadiusKm
	}
	if p.AcceptTimeout <= 0 {
		p.AcceptTimeout = def.AcceptTimeout
	}
	if p.RetryDelay <= 0 {
		p.RetryDelay = p.AcceptTimeout
	}
	if p.MaxRetries <= 0 {
		p.MaxRetries = def.MaxRetries
	}
	if p.CandidatesPerRound <= 0 {
		p.CandidatesPerRound = def.CandidatesPerRound
	}
	return p
}

// Deps are the collaborators of the orchestrator. Metrics may be nil.
type Deps struct {
	Index        proximity.Index
	Ledger       ledger.Ledger
	Notifier     notify.Gateway
	Waiter       acceptance.Waiter
	Store        AssignmentStore
	Billing      Billing
	Availability Availability
	Metrics      Metrics
	Logger       logx.Logger
}

// Orchestrator runs the assignment state machine for one order at a time per call.
// A single Orchestrator is shared by all concurrent flows.
type Orchestrator struct {
	policy       Policy
	index        proximity.Index
	ledger       ledger.Ledger
	notifier     notify.Gateway
	waiter       acceptance.Waiter
	store        AssignmentStore
	billing      Billing
	availability Availability
	metrics      Metrics
	logger       logx.Logger

	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
	commitRetry func() backoff.BackOff
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(p Policy, d Deps) *Orchestrator {
	m := d.Metrics
	if m == nil {
		m = nopMetrics{}
	}
	logger := d.Logger
	if logger == nil {
		logger = logx.Nop()
	}
	return &Orchestrator{
		policy:       p.normalized(),
		index:        d.Index,
		ledger:       d.Ledger,
		notifier:     d.Notifier,
		waiter:       d.Waiter,
		store:        d.Store,
		billing:      d.Billing,
		availability: d.Availability,
		metrics:      m,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		sleep:        sleepCtx,
		commitRetry:  defaultCommitRetry,
	}
}

// Policy returns the effective policy.
func (o *Orchestrator) Policy() Policy { return o.policy }

// flow is the mutable state of one Assign call.
type flow struct {
	att     domain.Attempt
	log     logx.Logger
	state   domain.State
	rounds  int
	retries int
}

// enter moves the flow to s.
func (f *flow) enter(s domain.State) {
	f.log.Debug("dispatch state",
		logx.String("event", "state_changed"),
		logx.String("from", string(f.state)),
		logx.String("state", string(s)),
	)
	f.state = s
}

func (f *flow) outcome(state domain.State) domain.Outcome {
	return domain.Outcome{
		OrderID: f.att.OrderID,
		State:   state,
		Rounds:  f.rounds,
		Retries: f.retries,
	}
}

func (f *flow) record(status domain.AssignmentStatus, partnerID string) domain.Assignment {
	return domain.Assignment{
		OrderID:   f.att.OrderID,
		Status:    status,
		PartnerID: partnerID,
		Rounds:    f.rounds,
		Retries:   f.retries,
	}
}

// Assign drives the order through Searching, Notifying and AwaitingAcceptance
// rounds until a partner is assigned, the retry budget is exhausted (refund)
// or ctx is cancelled. Only validation errors are returned; collaborator
// failures are logged and degrade the flow.
func (o *Orchestrator) Assign(ctx context.Context, att domain.Attempt) (domain.Outcome, error) {
	att, err := att.Validate()
	if err != nil {
		return domain.Outcome{}, err
	}
	f := &flow{att: att, log: o.logger.With(logx.String("order_id", att.OrderID))}

	for {
		if ctx.Err() != nil {
			return o.cancel(ctx, f, nil, ""), nil
		}
		if o.closedElsewhere(ctx, f) {
			return o.finish(f, f.outcome(domain.StateCancelled)), nil
		}

		f.enter(domain.StateSearching)
		candidates := o.search(ctx, f)
		if len(candidates) == 0 {
			return o.exhaust(ctx, f, "no partners in range"), nil
		}

		claimed := o.claim(ctx, f, o.filterAvailable(ctx, f, candidates))
		if len(claimed) == 0 {
			f.retries++
			if f.retries >= o.policy.MaxRetries {
				return o.exhaust(ctx, f, "retry budget spent"), nil
			}
			f.enter(domain.StateRetrying)
			f.log.Info("no eligible partner, retrying",
				logx.String("event", "dispatch_retry"),
				logx.Int("retries", f.retries),
				logx.Duration("delay", o.policy.RetryDelay),
			)
			if err := o.sleep(ctx, o.policy.RetryDelay); err != nil {
				return o.cancel(ctx, f, nil, ""), nil
			}
			continue
		}

		f.rounds++
		o.metrics.RoundStarted()
		f.log.Info("dispatch round",
			logx.String("event", "dispatch_round"),
			logx.Int("round", f.rounds),
			logx.Int("retries", f.retries),
			logx.Strings("partner_ids", domain.PartnerIDs(claimed)),
		)

		f.enter(domain.StateNotifying)
		o.alert(ctx, f, claimed)

		f.enter(domain.StateAwaitingAcceptance)
		winner := o.race(ctx, f, claimed)
		if ctx.Err() != nil {
			return o.cancel(ctx, f, claimed, winner), nil
		}
		if winner == "" {
			o.release(ctx, f, claimed)
			continue
		}
		return o.commit(ctx, f, winner, claimed), nil
	}
}

// closedElsewhere reports whether the stored record left searching, e.g. it was
// cancelled through another instance. Lookup failures are ignored.
func (o *Orchestrator) closedElsewhere(ctx context.Context, f *flow) bool {
	a, err := o.store.Get(ctx, f.att.OrderID)
	if err != nil {
		return false
	}
	if a.Status.Terminal() {
		f.log.Info("assignment closed elsewhere", logx.String("status", string(a.Status)))
		_ = o.ledger.ClearOrderAlerts(ctx, f.att.OrderID)
		return true
	}
	return false
}

func (o *Orchestrator) search(ctx context.Context, f *flow) []domain.Candidate {
	cs, err := o.index.QueryNearby(ctx, f.att.Origin, o.policy.RadiusKm, domain.UnitKilometers)
	if err != nil {
		f.log.Warn("proximity query failed", logx.Err(err))
		return nil
	}
	return cs
}

// filterAvailable drops busy partners. On store failure the candidates are kept.
func (o *Orchestrator) filterAvailable(ctx context.Context, f *flow, cs []domain.Candidate) []domain.Candidate {
	ids, err := o.availability.FilterAvailable(ctx, domain.PartnerIDs(cs))
	if err != nil {
		f.log.Warn("availability lookup failed", logx.Err(err))
		return cs
	}
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	out := make([]domain.Candidate, 0, len(ids))
	for _, c := range cs {
		if _, ok := keep[c.PartnerID]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (o *Orchestrator) claim(ctx context.Context, f *flow, cs []domain.Candidate) []domain.Candidate {
	if len(cs) == 0 {
		return nil
	}
	claimed, err := o.ledger.Claim(ctx, f.att.OrderID, cs, o.policy.CandidatesPerRound)
	if err != nil {
		f.log.Warn("alert ledger claim failed", logx.Err(err))
		return nil
	}
	return claimed
}

func (o *Orchestrator) alert(ctx context.Context, f *flow, claimed []domain.Candidate) {
	deadline := o.now().Add(o.policy.AcceptTimeout)
	for _, c := range claimed {
		err := o.notifier.AlertPartner(ctx, notify.Alert{
			PartnerID:  c.PartnerID,
			OrderID:    f.att.OrderID,
			DistanceKm: c.DistanceKm,
			Deadline:   deadline,
		})
		if err != nil {
			f.log.Warn("partner alert not delivered",
				logx.String("partner_id", c.PartnerID),
				logx.Err(err),
			)
			continue
		}
		f.log.Debug("partner alerted",
			logx.String("event", "partner_alerted"),
			logx.String("partner_id", c.PartnerID),
			logx.Float64("distance_km", c.DistanceKm),
		)
	}
}

// race waits for all claimed partners at once. The waiter accepts at most one
// signal per order, so the first acceptance is the only wait that returns true;
// it cancels the remaining waits.
func (o *Orchestrator) race(ctx context.Context, f *flow, claimed []domain.Candidate) string {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu     sync.Mutex
		winner string
	)
	g, gctx := errgroup.WithContext(raceCtx)
	for _, c := range claimed {
		partnerID := c.PartnerID
		g.Go(func() error {
			start := time.Now()
			ok, err := o.waiter.Wait(gctx, f.att.OrderID, partnerID, o.policy.AcceptTimeout)
			o.metrics.WaitFinished(time.Since(start), ok)
			if err != nil && !errors.Is(err, context.Canceled) {
				f.log.Warn("acceptance wait failed",
					logx.String("partner_id", partnerID),
					logx.Err(err),
				)
			}
			if !ok {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			if winner == "" {
				winner = partnerID
			} else {
				f.log.Error("second acceptance in one round ignored", logx.String("partner_id", partnerID))
			}
			cancel()
			return nil
		})
	}
	_ = g.Wait()

	if winner != "" {
		fctx, stop := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
		defer stop()
		if err := o.waiter.Forget(fctx, f.att.OrderID); err != nil {
			f.log.Warn("acceptance round not closed", logx.Err(err))
		}
	}
	return winner
}

func (o *Orchestrator) release(ctx context.Context, f *flow, claimed []domain.Candidate) {
	if err := o.ledger.Release(ctx, f.att.OrderID, domain.PartnerIDs(claimed)...); err != nil {
		f.log.Warn("alert release failed", logx.Err(err))
	}
}

func (o *Orchestrator) commit(ctx context.Context, f *flow, winner string, claimed []domain.Candidate) domain.Outcome {
	ok, err := o.transitionWithRetry(ctx, f.record(domain.AssignmentAssigned, winner))
	if err != nil {
		f.log.Error("assignment commit failed", logx.String("partner_id", winner), logx.Err(err))
		o.releaseAccepted(ctx, f, winner)
		o.release(ctx, f, claimed)
		return o.exhaust(ctx, f, "assignment commit failed")
	}
	if !ok {
		f.log.Info("order closed before commit", logx.String("partner_id", winner))
		o.releaseAccepted(ctx, f, winner)
		o.release(ctx, f, claimed)
		o.notifyOutcome(ctx, f, claimed, "")
		_ = o.ledger.ClearOrderAlerts(ctx, f.att.OrderID)
		return o.finish(f, f.outcome(domain.StateCancelled))
	}

	if err := o.availability.MarkBusy(ctx, winner); err != nil {
		f.log.Warn("mark busy failed", logx.String("partner_id", winner), logx.Err(err))
	}
	if err := o.billing.MarkDeliveryAssigned(ctx, f.att.OrderID, winner); err != nil {
		f.log.Warn("mark delivery assigned failed", logx.String("partner_id", winner), logx.Err(err))
	}
	o.release(ctx, f, claimed)
	o.notifyOutcome(ctx, f, claimed, winner)
	if err := o.ledger.ClearOrderAlerts(ctx, f.att.OrderID); err != nil {
		f.log.Warn("clear order alerts failed", logx.Err(err))
	}

	f.log.Info("partner assigned",
		logx.String("event", "partner_assigned"),
		logx.String("partner_id", winner),
		logx.Int("rounds", f.rounds),
		logx.Int("retries", f.retries),
	)
	out := f.outcome(domain.StateAssigned)
	out.PartnerID = winner
	return o.finish(f, out)
}

// transitionWithRetry retries store errors; a false result is final.
func (o *Orchestrator) transitionWithRetry(ctx context.Context, a domain.Assignment) (bool, error) {
	bo := backoff.WithContext(o.commitRetry(), ctx)
	return backoff.RetryNotifyWithData(func() (bool, error) {
		return o.store.Transition(ctx, a)
	}, bo, func(err error, next time.Duration) {
		o.logger.Warn("assignment commit retry",
			logx.String("order_id", a.OrderID),
			logx.Duration("next", next),
			logx.Err(err),
		)
	})
}

func defaultCommitRetry() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 50 * time.Millisecond
	eb.MaxInterval = 500 * time.Millisecond
	eb.MaxElapsedTime = 2 * time.Second
	return backoff.WithMaxRetries(eb, 3)
}

// releaseAccepted puts a partner whose acceptance could not be honoured back
// to available.
func (o *Orchestrator) releaseAccepted(ctx context.Context, f *flow, partnerID string) {
	f.log.Info("accepted partner released",
		logx.String("event", "acceptance_released"),
		logx.String("partner_id", partnerID),
	)
	if err := o.availability.MarkAvailable(ctx, partnerID); err != nil {
		f.log.Warn("mark available failed", logx.String("partner_id", partnerID), logx.Err(err))
	}
}

func (o *Orchestrator) notifyOutcome(ctx context.Context, f *flow, claimed []domain.Candidate, winner string) {
	err := o.notifier.NotifyOutcome(ctx, notify.Outcome{
		OrderID:           f.att.OrderID,
		PartnerIDs:        domain.PartnerIDs(claimed),
		AcceptedPartnerID: winner,
	})
	if err != nil {
		f.log.Warn("outcome notification not delivered", logx.Err(err))
	}
}

// exhaust is terminal: alerts are cleared and the order is refunded once.
func (o *Orchestrator) exhaust(ctx context.Context, f *flow, reason string) domain.Outcome {
	if err := o.ledger.ClearOrderAlerts(ctx, f.att.OrderID); err != nil {
		f.log.Warn("clear order alerts failed", logx.Err(err))
	}
	ok, err := o.store.Transition(ctx, f.record(domain.AssignmentExhausted, ""))
	if err == nil && !ok {
		f.log.Info("order closed before exhaustion")
		return o.finish(f, f.outcome(domain.StateCancelled))
	}
	if err != nil {
		f.log.Warn("exhausted status not stored", logx.Err(err))
	}

	f.log.Warn("dispatch exhausted",
		logx.String("event", "dispatch_exhausted"),
		logx.String("reason", reason),
		logx.Int("rounds", f.rounds),
		logx.Int("retries", f.retries),
	)
	out := f.outcome(domain.StateExhausted)
	refunded, err := o.billing.Refund(ctx, f.att.OrderID)
	switch {
	case err != nil:
		f.log.Error("refund failed", logx.String("event", "refund_failed"), logx.Err(err))
	case !refunded:
		f.log.Error("refund rejected", logx.String("event", "refund_failed"))
	}
	out.Refunded = err == nil && refunded
	return o.finish(f, out)
}

// cancel runs with a detached context since ctx is already done.
// A winner that accepted before the cancellation is released.
func (o *Orchestrator) cancel(ctx context.Context, f *flow, claimed []domain.Candidate, winner string) domain.Outcome {
	cctx, stop := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer stop()

	if winner != "" {
		o.releaseAccepted(cctx, f, winner)
	}
	if len(claimed) > 0 {
		o.release(cctx, f, claimed)
		o.notifyOutcome(cctx, f, claimed, "")
	}
	if err := o.ledger.ClearOrderAlerts(cctx, f.att.OrderID); err != nil {
		f.log.Warn("clear order alerts failed", logx.Err(err))
	}
	if _, err := o.store.Transition(cctx, f.record(domain.AssignmentCancelled, "")); err != nil {
		f.log.Warn("cancelled status not stored", logx.Err(err))
	}
	f.log.Info("dispatch cancelled",
		logx.String("event", "dispatch_cancelled"),
		logx.Err(context.Cause(ctx)),
	)
	return o.finish(f, f.outcome(domain.StateCancelled))
}

func (o *Orchestrator) finish(f *flow, out domain.Outcome) domain.Outcome {
	f.enter(out.State)
	o.metrics.FlowFinished(out.State)
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
