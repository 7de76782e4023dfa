package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"courier-dispatch/internal/domain"
)

// Dispatch collects assignment flow metrics.
type Dispatch struct {
	rounds   prometheus.Counter
	outcomes *prometheus.CounterVec
	waits    *prometheus.HistogramVec
	active   prometheus.Gauge
}

// NewDispatch creates unregistered dispatch collectors.
func NewDispatch() *Dispatch {
	return &Dispatch{
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_rounds_total",
			Help: "Total number of notification rounds started",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_flows_total",
			Help: "Finished assignment flows by terminal state",
		}, []string{"state"}),
		waits: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dispatch_acceptance_wait_seconds",
			Help:    "Time spent waiting for a partner to accept",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"result"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_active_flows",
			Help: "Assignment flows currently running",
		}),
	}
}

// Collectors returns everything that has to be registered.
func (d *Dispatch) Collectors() []prometheus.Collector {
	return []prometheus.Collector{d.rounds, d.outcomes, d.waits, d.active}
}

// Register registers all collectors, tolerating ones already registered.
func (d *Dispatch) Register(reg prometheus.Registerer) error {
	return register(reg, d.Collectors()...)
}

// RoundStarted counts a notification round.
func (d *Dispatch) RoundStarted() { d.rounds.Inc() }

// WaitFinished observes one acceptance wait.
func (d *Dispatch) WaitFinished(took time.Duration, accepted bool) {
	result := "timeout"
	if accepted {
		result = "accepted"
	}
	d.waits.WithLabelValues(result).Observe(took.Seconds())
}

// FlowFinished counts a finished flow.
func (d *Dispatch) FlowFinished(state domain.State) {
	d.outcomes.WithLabelValues(string(state)).Inc()
}

// ActiveFlows sets the number of running flows.
func (d *Dispatch) ActiveFlows(n int) { d.active.Set(float64(n)) }
