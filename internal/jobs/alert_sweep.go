package jobs

import (
	"context"

	"courier-dispatch/internal/logx"
)

// Sweeper drops expired alert holds.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// AlertSweepJob frees partners whose alert hold outlived its TTL, e.g. because
// the flow that placed it died with its process.
type AlertSweepJob struct {
	sweeper Sweeper
	logger  logx.Logger
}

// NewAlertSweepJob creates the job.
func NewAlertSweepJob(s Sweeper, logger logx.Logger) *AlertSweepJob {
	if logger == nil {
		logger = logx.Nop()
	}
	return &AlertSweepJob{sweeper: s, logger: logger}
}

// Name implements Job.
func (j *AlertSweepJob) Name() string { return "alert_sweep" }

// Run implements Job.
func (j *AlertSweepJob) Run(ctx context.Context) error {
	n, err := j.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		j.logger.Info("expired alert holds swept", logx.Int("count", n))
	}
	return nil
}
