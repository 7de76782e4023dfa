// Package jobs runs scheduled maintenance tasks on a robfig/cron scheduler.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"courier-dispatch/internal/logx"
)

// Job is one scheduled task.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Manager schedules jobs on a shared cron instance. A run is skipped while the
// previous run of the same job is still going.
type Manager struct {
	cron    *cron.Cron
	logger  logx.Logger
	timeout time.Duration
}

// NewManager creates a manager. timeout bounds a single job run.
func NewManager(logger logx.Logger, timeout time.Duration) *Manager {
	if logger == nil {
		logger = logx.Nop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger = logger.With(logx.String("component", "jobs"))
	cl := cronLogger{l: logger}
	return &Manager{
		cron:    cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger:  logger,
		timeout: timeout,
	}
}

// Schedule registers j under a cron spec such as "@every 30s".
func (m *Manager) Schedule(spec string, j Job) error {
	_, err := m.cron.AddFunc(spec, func() { m.run(j) })
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", j.Name(), spec, err)
	}
	m.logger.Info("job scheduled", logx.String("job", j.Name()), logx.String("spec", spec))
	return nil
}

func (m *Manager) run(j Job) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	start := time.Now()
	if err := j.Run(ctx); err != nil {
		m.logger.Error("job failed", logx.String("job", j.Name()), logx.Err(err))
		return
	}
	m.logger.Debug("job done", logx.String("job", j.Name()), logx.Duration("took", time.Since(start)))
}

// Start starts the scheduler in its own goroutine.
func (m *Manager) Start() {
	m.cron.Start()
}

// Stop stops scheduling and waits for running jobs or ctx.
func (m *Manager) Stop(ctx context.Context) error {
	done := m.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entries returns the number of scheduled jobs.
func (m *Manager) Entries() int {
	return len(m.cron.Entries())
}

// cronLogger adapts logx.Logger to cron.Logger.
type cronLogger struct{ l logx.Logger }

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.l.Debug("cron: "+msg, kvFields(kv)...)
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.l.Error("cron: "+msg, append(kvFields(kv), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	fields := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logx.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
