package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/dig"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/logx"
)

// WorkerRunner runs the kafka consumer, the location feed and the cron jobs
// without the HTTP API.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun runs the worker and panics on an unexpected error.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(cfg *config.Config, rt components) error {
	if rt.Consumer == nil && rt.Subscriber == nil {
		closeResources(rt)
		return fmt.Errorf("worker has nothing to run: set KAFKA_BROKERS or MQTT_BROKER")
	}
	if cfg.Backend != config.BackendRedis {
		rt.Logger.Warn("worker uses in-process state, acceptances sent to service-dispatch will not reach its flows",
			logx.String("backend", cfg.Backend))
	}
	rt.Logger.Info("service-dispatch-worker started")
	return serve(rt)
}
