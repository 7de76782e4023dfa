// Package metrics defines the prometheus collectors of the dispatch service.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Counter names shared with the dig graph.
const (
	RateLimitExceededTotal = "rate_limit_exceeded_total"
	GatewayRetriesTotal    = "gateway_retries_total"
)

// NewRateLimitExceededTotal counts requests rejected by the rate limiter.
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: RateLimitExceededTotal,
		Help: "Requests rejected with 429 by the rate limiter",
	})
}

// NewGatewayRetriesTotal counts retries of billing calls (refund, delivery assigned).
func NewGatewayRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: GatewayRetriesTotal,
		Help: "Retry attempts performed by the billing gateway",
	})
}

// RegisterCounter registers c, or returns the counter already registered under
// the same descriptor so repeated container builds share one series.
func RegisterCounter(reg prometheus.Registerer, c prometheus.Counter) (prometheus.Counter, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
			return existing, nil
		}
	}
	return nil, err
}

// register registers every collector, skipping ones already registered.
func register(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	for i, c := range cs {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return fmt.Errorf("register collector %d: %w", i, err)
		}
	}
	return nil
}
