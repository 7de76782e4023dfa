package ratelimit

import "context"

// NopLimiter allows everything.
type NopLimiter struct{}

// Allow always allows.
func (NopLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{Allowed: true}, nil
}
