// Package proximity keeps the last known location of every delivery partner and
// answers radius queries ranked by distance.
package proximity

import (
	"context"
	"fmt"
	"math"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// Index is the proximity index used by the dispatch orchestrator.
//
// Distances in returned candidates are always kilometers, whatever unit the
// radius was given in. An empty result is not an error. Latitudes beyond
// MaxLatitude are rejected by every implementation.
type Index interface {
	Upsert(ctx context.Context, partnerID string, p domain.Point) error
	QueryNearby(ctx context.Context, origin domain.Point, radius float64, unit domain.Unit) ([]domain.Candidate, error)
	Remove(ctx context.Context, partnerID string) error
}

// MaxLatitude is the limit of the redis GEO encoding (EPSG:3857).
const MaxLatitude = 85.05112878

func validatePoint(p domain.Point) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if math.Abs(p.Lat) > MaxLatitude {
		return fmt.Errorf("latitude %v beyond geo index limit: %w", p.Lat, apperr.ErrInvalid)
	}
	return nil
}

func validateQuery(origin domain.Point, radius float64, unit domain.Unit) error {
	if err := validatePoint(origin); err != nil {
		return err
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius <= 0 {
		return fmt.Errorf("radius %v: %w", radius, apperr.ErrInvalid)
	}
	if !unit.Valid() {
		return fmt.Errorf("unit %q: %w", unit, apperr.ErrInvalid)
	}
	return nil
}
