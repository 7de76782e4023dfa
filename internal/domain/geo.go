package domain

import (
	"fmt"
	"math"
	"strings"

	"courier-dispatch/internal/apperr"
)

// Unit is a distance unit accepted by proximity queries.
type Unit string

// Supported distance units. Kilometers are used end to end inside the engine.
const (
	UnitMeters     Unit = "m"
	UnitKilometers Unit = "km"
	UnitMiles      Unit = "mi"
	UnitFeet       Unit = "ft"
)

var kilometersPerUnit = map[Unit]float64{
	UnitMeters:     0.001,
	UnitKilometers: 1,
	UnitMiles:      1.609344,
	UnitFeet:       0.0003048,
}

// ParseUnit parses a unit name; an empty string means kilometers.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	if u == "" {
		return UnitKilometers, nil
	}
	if _, ok := kilometersPerUnit[u]; !ok {
		return "", fmt.Errorf("unknown distance unit %q: %w", s, apperr.ErrInvalid)
	}
	return u, nil
}

// Valid reports whether the unit is supported.
func (u Unit) Valid() bool {
	_, ok := kilometersPerUnit[u]
	return ok
}

// ToKilometers converts v expressed in u to kilometers.
func (u Unit) ToKilometers(v float64) float64 {
	return v * kilometersPerUnit[u]
}

// FromKilometers converts km to u.
func (u Unit) FromKilometers(km float64) float64 {
	return km / kilometersPerUnit[u]
}

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// Validate rejects non-finite or out-of-range coordinates.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of range: %w", p.Lat, apperr.ErrInvalid)
	}
	if math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %v out of range: %w", p.Lon, apperr.ErrInvalid)
	}
	return nil
}

// earthRadiusKm matches the radius redis uses for GEO commands, so that the
// in-memory index and the redis index rank and measure identically.
const earthRadiusKm = 6372.7975608

// DistanceKm returns the haversine distance between two points in kilometers.
func DistanceKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
