package proximity_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/proximity"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var origin = domain.Point{Lat: 10.00, Lon: 76.30}

// roughly 1 km, 3 km and 8 km north of origin
var (
	near = domain.Point{Lat: 10.009, Lon: 76.30}
	mid  = domain.Point{Lat: 10.027, Lon: 76.30}
	far  = domain.Point{Lat: 10.072, Lon: 76.30}
)

type indexFactory func(t *testing.T, clock *fakeClock, ttl time.Duration) proximity.Index

func factories() map[string]indexFactory {
	return map[string]indexFactory{
		"memory": func(t *testing.T, clock *fakeClock, ttl time.Duration) proximity.Index {
			return proximity.NewMemoryIndex(ttl).WithClock(clock.Now)
		},
		"redis": func(t *testing.T, clock *fakeClock, ttl time.Duration) proximity.Index {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return proximity.NewRedisIndex(client, "", ttl).WithClock(clock.Now)
		},
	}
}

func TestIndex_QueryNearby_SortedWithinRadius(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			idx := factory(t, newFakeClock(), time.Hour)

			require.NoError(t, idx.Upsert(ctx, "p2", mid))
			require.NoError(t, idx.Upsert(ctx, "p1", near))
			require.NoError(t, idx.Upsert(ctx, "p3", far))

			got, err := idx.QueryNearby(ctx, origin, 5, domain.UnitKilometers)
			require.NoError(t, err)
			require.Equal(t, []string{"p1", "p2"}, domain.PartnerIDs(got))
			require.InDelta(t, 1.0, got[0].DistanceKm, 0.05)
			require.InDelta(t, 3.0, got[1].DistanceKm, 0.05)
		})
	}
}

func TestIndex_QueryNearby_UnitConversion(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			idx := factory(t, newFakeClock(), time.Hour)
			require.NoError(t, idx.Upsert(ctx, "p1", near))
			require.NoError(t, idx.Upsert(ctx, "p2", mid))

			inMeters, err := idx.QueryNearby(ctx, origin, 2000, domain.UnitMeters)
			require.NoError(t, err)
			require.Equal(t, []string{"p1"}, domain.PartnerIDs(inMeters))
			require.InDelta(t, 1.0, inMeters[0].DistanceKm, 0.05, "distance must be reported in km")

			inMiles, err := idx.QueryNearby(ctx, origin, 3, domain.UnitMiles)
			require.NoError(t, err)
			require.Equal(t, []string{"p1", "p2"}, domain.PartnerIDs(inMiles))
			require.InDelta(t, 3.0, inMiles[1].DistanceKm, 0.05)
		})
	}
}

func TestIndex_QueryNearby_EmptyIsNotError(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			idx := factory(t, newFakeClock(), time.Hour)

			got, err := idx.QueryNearby(context.Background(), origin, 5, domain.UnitKilometers)
			require.NoError(t, err)
			require.Empty(t, got)
		})
	}
}

func TestIndex_TTLExpiry(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clock := newFakeClock()
			idx := factory(t, clock, time.Hour)

			require.NoError(t, idx.Upsert(ctx, "stale", near))
			clock.Advance(30 * time.Minute)
			require.NoError(t, idx.Upsert(ctx, "fresh", mid))

			clock.Advance(31 * time.Minute)
			got, err := idx.QueryNearby(ctx, origin, 5, domain.UnitKilometers)
			require.NoError(t, err)
			require.Equal(t, []string{"fresh"}, domain.PartnerIDs(got))

			// a refresh brings the partner back
			require.NoError(t, idx.Upsert(ctx, "stale", near))
			got, err = idx.QueryNearby(ctx, origin, 5, domain.UnitKilometers)
			require.NoError(t, err)
			require.Equal(t, []string{"stale", "fresh"}, domain.PartnerIDs(got))
		})
	}
}

func TestIndex_Validation(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			idx := factory(t, newFakeClock(), time.Hour)

			require.ErrorIs(t, idx.Upsert(ctx, "p1", domain.Point{Lat: 91, Lon: 0}), apperr.ErrInvalid)
			require.ErrorIs(t, idx.Upsert(ctx, " ", near), apperr.ErrInvalid)
			require.ErrorIs(t, idx.Upsert(ctx, "p1", domain.Point{Lat: 85.1, Lon: 0}), apperr.ErrInvalid)
			require.ErrorIs(t, idx.Upsert(ctx, "p1", domain.Point{Lat: -89, Lon: 0}), apperr.ErrInvalid)
			require.NoError(t, idx.Upsert(ctx, "p1", domain.Point{Lat: proximity.MaxLatitude, Lon: 0}))
			require.ErrorIs(t, idx.Remove(ctx, "  "), apperr.ErrInvalid)

			_, err := idx.QueryNearby(ctx, domain.Point{Lat: 0, Lon: 181}, 5, domain.UnitKilometers)
			require.ErrorIs(t, err, apperr.ErrInvalid)
			_, err = idx.QueryNearby(ctx, domain.Point{Lat: -86, Lon: 0}, 5, domain.UnitKilometers)
			require.ErrorIs(t, err, apperr.ErrInvalid)
			_, err = idx.QueryNearby(ctx, origin, 0, domain.UnitKilometers)
			require.ErrorIs(t, err, apperr.ErrInvalid)
			_, err = idx.QueryNearby(ctx, origin, 5, domain.Unit("yd"))
			require.ErrorIs(t, err, apperr.ErrInvalid)
		})
	}
}

func TestIndex_Remove(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			idx := factory(t, newFakeClock(), time.Hour)
			require.NoError(t, idx.Upsert(ctx, "p1", near))
			require.NoError(t, idx.Upsert(ctx, "p2", mid))
			require.NoError(t, idx.Remove(ctx, "p1"))
			require.NoError(t, idx.Remove(ctx, " p2 "))

			got, err := idx.QueryNearby(ctx, origin, 5, domain.UnitKilometers)
			require.NoError(t, err)
			require.Empty(t, got)
		})
	}
}
