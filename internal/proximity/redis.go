package proximity

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"courier-dispatch/internal/domain"
)

// DefaultGeoKey is the redis key of the partner GEO set.
const DefaultGeoKey = "dispatch:partners:geo"

// RedisIndex stores partner positions in a redis GEO set.
//
// Redis has no per-member expiry, so a companion sorted set keyed "<key>:seen"
// tracks the last update of each member; members older than ttl are pruned on
// every query. Both keys also carry a key-level TTL so an idle fleet ages out.
type RedisIndex struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisIndex creates a redis backed index.
func NewRedisIndex(client redis.UniversalClient, key string, ttl time.Duration) *RedisIndex {
	if key == "" {
		key = DefaultGeoKey
	}
	return &RedisIndex{client: client, key: key, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for member expiry.
func (r *RedisIndex) WithClock(now func() time.Time) *RedisIndex {
	if now != nil {
		r.now = now
	}
	return r
}

func (r *RedisIndex) seenKey() string { return r.key + ":seen" }

// Upsert records a position and refreshes its TTL.
func (r *RedisIndex) Upsert(ctx context.Context, partnerID string, p domain.Point) error {
	id, err := domain.NormalizeID(partnerID)
	if err != nil {
		return err
	}
	if err := validatePoint(p); err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.GeoAdd(ctx, r.key, &redis.GeoLocation{Name: id, Longitude: p.Lon, Latitude: p.Lat})
	pipe.ZAdd(ctx, r.seenKey(), redis.Z{Score: float64(r.now().UnixMilli()), Member: id})
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
		pipe.Expire(ctx, r.seenKey(), r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("upsert location %s: %w", id, err)
	}
	return nil
}

// QueryNearby prunes expired members and runs a radius query sorted ascending.
// GEORADIUS_RO is used over GEOSEARCH since miniredis does not serve the latter.
func (r *RedisIndex) QueryNearby(
	ctx context.Context,
	origin domain.Point,
	radius float64,
	unit domain.Unit,
) ([]domain.Candidate, error) {
	if err := validateQuery(origin, radius, unit); err != nil {
		return nil, err
	}
	if err := r.prune(ctx); err != nil {
		return nil, err
	}

	locs, err := r.client.GeoRadius(ctx, r.key, origin.Lon, origin.Lat, &redis.GeoRadiusQuery{
		Radius:   radius,
		Unit:     string(unit),
		WithDist: true,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geo radius query: %w", err)
	}

	out := make([]domain.Candidate, 0, len(locs))
	for _, l := range locs {
		out = append(out, domain.Candidate{
			PartnerID:  l.Name,
			DistanceKm: unit.ToKilometers(l.Dist),
		})
	}
	return out, nil
}

// Remove deletes a partner from both sets.
func (r *RedisIndex) Remove(ctx context.Context, partnerID string) error {
	id, err := domain.NormalizeID(partnerID)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.ZRem(ctx, r.key, id)
	pipe.ZRem(ctx, r.seenKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove location %s: %w", id, err)
	}
	return nil
}

func (r *RedisIndex) prune(ctx context.Context) error {
	if r.ttl <= 0 {
		return nil
	}
	cutoff := r.now().Add(-r.ttl).UnixMilli()
	stale, err := r.client.ZRangeByScore(ctx, r.seenKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(cutoff, 10),
	}).Result()
	if err != nil {
		return fmt.Errorf("list stale partners: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	members := make([]any, 0, len(stale))
	for _, s := range stale {
		members = append(members, s)
	}
	pipe := r.client.TxPipeline()
	pipe.ZRem(ctx, r.key, members...)
	pipe.ZRem(ctx, r.seenKey(), members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("prune stale partners: %w", err)
	}
	return nil
}

var _ Index = (*RedisIndex)(nil)
