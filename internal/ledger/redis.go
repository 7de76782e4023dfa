package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// DefaultPrefix namespaces all ledger keys.
const DefaultPrefix = "dispatch:alert:"

// Global holds are plain string keys "<prefix>{ledger}:partner:<id>" holding the
// order id with a PX expiry; the per-order set is "<prefix>{ledger}:order:<id>".
// The shared hash tag keeps every ledger key in one cluster slot, since a
// claim touches one order and holds of arbitrary partners in a single script.
//
// claimScript: KEYS[1] is the order set, KEYS[i] for i > 1 the hold of
// partner ARGV[i+3]. ARGV[1..4] are order id, hold ttl, limit, set ttl.
var claimScript = redis.NewScript(`
local claimed = {}
local limit = tonumber(ARGV[3])
for i = 2, #KEYS do
	if #claimed >= limit then break end
	local pid = ARGV[i + 3]
	if redis.call('SISMEMBER', KEYS[1], pid) == 0 then
		if redis.call('SET', KEYS[i], ARGV[1], 'NX', 'PX', ARGV[2]) then
			redis.call('SADD', KEYS[1], pid)
			claimed[#claimed + 1] = pid
		end
	end
end
if #claimed > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[4])
end
return claimed
`)

// releaseScript deletes the holds in KEYS still owned by order ARGV[1].
var releaseScript = redis.NewScript(`
local released = 0
for i = 1, #KEYS do
	if redis.call('GET', KEYS[i]) == ARGV[1] then
		redis.call('DEL', KEYS[i])
		released = released + 1
	end
end
return released
`)

// Redis is a Ledger shared by every dispatch instance through redis.
type Redis struct {
	client      redis.UniversalClient
	prefix      string
	holdTTL     time.Duration
	orderSetTTL time.Duration
}

// NewRedis creates a redis backed ledger. holdTTL bounds the life of a global
// hold; the per-order set lives for orderSetTTL after its last write.
func NewRedis(client redis.UniversalClient, prefix string, holdTTL, orderSetTTL time.Duration) *Redis {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if holdTTL <= 0 {
		holdTTL = 2 * time.Minute
	}
	if orderSetTTL <= 0 {
		orderSetTTL = time.Hour
	}
	return &Redis{client: client, prefix: prefix, holdTTL: holdTTL, orderSetTTL: orderSetTTL}
}

const slotTag = "{ledger}:"

func (r *Redis) orderKey(orderID string) string  { return r.prefix + slotTag + "order:" + orderID }
func (r *Redis) holdKey(partnerID string) string { return r.prefix + slotTag + "partner:" + partnerID }

func (r *Redis) holdKeys(ids []string) []string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, r.holdKey(id))
	}
	return keys
}

// Claim implements Ledger.
func (r *Redis) Claim(ctx context.Context, orderID string, candidates []domain.Candidate, limit int) ([]domain.Candidate, error) {
	if limit <= 0 || len(candidates) == 0 {
		return nil, nil
	}
	ids, err := r.claim(ctx, orderID, domain.PartnerIDs(candidates), limit)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.PartnerID] = c
	}
	out := make([]domain.Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out, nil
}

// MarkAlerted implements Ledger.
func (r *Redis) MarkAlerted(ctx context.Context, orderID string, partnerIDs ...string) error {
	if len(partnerIDs) == 0 {
		return nil
	}
	eligible, err := r.FilterEligible(ctx, orderID, toCandidates(partnerIDs))
	if err != nil {
		return err
	}
	if len(eligible) != len(partnerIDs) {
		return fmt.Errorf("partners already alerted: %w", apperr.ErrConflict)
	}
	claimed, err := r.claim(ctx, orderID, partnerIDs, len(partnerIDs))
	if err != nil {
		return err
	}
	if len(claimed) != len(partnerIDs) {
		return fmt.Errorf("partners claimed concurrently: %w", apperr.ErrConflict)
	}
	return nil
}

func (r *Redis) claim(ctx context.Context, orderID string, ids []string, limit int) ([]string, error) {
	args := make([]any, 0, len(ids)+4)
	args = append(args,
		orderID,
		r.holdTTL.Milliseconds(),
		limit,
		r.orderSetTTL.Milliseconds(),
	)
	for _, id := range ids {
		args = append(args, id)
	}
	keys := append([]string{r.orderKey(orderID)}, r.holdKeys(ids)...)
	res, err := claimScript.Run(ctx, r.client, keys, args...).StringSlice()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("claim partners for order %s: %w", orderID, err)
	}
	return res, nil
}

// FilterEligible implements Ledger.
func (r *Redis) FilterEligible(ctx context.Context, orderID string, candidates []domain.Candidate) ([]domain.Candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	pipe := r.client.Pipeline()
	tried := make([]*redis.BoolCmd, len(candidates))
	held := make([]*redis.IntCmd, len(candidates))
	for i, c := range candidates {
		tried[i] = pipe.SIsMember(ctx, r.orderKey(orderID), c.PartnerID)
		held[i] = pipe.Exists(ctx, r.holdKey(c.PartnerID))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("filter eligible for order %s: %w", orderID, err)
	}

	out := make([]domain.Candidate, 0, len(candidates))
	for i, c := range candidates {
		if tried[i].Val() || held[i].Val() > 0 {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Release implements Ledger. Holds owned by another order are left untouched.
func (r *Redis) Release(ctx context.Context, orderID string, partnerIDs ...string) error {
	if len(partnerIDs) == 0 {
		return nil
	}
	if err := releaseScript.Run(ctx, r.client, r.holdKeys(partnerIDs), orderID).Err(); err != nil {
		return fmt.Errorf("release partners for order %s: %w", orderID, err)
	}
	return nil
}

// ClearOrderAlerts implements Ledger.
func (r *Redis) ClearOrderAlerts(ctx context.Context, orderID string) error {
	if err := r.client.Del(ctx, r.orderKey(orderID)).Err(); err != nil {
		return fmt.Errorf("clear alerts for order %s: %w", orderID, err)
	}
	return nil
}

func toCandidates(ids []string) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Candidate{PartnerID: id})
	}
	return out
}

var _ Ledger = (*Redis)(nil)
