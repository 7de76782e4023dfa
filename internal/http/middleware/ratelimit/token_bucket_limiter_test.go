package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func allowed(t *testing.T, l Limiter, key string) bool {
	t.Helper()
	d, err := l.Allow(context.Background(), key)
	require.NoError(t, err)
	return d.Allowed
}

func TestTokenBucketLimiter_BurstThenBlocksThenRefills(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Unix(0, 0))
	l := NewTokenBucketLimiter(clk, Config{Rate: 1, Burst: 2})

	require.True(t, allowed(t, l, "ip1"))
	require.True(t, allowed(t, l, "ip1"))
	require.False(t, allowed(t, l, "ip1"), "empty bucket")

	clk.Add(time.Second)
	require.True(t, allowed(t, l, "ip1"), "one token refilled")
	require.False(t, allowed(t, l, "ip1"))

	// refill is capped at burst
	clk.Add(10 * time.Second)
	require.True(t, allowed(t, l, "ip1"))
	require.True(t, allowed(t, l, "ip1"))
	require.False(t, allowed(t, l, "ip1"))
}

func TestTokenBucketLimiter_ReportsRetryAfter(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Unix(0, 0))
	l := NewTokenBucketLimiter(clk, Config{Rate: 2, Burst: 1})

	require.True(t, allowed(t, l, "k"))
	d, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 500*time.Millisecond, d.RetryAfter)

	clk.Add(250 * time.Millisecond)
	d, err = l.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d.RetryAfter)
}

func TestTokenBucketLimiter_IsPerKey(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Unix(0, 0))
	l := NewTokenBucketLimiter(clk, Config{Rate: 1, Burst: 1})

	require.True(t, allowed(t, l, "keyA"))
	require.False(t, allowed(t, l, "keyA"))
	require.True(t, allowed(t, l, "keyB"), "independent bucket")
}

func TestTokenBucketLimiter_MaxBucketsRefusesNewKeys(t *testing.T) {
	t.Parallel()

	l := NewTokenBucketLimiter(newFakeClock(time.Unix(0, 0)), Config{Rate: 1, Burst: 5, MaxBuckets: 1})

	require.True(t, allowed(t, l, "a"))
	d, err := l.Allow(context.Background(), "b")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Second, d.RetryAfter)
	assert.Equal(t, 1, l.Buckets())
}

func TestTokenBucketLimiter_TTLCleanupRemovesIdleBuckets(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Unix(0, 0))
	l := NewTokenBucketLimiter(clk, Config{Rate: 10, Burst: 1, TTL: 2 * time.Second})

	allowed(t, l, "A")
	allowed(t, l, "B")
	require.Equal(t, 2, l.Buckets())

	// cleanup runs at most once a minute
	clk.Add(59 * time.Second)
	allowed(t, l, "B")
	clk.Add(2 * time.Second)
	allowed(t, l, "B")

	l.mu.RLock()
	_, hasA := l.buckets["A"]
	_, hasB := l.buckets["B"]
	l.mu.RUnlock()
	assert.False(t, hasA, "idle bucket A removed")
	assert.True(t, hasB)
}
