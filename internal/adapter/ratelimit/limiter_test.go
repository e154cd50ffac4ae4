package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func TestLimiter_Disabled(t *testing.T) {
	l := New(nil, Config{RequestsPerSecond: 1, BurstCapacity: 1, Enabled: false}, zaptest.NewLogger(t))

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(context.Background(), "k"))
	}
	assert.False(t, l.Enabled())
}

func TestLimiter_NilIsDisabled(t *testing.T) {
	var l *Limiter
	assert.False(t, l.Enabled())
	assert.True(t, l.Allow(context.Background(), "k"))
}

func TestLimiter_Redis_BurstThenRefill(t *testing.T) {
	client, _ := setupTestRedis(t)
	l := New(client, Config{RequestsPerSecond: 1, BurstCapacity: 3, Enabled: true}, zaptest.NewLogger(t))

	now := time.UnixMilli(1700000000000)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "GET:/user/all:1.2.3.4"), "request %d", i)
	}
	assert.False(t, l.Allow(ctx, "GET:/user/all:1.2.3.4"))

	// other keys have their own bucket
	assert.True(t, l.Allow(ctx, "GET:/user/all:5.6.7.8"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow(ctx, "GET:/user/all:1.2.3.4"))
	assert.False(t, l.Allow(ctx, "GET:/user/all:1.2.3.4"))
}

func TestLimiter_Redis_SetsExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	l := New(client, Config{RequestsPerSecond: 10, BurstCapacity: 20, Enabled: true}, zaptest.NewLogger(t))

	assert.True(t, l.Allow(context.Background(), "k"))
	assert.Equal(t, 3*time.Second, mr.TTL("ratelimit:tb:k"))
}

func TestLimiter_Redis_FailOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	l := New(client, Config{RequestsPerSecond: 1, BurstCapacity: 1, Enabled: true}, zaptest.NewLogger(t))
	mr.Close()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(context.Background(), "k"))
	}
}

func TestLimiter_Local(t *testing.T) {
	l := New(nil, Config{RequestsPerSecond: 0.001, BurstCapacity: 2, Enabled: true}, zaptest.NewLogger(t))
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "a"))
	assert.True(t, l.Allow(ctx, "a"))
	assert.False(t, l.Allow(ctx, "a"))
	assert.True(t, l.Allow(ctx, "b"))
}

func TestLimiter_Local_EvictsIdleBuckets(t *testing.T) {
	l := New(nil, Config{RequestsPerSecond: 1, BurstCapacity: 2, Enabled: true}, zaptest.NewLogger(t))
	now := time.UnixMilli(1700000000000)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow(ctx, fmt.Sprintf("GET:/user/all:10.0.0.%d", i)))
	}
	assert.Len(t, l.local, 100)

	// idle time is ceil(2/1)+1 = 3s
	now = now.Add(3 * time.Second)
	assert.True(t, l.Allow(ctx, "GET:/user/all:10.0.1.1"))
	assert.Len(t, l.local, 1)
}

func TestLimiter_Local_KeepsActiveBuckets(t *testing.T) {
	l := New(nil, Config{RequestsPerSecond: 0.001, BurstCapacity: 1, Enabled: true}, zaptest.NewLogger(t))
	now := time.UnixMilli(1700000000000)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "a"))
	now = now.Add(time.Second)
	// still within the refill window, so the exhausted bucket is kept
	assert.False(t, l.Allow(ctx, "a"))
	assert.Len(t, l.local, 1)
}
