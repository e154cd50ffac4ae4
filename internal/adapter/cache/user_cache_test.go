package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-service/internal/domain/user"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func TestRedisUserCache_Set_StoresJSON(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	user := &domain.User{ID: 1700000000123, Name: "Alice", Email: "alice@x.com"}
	require.NoError(t, cache.Set(context.Background(), user))

	data, err := client.Get(context.Background(), "user:1700000000123").Bytes()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1700000000123,"name":"Alice","email":"alice@x.com"}`, string(data))

	var cached domain.User
	require.NoError(t, json.Unmarshal(data, &cached))
	assert.Equal(t, *user, cached)
}

func TestRedisUserCache_Set_NilUser(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	err := cache.Set(context.Background(), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot cache nil user")
}

func TestRedisUserCache_Get(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	user := &domain.User{ID: 1, Name: "John Doe", Email: "john@example.com"}
	require.NoError(t, cache.Set(ctx, user))

	t.Run("Hit", func(t *testing.T) {
		cached, err := cache.Get(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.Equal(t, user, cached)
	})

	t.Run("Miss", func(t *testing.T) {
		cached, err := cache.Get(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, cached)
	})
}

func TestRedisUserCache_Get_CorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	require.NoError(t, mr.Set(Key(5), "not-json"))

	cached, err := cache.Get(context.Background(), 5)
	assert.Error(t, err)
	assert.Nil(t, cached)
}

func TestRedisUserCache_TTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, 2*time.Second, zaptest.NewLogger(t))

	require.NoError(t, cache.Set(context.Background(), &domain.User{ID: 1, Name: "John"}))

	mr.FastForward(3 * time.Second)

	cached, err := cache.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, cached)
}
