package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPrefixKey(t *testing.T) {
	require.Equal(t, "teamforge:rate:login", prefixKey("rate::login"))
	require.Equal(t, "teamforge:logout:x", prefixKey("teamforge:logout:x"))
	require.Equal(t, "teamforge:x", prefixKey(":x"))
}

func TestNewRedisStoreRequiresAddress(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{})
	require.Error(t, err)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("TEAMFORGE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEAMFORGE_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	s, err := NewRedisStore(ctx, RedisConfig{Address: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	key := "test:" + uuid.NewString()
	require.NoError(t, s.Set(ctx, key, []byte("v"), time.Minute))
	value, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), value)

	require.NoError(t, s.Delete(ctx, key))
	_, ok, err = s.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	counter := "rate:" + uuid.NewString()
	count, ttl, err := s.IncrementWithTTL(ctx, counter, time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.LessOrEqual(t, ttl, time.Minute)
	count, _, err = s.IncrementWithTTL(ctx, counter, time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
	require.NoError(t, s.Delete(ctx, counter))
}
