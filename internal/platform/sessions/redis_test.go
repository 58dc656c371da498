package sessions

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRevoker connects to TASKMGR_TEST_REDIS_URL (default localhost:6379)
// and skips the test when Redis is not reachable.
func setupRevoker(t *testing.T) (*RedisRevoker, *redis.Client) {
	t.Helper()

	redisURL := os.Getenv("TASKMGR_TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/15"
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client, err := Connect(ctx, redisURL)
	if err != nil {
		t.Skipf("Redis not available at %s: %v", redisURL, err)
	}
	t.Cleanup(func() { _ = client.Close() })

	r := NewRedisRevoker(client, nil)
	r.prefix = "taskmgr:test:" + uuid.NewString() + ":"
	return r, client
}

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "http://not-redis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis url")
}

func TestRedisRevoker_EmptyTokenID(t *testing.T) {
	r := NewRedisRevoker(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), nil)

	assert.NoError(t, r.Revoke(context.Background(), "", time.Now().Add(time.Hour)))
	revoked, err := r.IsRevoked(context.Background(), "")
	assert.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevoker_RevokeAndCheck(t *testing.T) {
	r, client := setupRevoker(t)
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := client.TTL(ctx, r.prefix+"jti-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestRedisRevoker_ExpiredTokenIsNotStored(t *testing.T) {
	r, client := setupRevoker(t)
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "old", time.Now().Add(-time.Minute)))

	n, err := client.Exists(ctx, r.prefix+"old").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
