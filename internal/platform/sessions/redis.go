package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces revocation keys.
const DefaultPrefix = "taskmgr:revoked:"

// RedisRevoker implements auth.Revoker. Each revoked token id is a key that
// expires when the token itself would have, so the set never outgrows the
// live sessions.
type RedisRevoker struct {
	client *redis.Client
	prefix string
	now    func() time.Time
	logger *slog.Logger
}

var _ auth.Revoker = (*RedisRevoker)(nil)

// NewRedisRevoker creates a revoker on client. A nil logger selects slog.Default().
func NewRedisRevoker(client *redis.Client, logger *slog.Logger) *RedisRevoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRevoker{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
		logger: logger.With(slog.String("component", "session_revoker")),
	}
}

// Connect parses a redis:// URL, opens a client and checks it with PING.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Revoke implements auth.Revoker.
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return nil
	}

	ttl := until.Sub(r.now())
	if ttl <= 0 {
		// already expired; nothing can use it again
		return nil
	}

	if err := r.client.Set(ctx, r.prefix+tokenID, 1, ttl).Err(); err != nil {
		logger.FromContextOrDefault(ctx, r.logger).Error("failed to revoke session",
			slog.String("error", err.Error()))
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// IsRevoked implements auth.Revoker.
func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}

	err := r.client.Get(ctx, r.prefix+tokenID).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("check session revocation: %w", err)
	}
}

// Ping checks if the Redis connection is healthy.
func (r *RedisRevoker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
