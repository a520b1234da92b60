package blacklist

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// MaxWindow caps how long a revocation entry may outlive its token. The
// backing store expires entries on its own; nothing here ever sweeps.
const MaxWindow = 48 * time.Hour

const keyPrefix = "blacklist:"

// Registry is a time-bounded set of revoked token identifiers.
type Registry interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RedisRegistry struct {
	rdb *redis.Client
}

func NewRedisRegistry(rdb *redis.Client) *RedisRegistry {
	return &RedisRegistry{rdb: rdb}
}

// Revoke inserts jti with the token's remaining lifetime. Re-revoking an
// already blacklisted jti just refreshes the entry.
func (r *RedisRegistry) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	ttl = ClampTTL(ttl)
	if ttl <= 0 {
		// Token already expired naturally, nothing to track.
		return nil
	}
	return r.rdb.Set(ctx, keyPrefix+jti, "", ttl).Err()
}

func (r *RedisRegistry) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func ClampTTL(ttl time.Duration) time.Duration {
	if ttl > MaxWindow {
		return MaxWindow
	}
	return ttl
}
