package blocklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces revocation entries so the registry can share a Redis
// instance with other subsystems.
const keyPrefix = "auth:jti:"

// RedisBlocklist stores revoked token IDs in Redis with a per-entry TTL.
type RedisBlocklist struct {
	client *redis.Client
}

var _ Blocklist = (*RedisBlocklist)(nil)

// NewRedisBlocklist connects to the Redis instance described by url
// (redis://host:port/db) and verifies the connection before returning.
func NewRedisBlocklist(ctx context.Context, url string) (*RedisBlocklist, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisBlocklist{client: client}, nil
}

// Revoke writes the jti with SET NX so a second revocation of the same token
// keeps the TTL of the first.
func (b *RedisBlocklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired, nothing to track.
		return nil
	}

	if err := b.client.SetNX(ctx, keyPrefix+jti, "", ttl).Err(); err != nil {
		return fmt.Errorf("revoke %q: %w", jti, err)
	}
	return nil
}

func (b *RedisBlocklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check %q: %w", jti, err)
	}
	return n > 0, nil
}

func (b *RedisBlocklist) Close() error {
	return b.client.Close()
}

// Ping reports whether the underlying Redis connection is healthy.
func (b *RedisBlocklist) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
