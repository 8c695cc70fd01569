package blocklist

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startRedis spins up a throwaway Redis instance via testcontainers-go and
// returns a connected blocklist. Skipped unless GO_TEST_INTEGRATION=1.
func startRedis(t *testing.T) *RedisBlocklist {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	b, err := NewRedisBlocklist(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	return b
}

func TestRedisRevokeAndCheck(t *testing.T) {
	b := startRedis(t)
	ctx := context.Background()

	revoked, err := b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, b.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = b.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRedisEntriesExpire(t *testing.T) {
	b := startRedis(t)
	ctx := context.Background()

	require.NoError(t, b.Revoke(ctx, "jti-short", time.Second))

	require.Eventually(t, func() bool {
		revoked, err := b.IsRevoked(ctx, "jti-short")
		return err == nil && !revoked
	}, 5*time.Second, 100*time.Millisecond)
}

func TestRedisRevokeIsIdempotent(t *testing.T) {
	b := startRedis(t)
	ctx := context.Background()

	require.NoError(t, b.Revoke(ctx, "jti-1", 2*time.Second))

	// A second revoke must not extend the original TTL.
	require.NoError(t, b.Revoke(ctx, "jti-1", time.Hour))

	ttl, err := b.client.TTL(ctx, keyPrefix+"jti-1").Result()
	require.NoError(t, err)
	require.LessOrEqual(t, ttl, 2*time.Second)
}

func TestRedisBadURL(t *testing.T) {
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	_, err := NewRedisBlocklist(context.Background(), "not-a-url")
	require.Error(t, err)
}
