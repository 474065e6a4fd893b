//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"smpadmin/internal/platform/config"
	platformredis "smpadmin/internal/platform/redis"
)

type RedisContainer struct {
	URL    string
	Client *redis.Client
}

// NewRedisContainer starts redis and connects through the same constructor
// the server uses. Both are torn down with the test.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start redis container")

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err, "redis connection string")

	client, err := platformredis.New(ctx, config.RedisConfig{URL: url, PoolSize: 4})
	require.NoError(t, err, "connect to redis")
	t.Cleanup(func() { _ = client.Close() })

	return &RedisContainer{URL: url, Client: client.Client}
}

// FlushAll empties the database between tests.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
