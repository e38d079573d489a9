package locks

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var redisContainer *tcredis.RedisContainer

func setupRedisManager(t *testing.T) (*RedisManager, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if redisContainer == nil || !redisContainer.IsRunning() {
		var err error

		redisContainer, err = tcredis.Run(ctx, "redis:7-alpine")
		require.NoError(t, err)
	}

	url, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	manager, err := NewRedisManager(url, 15*time.Minute)
	require.NoError(t, err)

	require.NoError(t, manager.client.FlushAll(ctx).Err())

	t.Cleanup(func() {
		require.NoError(t, manager.Close())
		cancel()
	})

	return manager, ctx
}

func TestRedisManager_AcquireAndQuery(t *testing.T) {
	manager, ctx := setupRedisManager(t)

	require.NoError(t, manager.Acquire(ctx, "workflow-1", "exec-b"))
	require.NoError(t, manager.Acquire(ctx, "workflow-1", "exec-a"))

	locked, err := manager.IsLocked(ctx, "workflow-1")
	require.NoError(t, err)
	assert.True(t, locked)

	holders, err := manager.Holders(ctx, "workflow-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-a", "exec-b"}, holders)
}

func TestRedisManager_ReleaseFreesHolder(t *testing.T) {
	manager, ctx := setupRedisManager(t)

	require.NoError(t, manager.Acquire(ctx, "workflow-1", "exec-1"))
	require.NoError(t, manager.Acquire(ctx, "workflow-1", "exec-2"))

	require.NoError(t, manager.Release(ctx, "workflow-1", "exec-1"))

	holders, err := manager.Holders(ctx, "workflow-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-2"}, holders)

	require.NoError(t, manager.Release(ctx, "workflow-1", "exec-2"))

	locked, err := manager.IsLocked(ctx, "workflow-1")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestRedisManager_ReleaseAllScansEveryResource(t *testing.T) {
	manager, ctx := setupRedisManager(t)

	require.NoError(t, manager.Acquire(ctx, "workflow-1", "exec-1"))
	require.NoError(t, manager.Acquire(ctx, "workflow-2", "exec-1"))
	require.NoError(t, manager.Acquire(ctx, "workflow-1", "exec-2"))

	require.NoError(t, manager.ReleaseAll(ctx, "exec-1"))

	holders, err := manager.Holders(ctx, "workflow-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-2"}, holders)

	locked, err := manager.IsLocked(ctx, "workflow-2")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestRedisManager_PurgesExpiredHolders(t *testing.T) {
	manager, ctx := setupRedisManager(t)

	stale := strconv.FormatInt(time.Now().Add(-16*time.Minute).UnixMilli(), 10)
	require.NoError(t, manager.client.HSet(ctx, redisKeyPrefix+"workflow-1", "stale-exec", stale).Err())
	require.NoError(t, manager.Acquire(ctx, "workflow-1", "fresh-exec"))

	holders, err := manager.Holders(ctx, "workflow-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh-exec"}, holders)

	// The expired entry is removed from the hash, not just filtered out.
	exists, err := manager.client.HExists(ctx, redisKeyPrefix+"workflow-1", "stale-exec").Result()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisManager_PurgesUnparsableTimestamps(t *testing.T) {
	manager, ctx := setupRedisManager(t)

	require.NoError(t, manager.client.HSet(ctx, redisKeyPrefix+"workflow-1", "broken-exec", "not-a-timestamp").Err())

	holders, err := manager.Holders(ctx, "workflow-1")
	require.NoError(t, err)
	assert.Empty(t, holders)

	locked, err := manager.IsLocked(ctx, "workflow-1")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestNewRedisManager_InvalidURL(t *testing.T) {
	_, err := NewRedisManager("not-a-url", 0)
	assert.Error(t, err)
}
