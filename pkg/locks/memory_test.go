package locks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryManager_AcquireAndRelease(t *testing.T) {
	manager := NewMemoryManager(0)

	require.NoError(t, manager.Acquire(t.Context(), "wf-1", "exec-1"))

	locked, err := manager.IsLocked(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.True(t, locked)

	require.NoError(t, manager.Release(t.Context(), "wf-1", "exec-1"))

	locked, err = manager.IsLocked(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestMemoryManager_AcquireIsIdempotentPerHolder(t *testing.T) {
	manager := NewMemoryManager(0)

	require.NoError(t, manager.Acquire(t.Context(), "wf-1", "exec-1"))
	require.NoError(t, manager.Acquire(t.Context(), "wf-1", "exec-1"))

	holders, err := manager.Holders(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-1"}, holders)

	// One release clears the holder entirely.
	require.NoError(t, manager.Release(t.Context(), "wf-1", "exec-1"))

	locked, err := manager.IsLocked(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestMemoryManager_MultipleHoldersSorted(t *testing.T) {
	manager := NewMemoryManager(0)

	require.NoError(t, manager.Acquire(t.Context(), "wf-1", "exec-b"))
	require.NoError(t, manager.Acquire(t.Context(), "wf-1", "exec-a"))
	require.NoError(t, manager.Acquire(t.Context(), "wf-1", "exec-c"))

	holders, err := manager.Holders(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-a", "exec-b", "exec-c"}, holders)
}

func TestMemoryManager_ReleaseAll(t *testing.T) {
	manager := NewMemoryManager(0)

	require.NoError(t, manager.Acquire(t.Context(), "wf-1", "exec-1"))
	require.NoError(t, manager.Acquire(t.Context(), "wf-2", "exec-1"))
	require.NoError(t, manager.Acquire(t.Context(), "wf-2", "exec-2"))

	require.NoError(t, manager.ReleaseAll(t.Context(), "exec-1"))

	locked, err := manager.IsLocked(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.False(t, locked)

	holders, err := manager.Holders(t.Context(), "wf-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-2"}, holders)
}

func TestMemoryManager_ReleaseUnknownIsNoop(t *testing.T) {
	manager := NewMemoryManager(0)

	assert.NoError(t, manager.Release(t.Context(), "wf-1", "exec-1"))
	assert.NoError(t, manager.ReleaseAll(t.Context(), "exec-1"))
}

func TestMemoryManager_TTLExpiry(t *testing.T) {
	current := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	manager := NewMemoryManager(15 * time.Minute)
	manager.now = func() time.Time { return current }

	require.NoError(t, manager.Acquire(t.Context(), "wf-1", "exec-1"))

	// Just inside the TTL the lock still holds.
	current = current.Add(14 * time.Minute)

	locked, err := manager.IsLocked(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.True(t, locked)

	// Past the TTL the stale entry is purged on query.
	current = current.Add(2 * time.Minute)

	locked, err = manager.IsLocked(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.False(t, locked)

	holders, err := manager.Holders(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Empty(t, holders)
}

func TestMemoryManager_TTLExpiresHoldersIndependently(t *testing.T) {
	current := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	manager := NewMemoryManager(15 * time.Minute)
	manager.now = func() time.Time { return current }

	require.NoError(t, manager.Acquire(t.Context(), "wf-1", "exec-old"))

	current = current.Add(10 * time.Minute)
	require.NoError(t, manager.Acquire(t.Context(), "wf-1", "exec-new"))

	// 16 minutes after the first acquire only the newer holder survives.
	current = current.Add(6 * time.Minute)

	holders, err := manager.Holders(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-new"}, holders)
}
