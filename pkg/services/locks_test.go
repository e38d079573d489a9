package services

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkko/flowvault/pkg/locks"
)

func newLockService() *Locks {
	return NewLocks(locks.NewMemoryManager(0), slog.Default())
}

func TestLocks_AcquireAndQuery(t *testing.T) {
	service := newLockService()

	require.NoError(t, service.AcquireLock(t.Context(), "wf-1", "exec-1"))

	locked, err := service.IsLocked(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.True(t, locked)

	holders, err := service.Holders(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-1"}, holders)
}

func TestLocks_RequiredIDs(t *testing.T) {
	service := newLockService()

	assert.ErrorIs(t, service.AcquireLock(t.Context(), "", "exec-1"), ErrResourceIDRequired)
	assert.ErrorIs(t, service.AcquireLock(t.Context(), "wf-1", ""), ErrHolderIDRequired)
	assert.ErrorIs(t, service.ReleaseLock(t.Context(), "", "exec-1"), ErrResourceIDRequired)
	assert.ErrorIs(t, service.ReleaseAllLocks(t.Context(), ""), ErrHolderIDRequired)

	_, err := service.IsLocked(t.Context(), "")
	assert.ErrorIs(t, err, ErrResourceIDRequired)

	_, err = service.Holders(t.Context(), "")
	assert.ErrorIs(t, err, ErrResourceIDRequired)
}

func TestLocks_CheckDeletable_RefusesWhileHeld(t *testing.T) {
	service := newLockService()

	require.NoError(t, service.AcquireLock(t.Context(), "wf-1", "exec-1"))
	require.NoError(t, service.AcquireLock(t.Context(), "wf-1", "exec-2"))

	err := service.CheckDeletable(t.Context(), "wf-1", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResourceLocked)
	assert.True(t, IsConflictError(err))
	// The refusal names the holders so the caller can act on them.
	assert.Contains(t, err.Error(), "exec-1, exec-2")
}

func TestLocks_CheckDeletable_ForceBypasses(t *testing.T) {
	service := newLockService()

	require.NoError(t, service.AcquireLock(t.Context(), "wf-1", "exec-1"))

	assert.NoError(t, service.CheckDeletable(t.Context(), "wf-1", true))
}

func TestLocks_CheckDeletable_FreeResource(t *testing.T) {
	service := newLockService()

	assert.NoError(t, service.CheckDeletable(t.Context(), "wf-1", false))
}

func TestLocks_ReleaseAllFreesEverything(t *testing.T) {
	service := newLockService()

	require.NoError(t, service.AcquireLock(t.Context(), "wf-1", "exec-1"))
	require.NoError(t, service.AcquireLock(t.Context(), "wf-2", "exec-1"))

	require.NoError(t, service.ReleaseAllLocks(t.Context(), "exec-1"))

	for _, resource := range []string{"wf-1", "wf-2"} {
		locked, err := service.IsLocked(t.Context(), resource)
		require.NoError(t, err)
		assert.False(t, locked)
	}
}
