package services

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nkko/flowvault/pkg/backup"
	"github.com/nkko/flowvault/pkg/mocks"
	"github.com/nkko/flowvault/pkg/models"
)

func newBackupService(t *testing.T) (*Backup, *mocks.MockPlatformClient) {
	t.Helper()

	client := &mocks.MockPlatformClient{}
	store := backup.NewStore(t.TempDir(), client, slog.Default())

	return NewBackup(store, slog.Default()), client
}

func serviceWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:   "wf-1",
		Name: "Service Test",
		Nodes: []*models.Node{
			{ID: "n1", Name: "Start", Type: "n8n-nodes-base.webhook"},
		},
		Connections: models.ConnectionMap{},
	}
}

func TestBackup_CreateSnapshot(t *testing.T) {
	service, client := newBackupService(t)
	client.On("FetchWorkflow", mock.Anything, "wf-1").Return(serviceWorkflow(), nil)

	info, err := service.CreateSnapshot(t.Context(), CreateSnapshotRequest{
		WorkflowID:  "wf-1",
		Description: "pre-release",
	})
	require.NoError(t, err)
	assert.Equal(t, "pre-release", info.Description)
	assert.NotEmpty(t, info.BackupID)
}

func TestBackup_CreateSnapshot_MissingWorkflowID(t *testing.T) {
	service, client := newBackupService(t)

	_, err := service.CreateSnapshot(t.Context(), CreateSnapshotRequest{})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	client.AssertNotCalled(t, "FetchWorkflow", mock.Anything, mock.Anything)
}

func TestBackup_ListSnapshots_RequiresWorkflowID(t *testing.T) {
	service, _ := newBackupService(t)

	_, err := service.ListSnapshots(t.Context(), "")
	assert.ErrorIs(t, err, ErrWorkflowIDRequired)
}

func TestBackup_RestoreSnapshot_DefaultsToAutoBackup(t *testing.T) {
	service, client := newBackupService(t)

	// First create a snapshot to restore.
	client.On("FetchWorkflow", mock.Anything, "wf-1").Return(serviceWorkflow(), nil)

	info, err := service.CreateSnapshot(t.Context(), CreateSnapshotRequest{WorkflowID: "wf-1"})
	require.NoError(t, err)

	client.On("PushWorkflow", mock.Anything, "wf-1", mock.Anything).Return(serviceWorkflow(), nil)

	result, err := service.RestoreSnapshot(t.Context(), RestoreSnapshotRequest{
		WorkflowID: "wf-1",
		BackupID:   info.BackupID,
	})
	require.NoError(t, err)

	// AutoBackupCurrent unset means the current state was backed up first.
	assert.NotNil(t, result.CurrentBackup)
	assert.NotNil(t, result.Restored)
}

func TestBackup_RestoreSnapshot_MissingBackupID(t *testing.T) {
	service, _ := newBackupService(t)

	_, err := service.RestoreSnapshot(t.Context(), RestoreSnapshotRequest{WorkflowID: "wf-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackupIDRequired)
}

func TestBackup_DiffSnapshots_MissingIDs(t *testing.T) {
	service, _ := newBackupService(t)

	_, err := service.DiffSnapshots(t.Context(), DiffSnapshotsRequest{WorkflowID: "wf-1"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestBackup_RotateSnapshots_RequiresWorkflowID(t *testing.T) {
	service, _ := newBackupService(t)

	_, err := service.RotateSnapshots(t.Context(), "", 10)
	assert.ErrorIs(t, err, ErrWorkflowIDRequired)
}
