package services

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nkko/flowvault/pkg/backup"
	"github.com/nkko/flowvault/pkg/models"
	"github.com/nkko/flowvault/pkg/otelhelper"
)

// Backup exposes the snapshot store operations with request validation and
// optional tracing.
type Backup struct {
	store    *backup.Store
	logger   *slog.Logger
	validate *validator.Validate

	// Tracer, when set, wraps each operation in a span.
	Tracer trace.Tracer
}

// NewBackup creates the backup service.
func NewBackup(store *backup.Store, logger *slog.Logger) *Backup {
	return &Backup{
		store:    store,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// CreateSnapshotRequest asks for a new snapshot of a workflow's current
// remote state.
type CreateSnapshotRequest struct {
	WorkflowID  string `json:"workflowId"  validate:"required"`
	Description string `json:"description"`
}

// CreateSnapshot snapshots the workflow and returns the stored metadata.
func (b *Backup) CreateSnapshot(ctx context.Context, req CreateSnapshotRequest) (*models.SnapshotInfo, error) {
	if err := b.validate.Struct(req); err != nil {
		return nil, NewValidationError("CreateSnapshot", "INVALID_REQUEST", err.Error(), ErrWorkflowIDRequired)
	}

	ctx, span := b.startSpan(ctx, "backup.create",
		attribute.String(otelhelper.WorkflowIDKey, req.WorkflowID))
	defer span.End()

	info, err := b.store.Create(ctx, req.WorkflowID, req.Description)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	b.logger.InfoContext(ctx, "Created snapshot",
		"workflow_id", req.WorkflowID, "backup_id", info.BackupID, "size", info.Size)

	return info, nil
}

// ListSnapshots returns all snapshots of a workflow, newest first. A workflow
// with no backups yields an empty list.
func (b *Backup) ListSnapshots(ctx context.Context, workflowID string) ([]models.SnapshotInfo, error) {
	if workflowID == "" {
		return nil, ErrWorkflowIDRequired
	}

	return b.store.List(ctx, workflowID)
}

// RestoreSnapshotRequest asks for a workflow to be reset to a prior snapshot.
// AutoBackupCurrent defaults to true: the current remote state is snapshotted
// first so the restore is undoable.
type RestoreSnapshotRequest struct {
	WorkflowID        string `json:"workflowId" validate:"required"`
	BackupID          string `json:"backupId"   validate:"required"`
	AutoBackupCurrent *bool  `json:"autoBackupCurrent,omitempty"`
}

// RestoreSnapshot pushes the snapshot's workflow back to the platform.
func (b *Backup) RestoreSnapshot(ctx context.Context, req RestoreSnapshotRequest) (*backup.RestoreResult, error) {
	if err := b.validate.Struct(req); err != nil {
		if req.WorkflowID == "" {
			return nil, NewValidationError("RestoreSnapshot", "INVALID_REQUEST", err.Error(), ErrWorkflowIDRequired)
		}

		return nil, NewValidationError("RestoreSnapshot", "INVALID_REQUEST", err.Error(), ErrBackupIDRequired)
	}

	autoBackup := true
	if req.AutoBackupCurrent != nil {
		autoBackup = *req.AutoBackupCurrent
	}

	ctx, span := b.startSpan(ctx, "backup.restore",
		attribute.String(otelhelper.WorkflowIDKey, req.WorkflowID),
		attribute.String(otelhelper.BackupIDKey, req.BackupID))
	defer span.End()

	result, err := b.store.Restore(ctx, req.WorkflowID, req.BackupID, autoBackup)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	b.logger.InfoContext(ctx, "Restored snapshot",
		"workflow_id", req.WorkflowID, "backup_id", req.BackupID, "auto_backup", autoBackup)

	return result, nil
}

// DiffSnapshotsRequest names the two snapshots to compare.
type DiffSnapshotsRequest struct {
	WorkflowID string `json:"workflowId" validate:"required"`
	BackupID1  string `json:"backupId1"  validate:"required"`
	BackupID2  string `json:"backupId2"  validate:"required"`
}

// DiffSnapshots computes the node-level change set between two snapshots.
func (b *Backup) DiffSnapshots(ctx context.Context, req DiffSnapshotsRequest) (*models.WorkflowDiff, error) {
	if err := b.validate.Struct(req); err != nil {
		return nil, NewValidationError("DiffSnapshots", "INVALID_REQUEST", err.Error(), ErrInvalidRequest)
	}

	return b.store.Diff(ctx, req.WorkflowID, req.BackupID1, req.BackupID2)
}

// RotateSnapshots applies retention, deleting the oldest snapshots beyond
// keepLast. It returns the deleted backup ids.
func (b *Backup) RotateSnapshots(ctx context.Context, workflowID string, keepLast int) ([]string, error) {
	if workflowID == "" {
		return nil, ErrWorkflowIDRequired
	}

	deleted, err := b.store.Rotate(ctx, workflowID, keepLast)
	if err != nil {
		return nil, err
	}

	if len(deleted) > 0 {
		b.logger.InfoContext(ctx, "Rotated snapshots",
			"workflow_id", workflowID, "deleted", len(deleted), "keep_last", keepLast)
	}

	return deleted, nil
}

// startSpan opens a span when a tracer is configured; otherwise it returns a
// no-op span.
func (b *Backup) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if b.Tracer == nil {
		return trace.ContextWithSpan(ctx, trace.SpanFromContext(ctx)), trace.SpanFromContext(ctx)
	}

	return otelhelper.StartSpan(ctx, b.Tracer, name, attrs...)
}
