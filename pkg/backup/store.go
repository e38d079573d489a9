package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nkko/flowvault/pkg/eventbus"
	"github.com/nkko/flowvault/pkg/events"
	"github.com/nkko/flowvault/pkg/models"
	"github.com/nkko/flowvault/pkg/pathguard"
	"github.com/nkko/flowvault/pkg/platform"
)

// DefaultKeepLast is the rotation retention count.
const DefaultKeepLast = 10

// Store owns the on-disk snapshot tree rooted at its backup root. Callers
// never construct snapshot file paths themselves; ParseBackupID is the only
// mapping from logical id to physical location.
type Store struct {
	root   string
	client platform.Client
	logger *slog.Logger

	// KeepLast is the retention count rotation enforces. Zero means
	// DefaultKeepLast.
	KeepLast int

	// EventBus, when set, receives backup lifecycle events. Publish
	// failures are logged and swallowed.
	EventBus eventbus.EventPublisher
}

// NewStore creates a snapshot store over the given backup root.
func NewStore(root string, client platform.Client, logger *slog.Logger) *Store {
	return &Store{
		root:     root,
		client:   client,
		logger:   logger,
		KeepLast: DefaultKeepLast,
	}
}

// RestoreResult reports what a restore did: the workflow pushed back to the
// platform and, when auto-backup ran, the recovery snapshot taken first.
type RestoreResult struct {
	Restored      *models.Workflow     `json:"restored"`
	CurrentBackup *models.SnapshotInfo `json:"currentBackup,omitempty"`
}

// Create snapshots the workflow's current remote state onto disk. The write
// is temp-file-then-rename so a concurrent reader never observes a
// half-written snapshot; rotation runs afterward as best-effort housekeeping.
func (s *Store) Create(ctx context.Context, workflowID, description string) (*models.SnapshotInfo, error) {
	sanitized, err := pathguard.SanitizeIdentifier(workflowID)
	if err != nil {
		return nil, NewBackupError("Create", workflowID, err)
	}

	workflow, err := s.client.FetchWorkflow(ctx, workflowID)
	if err != nil {
		return nil, NewBackupError("Create", workflowID, err)
	}

	estimated, err := pathguard.EstimateSize(workflow)
	if err != nil {
		return nil, NewBackupError("Create", workflowID, err)
	}

	if estimated > pathguard.MaxSizeBytes {
		return nil, NewBackupError("Create", workflowID, fmt.Errorf(
			"%w: estimated %s", ErrPayloadTooLarge, pathguard.FormatSize(estimated)))
	}

	if estimated > pathguard.WarnSizeBytes {
		s.logger.WarnContext(ctx, "Workflow payload is unusually large",
			"workflow_id", workflowID, "estimated_size", pathguard.FormatSize(estimated))
	}

	dir := filepath.Join(s.root, sanitized)

	if err := pathguard.ValidateSafePath(dir, s.root); err != nil {
		return nil, NewBackupError("Create", workflowID, err)
	}

	if err := s.checkDiskSpace(ctx, estimated); err != nil {
		return nil, NewBackupError("Create", workflowID, err)
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, NewBackupError("Create", workflowID, fmt.Errorf("failed to create backup directory: %w", err))
	}

	now := time.Now().UTC()
	timestamp := fsTimestamp(now)

	nonce, err := newNonce()
	if err != nil {
		return nil, NewBackupError("Create", workflowID, err)
	}

	snapshot := &models.Snapshot{
		Metadata: models.SnapshotMetadata{
			BackupID:     MakeBackupID(sanitized, timestamp, nonce),
			WorkflowID:   sanitized,
			WorkflowName: workflow.Name,
			Timestamp:    now.Format(timestampLayout),
			Description:  description,
		},
		Workflow: workflow,
	}

	path := filepath.Join(dir, snapshotFileName(timestamp, nonce))

	if err := pathguard.ValidateSafePath(path, s.root); err != nil {
		return nil, NewBackupError("Create", workflowID, err)
	}

	written, err := s.writeAtomically(path, snapshot, estimated)
	if err != nil {
		return nil, NewBackupError("Create", workflowID, err)
	}

	// Rotation is not transactional with creation: a crash in between
	// leaves an extra snapshot that self-heals on the next create.
	if _, err := s.Rotate(ctx, workflowID, s.keepLast()); err != nil {
		s.logger.WarnContext(ctx, "Rotation after backup failed",
			"workflow_id", workflowID, "error", err)
	}

	info := &models.SnapshotInfo{
		SnapshotMetadata: snapshot.Metadata,
		SizeBytes:        written,
		Size:             pathguard.FormatSize(written),
	}

	s.publish(ctx, workflowID, events.BackupCreated{
		BaseEvent:    events.NewBaseEvent(events.BackupCreatedEvent, workflowID),
		BackupID:     snapshot.Metadata.BackupID,
		WorkflowName: workflow.Name,
		SizeBytes:    written,
	})

	return info, nil
}

// writeAtomically serializes the snapshot into a temp file in the target
// directory and renames it into place. Large payloads go through the
// incremental encoder instead of one marshal buffer.
func (s *Store) writeAtomically(path string, snapshot *models.Snapshot, estimated int64) (int64, error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".backup-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if estimated > pathguard.StreamSizeBytes {
		err = json.NewEncoder(tmp).Encode(snapshot)
	} else {
		var data []byte

		data, err = json.MarshalIndent(snapshot, "", "  ")
		if err == nil {
			_, err = tmp.Write(data)
		}
	}

	if err != nil {
		cleanup()

		return 0, fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()

		return 0, fmt.Errorf("failed to sync snapshot: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return 0, fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)

		return 0, fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	return info.Size(), nil
}

// checkDiskSpace rejects a backup only when the filesystem definitely lacks
// room. A failed probe degrades silently; backing up blind beats not backing
// up at all.
func (s *Store) checkDiskSpace(ctx context.Context, required int64) error {
	free, ok := freeSpace(s.root)
	if !ok {
		s.logger.DebugContext(ctx, "Free-space probe unavailable, skipping disk check")

		return nil
	}

	if free < required+freeSpaceMargin {
		return fmt.Errorf("%w: %s free, %s required",
			ErrInsufficientDiskSpace, pathguard.FormatSize(free), pathguard.FormatSize(required+freeSpaceMargin))
	}

	return nil
}

// List returns every snapshot of the workflow, newest first. A missing
// directory means no backups, not an error. A single unreadable file is
// reported as a corrupt entry rather than aborting (or hiding) the rest.
func (s *Store) List(ctx context.Context, workflowID string) ([]models.SnapshotInfo, error) {
	sanitized, err := pathguard.SanitizeIdentifier(workflowID)
	if err != nil {
		return nil, NewBackupError("List", workflowID, err)
	}

	dir := filepath.Join(s.root, sanitized)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []models.SnapshotInfo{}, nil
	}

	if err != nil {
		return nil, NewBackupError("List", workflowID, fmt.Errorf("failed to read backup directory: %w", err))
	}

	infos := make([]models.SnapshotInfo, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		info, err := s.GetMetadata(filepath.Join(dir, entry.Name()))
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping unreadable snapshot file",
				"workflow_id", workflowID, "file", entry.Name(), "error", err)

			infos = append(infos, models.SnapshotInfo{
				SnapshotMetadata: models.SnapshotMetadata{
					BackupID:    entry.Name(),
					WorkflowID:  sanitized,
					Description: fmt.Sprintf("unreadable backup file: %v", err),
				},
			})

			continue
		}

		infos = append(infos, *info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp > infos[j].Timestamp
	})

	return infos, nil
}

// GetMetadata reads one snapshot file and projects its display fields,
// including the physical file size.
func (s *Store) GetMetadata(path string) (*models.SnapshotInfo, error) {
	if err := pathguard.ValidateSafePath(path, s.root); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot models.Snapshot

	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptedBackup, err)
	}

	if snapshot.Metadata.BackupID == "" {
		return nil, fmt.Errorf("%w: missing metadata", ErrCorruptedBackup)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	return &models.SnapshotInfo{
		SnapshotMetadata: snapshot.Metadata,
		SizeBytes:        stat.Size(),
		Size:             pathguard.FormatSize(stat.Size()),
	}, nil
}

// Restore pushes a snapshot's workflow back to the platform. Unless disabled,
// it first snapshots the current remote state so the restore itself is
// undoable; if that auto-backup fails the restore does not proceed.
func (s *Store) Restore(ctx context.Context, workflowID, backupID string, autoBackupCurrent bool) (*RestoreResult, error) {
	result := &RestoreResult{}

	if autoBackupCurrent {
		current, err := s.Create(ctx, workflowID, "auto backup before restore of "+backupID)
		if err != nil {
			return nil, NewBackupError("Restore", workflowID, fmt.Errorf("auto backup failed: %w", err))
		}

		result.CurrentBackup = current
	}

	snapshot, err := s.loadSnapshot(backupID)
	if err != nil {
		return nil, &BackupError{Op: "Restore", WorkflowID: workflowID, BackupID: backupID, Err: err}
	}

	restored, err := s.client.PushWorkflow(ctx, workflowID, snapshot.Workflow)
	if err != nil {
		// The auto-backup above remains on disk as a valid recovery
		// point even though the remote update failed.
		return nil, &BackupError{Op: "Restore", WorkflowID: workflowID, BackupID: backupID, Err: err}
	}

	result.Restored = restored

	autoBackupID := ""
	if result.CurrentBackup != nil {
		autoBackupID = result.CurrentBackup.BackupID
	}

	s.publish(ctx, workflowID, events.BackupRestored{
		BaseEvent:    events.NewBaseEvent(events.BackupRestoredEvent, workflowID),
		BackupID:     backupID,
		AutoBackupID: autoBackupID,
	})

	return result, nil
}

// loadSnapshot locates a snapshot by id, checks its document structure and
// decodes it.
func (s *Store) loadSnapshot(backupID string) (*models.Snapshot, error) {
	path, err := s.snapshotPath(backupID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, backupID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if err := validateSnapshotDocument(data); err != nil {
		return nil, err
	}

	var snapshot models.Snapshot

	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptedBackup, err)
	}

	return &snapshot, nil
}

// snapshotPath re-derives the physical file path from a backup id.
func (s *Store) snapshotPath(backupID string) (string, error) {
	workflowID, timestamp, nonce, err := ParseBackupID(backupID)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.root, workflowID, snapshotFileName(timestamp, nonce))

	if err := pathguard.ValidateSafePath(path, s.root); err != nil {
		return "", err
	}

	return path, nil
}

// Rotate deletes the oldest snapshots beyond keepLast. Deletion failures are
// logged and skipped; rotation never blocks the backup that triggered it.
func (s *Store) Rotate(ctx context.Context, workflowID string, keepLast int) ([]string, error) {
	if keepLast <= 0 {
		keepLast = s.keepLast()
	}

	infos, err := s.List(ctx, workflowID)
	if err != nil {
		return nil, NewBackupError("Rotate", workflowID, err)
	}

	if len(infos) <= keepLast {
		return nil, nil
	}

	// List is newest-first; the tail beyond keepLast is the oldest excess.
	excess := infos[keepLast:]
	deleted := make([]string, 0, len(excess))

	for _, info := range excess {
		path, err := s.snapshotPath(info.BackupID)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping rotation of snapshot with unparseable id",
				"workflow_id", workflowID, "backup_id", info.BackupID, "error", err)

			continue
		}

		if err := os.Remove(path); err != nil {
			s.logger.WarnContext(ctx, "Failed to delete rotated snapshot",
				"workflow_id", workflowID, "backup_id", info.BackupID, "error", err)

			continue
		}

		deleted = append(deleted, info.BackupID)
	}

	if len(deleted) > 0 {
		s.publish(ctx, workflowID, events.BackupRotated{
			BaseEvent: events.NewBaseEvent(events.BackupRotatedEvent, workflowID),
			Deleted:   deleted,
			Kept:      keepLast,
		})
	}

	return deleted, nil
}

func (s *Store) keepLast() int {
	if s.KeepLast > 0 {
		return s.KeepLast
	}

	return DefaultKeepLast
}

// publish sends a lifecycle event when a bus is configured. Event delivery is
// observability, not correctness; failures are logged and swallowed.
func (s *Store) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.EventBus == nil {
		return
	}

	if err := s.EventBus.Publish(ctx, key, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish backup event",
			"event_type", event.GetType(), "error", err)
	}
}
