// Package backup is the versioned snapshot store: it creates, lists, restores,
// rotates and diffs point-in-time snapshots of workflows on disk. Writes are
// atomic (temp file + rename) and every path is checked by pathguard first.
package backup

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBackupID indicates an id that does not match the backup id grammar.
	ErrInvalidBackupID = errors.New("invalid backup id")

	// ErrBackupNotFound indicates no snapshot file exists for the given id.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrCorruptedBackup indicates a snapshot file whose structure is not a
	// valid snapshot document.
	ErrCorruptedBackup = errors.New("corrupted backup")

	// ErrPayloadTooLarge indicates a workflow above the hard size limit.
	ErrPayloadTooLarge = errors.New("workflow payload exceeds maximum backup size")

	// ErrInsufficientDiskSpace indicates the target filesystem definitely
	// lacks room for the snapshot. An unavailable probe never raises this.
	ErrInsufficientDiskSpace = errors.New("insufficient disk space for backup")

	// ErrDuplicateNodeNames indicates diff input whose name-keyed comparison
	// would silently collapse nodes.
	ErrDuplicateNodeNames = errors.New("snapshot contains duplicate node names")
)

// BackupError wraps backup operations with enough context to be actionable
// without a stack trace.
type BackupError struct {
	Op         string
	WorkflowID string
	BackupID   string
	Err        error
}

func (e *BackupError) Error() string {
	if e.BackupID != "" {
		return fmt.Sprintf("%s failed for backup %s of workflow %s: %v", e.Op, e.BackupID, e.WorkflowID, e.Err)
	}

	return fmt.Sprintf("%s failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *BackupError) Unwrap() error {
	return e.Err
}

func (e *BackupError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewBackupError creates a backup error with workflow context.
func NewBackupError(op, workflowID string, err error) *BackupError {
	return &BackupError{Op: op, WorkflowID: workflowID, Err: err}
}
