package models

// SnapshotMetadata identifies one point-in-time snapshot of a workflow.
// BackupID is derived from the workflow id, a filesystem-safe timestamp and a
// random nonce; the same triple derives the physical file name, so the id is
// the sole key needed to relocate the file later.
type SnapshotMetadata struct {
	BackupID     string `json:"backupId"     validate:"required"`
	WorkflowID   string `json:"workflowId"   validate:"required"`
	WorkflowName string `json:"workflowName"`
	Timestamp    string `json:"timestamp"    validate:"required"`
	Description  string `json:"description,omitempty"`
}

// Snapshot is the on-disk document: metadata plus the full workflow
// definition. Snapshots are immutable once written.
type Snapshot struct {
	Metadata SnapshotMetadata `json:"metadata"`
	Workflow *Workflow        `json:"workflow"`
}

// SnapshotInfo is the listing/display projection of a snapshot: its metadata
// plus the size of the file backing it.
type SnapshotInfo struct {
	SnapshotMetadata

	SizeBytes int64  `json:"sizeBytes"`
	Size      string `json:"size"`
}

// WorkflowDiff is the node-level difference between two snapshots, keyed by
// node name.
type WorkflowDiff struct {
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
	Modified []string `json:"modified"`
	Summary  string   `json:"summary"`
}
