// Package events defines the lifecycle notifications the integrity engine
// publishes: snapshot creation, restore, rotation and lock activity.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic is the single stream all integrity events go out on.
const Topic = "flowvault.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	BackupCreatedEvent  EventType = "backup.created"
	BackupRestoredEvent EventType = "backup.restored"
	BackupRotatedEvent  EventType = "backup.rotated"
	LockAcquiredEvent   EventType = "lock.acquired"
	LockReleasedEvent   EventType = "lock.released"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id,omitempty"`
}

// NewBaseEvent stamps a fresh event envelope.
func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

type BackupCreated struct {
	BaseEvent

	BackupID     string `json:"backup_id"`
	WorkflowName string `json:"workflow_name,omitempty"`
	SizeBytes    int64  `json:"size_bytes"`
}

func (e BackupCreated) GetType() EventType {
	return BackupCreatedEvent
}

type BackupRestored struct {
	BaseEvent

	BackupID     string `json:"backup_id"`
	AutoBackupID string `json:"auto_backup_id,omitempty"`
}

func (e BackupRestored) GetType() EventType {
	return BackupRestoredEvent
}

type BackupRotated struct {
	BaseEvent

	Deleted []string `json:"deleted"`
	Kept    int      `json:"kept"`
}

func (e BackupRotated) GetType() EventType {
	return BackupRotatedEvent
}

type LockAcquired struct {
	BaseEvent

	ResourceID string `json:"resource_id"`
	HolderID   string `json:"holder_id"`
}

func (e LockAcquired) GetType() EventType {
	return LockAcquiredEvent
}

type LockReleased struct {
	BaseEvent

	ResourceID string `json:"resource_id"`
	HolderID   string `json:"holder_id"`
}

func (e LockReleased) GetType() EventType {
	return LockReleasedEvent
}
