package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nkko/flowvault/pkg/eventbus"
	"github.com/nkko/flowvault/pkg/events"
	"github.com/nkko/flowvault/pkg/locks"
)

// Locks exposes the advisory resource lock operations and the deletion guard
// built on them.
type Locks struct {
	manager locks.Manager
	logger  *slog.Logger

	// EventBus, when set, receives lock lifecycle events. Publish failures
	// are logged and swallowed.
	EventBus eventbus.EventPublisher
}

// NewLocks creates the lock service.
func NewLocks(manager locks.Manager, logger *slog.Logger) *Locks {
	return &Locks{
		manager: manager,
		logger:  logger,
	}
}

// AcquireLock records holderID as depending on resourceID.
func (l *Locks) AcquireLock(ctx context.Context, resourceID, holderID string) error {
	if err := requireIDs(resourceID, holderID); err != nil {
		return err
	}

	if err := l.manager.Acquire(ctx, resourceID, holderID); err != nil {
		return fmt.Errorf("failed to acquire lock on %s for %s: %w", resourceID, holderID, err)
	}

	l.publish(ctx, resourceID, events.LockAcquired{
		BaseEvent:  events.NewBaseEvent(events.LockAcquiredEvent, ""),
		ResourceID: resourceID,
		HolderID:   holderID,
	})

	return nil
}

// ReleaseLock drops one holder's claim on a resource.
func (l *Locks) ReleaseLock(ctx context.Context, resourceID, holderID string) error {
	if err := requireIDs(resourceID, holderID); err != nil {
		return err
	}

	if err := l.manager.Release(ctx, resourceID, holderID); err != nil {
		return fmt.Errorf("failed to release lock on %s for %s: %w", resourceID, holderID, err)
	}

	l.publish(ctx, resourceID, events.LockReleased{
		BaseEvent:  events.NewBaseEvent(events.LockReleasedEvent, ""),
		ResourceID: resourceID,
		HolderID:   holderID,
	})

	return nil
}

// ReleaseAllLocks drops every claim held by holderID, typically when an
// execution finishes.
func (l *Locks) ReleaseAllLocks(ctx context.Context, holderID string) error {
	if holderID == "" {
		return ErrHolderIDRequired
	}

	return l.manager.ReleaseAll(ctx, holderID)
}

// IsLocked reports whether any live holder remains on the resource.
func (l *Locks) IsLocked(ctx context.Context, resourceID string) (bool, error) {
	if resourceID == "" {
		return false, ErrResourceIDRequired
	}

	return l.manager.IsLocked(ctx, resourceID)
}

// Holders returns the live holder ids for the resource.
func (l *Locks) Holders(ctx context.Context, resourceID string) ([]string, error) {
	if resourceID == "" {
		return nil, ErrResourceIDRequired
	}

	return l.manager.Holders(ctx, resourceID)
}

// CheckDeletable guards a destructive operation: it fails with
// ErrResourceLocked while live holders remain, unless the caller forces.
// The lock is advisory; nothing waits or retries here.
func (l *Locks) CheckDeletable(ctx context.Context, resourceID string, force bool) error {
	if resourceID == "" {
		return ErrResourceIDRequired
	}

	if force {
		return nil
	}

	holders, err := l.manager.Holders(ctx, resourceID)
	if err != nil {
		return fmt.Errorf("failed to check locks on %s: %w", resourceID, err)
	}

	if len(holders) > 0 {
		return fmt.Errorf("%w: %s is held by %s", ErrResourceLocked, resourceID, strings.Join(holders, ", "))
	}

	return nil
}

func requireIDs(resourceID, holderID string) error {
	if resourceID == "" {
		return ErrResourceIDRequired
	}

	if holderID == "" {
		return ErrHolderIDRequired
	}

	return nil
}

func (l *Locks) publish(ctx context.Context, key string, event eventbus.Event) {
	if l.EventBus == nil {
		return
	}

	if err := l.EventBus.Publish(ctx, key, event); err != nil {
		l.logger.WarnContext(ctx, "Failed to publish lock event",
			"event_type", event.GetType(), "error", err)
	}
}
