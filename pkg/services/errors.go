// Package services exposes the integrity engine's operations to thin-wrapper
// callers: snapshot management, structural/expression validation, linting and
// resource lock guarding.
package services

import (
	"errors"
	"fmt"

	"github.com/nkko/flowvault/pkg/backup"
	"github.com/nkko/flowvault/pkg/platform"
)

// Input errors: the request itself is malformed.
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrWorkflowIDRequired = errors.New("workflow id is required")
	ErrBackupIDRequired   = errors.New("backup id is required")
	ErrWorkflowNil        = errors.New("workflow cannot be nil")
	ErrResourceIDRequired = errors.New("resource id is required")
	ErrHolderIDRequired   = errors.New("holder id is required")
)

// ErrResourceLocked indicates a destructive operation was refused because
// live holders remain on the resource.
var ErrResourceLocked = errors.New("resource is locked")

// ServiceError wraps service-level errors with operation context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{Op: op, Code: code, Message: message, Err: err}
}

// IsValidationError reports whether an error is an input error (HTTP 400).
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowIDRequired) ||
		errors.Is(err, ErrBackupIDRequired) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrResourceIDRequired) ||
		errors.Is(err, ErrHolderIDRequired) ||
		errors.Is(err, backup.ErrInvalidBackupID)
}

// IsNotFoundError reports whether an error maps to HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, backup.ErrBackupNotFound) ||
		errors.Is(err, platform.ErrWorkflowNotFound)
}

// IsIntegrityError reports whether an error is an integrity failure that
// blocks the operation entirely (HTTP 422).
func IsIntegrityError(err error) bool {
	return errors.Is(err, backup.ErrCorruptedBackup) ||
		errors.Is(err, backup.ErrDuplicateNodeNames)
}

// IsResourceError reports whether an error is a resource guard rejection
// raised before any write occurred.
func IsResourceError(err error) bool {
	return errors.Is(err, backup.ErrPayloadTooLarge) ||
		errors.Is(err, backup.ErrInsufficientDiskSpace)
}

// IsConflictError reports whether an error maps to HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrResourceLocked)
}
