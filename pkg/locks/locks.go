// Package locks guards shared resources (credentials in use by in-flight
// executions) against deletion. Locks are advisory: nothing blocks or waits,
// callers query before acting and decide whether to force.
package locks

import (
	"context"
	"time"
)

// DefaultTTL is how long a lock entry stays valid without release. Entries
// older than this are stale and purged lazily on the next query.
const DefaultTTL = 15 * time.Minute

// Manager records which holders currently depend on which resources. A
// resource may have many holders and a holder may hold many resources.
type Manager interface {
	// Acquire records holderID as depending on resourceID.
	Acquire(ctx context.Context, resourceID, holderID string) error

	// Release drops one holder's claim on a resource.
	Release(ctx context.Context, resourceID, holderID string) error

	// ReleaseAll drops every claim held by holderID.
	ReleaseAll(ctx context.Context, holderID string) error

	// IsLocked reports whether any live holder remains on the resource.
	IsLocked(ctx context.Context, resourceID string) (bool, error)

	// Holders returns the live holder ids for the resource.
	Holders(ctx context.Context, resourceID string) ([]string, error)
}
