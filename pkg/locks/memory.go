package locks

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryManager is the canonical lock manager: process-local, in-memory,
// non-persistent. It gives no cross-process guarantee; that is a known
// limitation of the deployment model, not an oversight.
type MemoryManager struct {
	mu    sync.Mutex
	locks map[string]map[string]time.Time // resource -> holder -> acquiredAt
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryManager creates an in-memory lock manager. A non-positive ttl
// falls back to DefaultTTL.
func NewMemoryManager(ttl time.Duration) *MemoryManager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &MemoryManager{
		locks: make(map[string]map[string]time.Time),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *MemoryManager) Acquire(_ context.Context, resourceID, holderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	holders, ok := m.locks[resourceID]
	if !ok {
		holders = make(map[string]time.Time)
		m.locks[resourceID] = holders
	}

	holders[holderID] = m.now()

	return nil
}

func (m *MemoryManager) Release(_ context.Context, resourceID, holderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if holders, ok := m.locks[resourceID]; ok {
		delete(holders, holderID)

		if len(holders) == 0 {
			delete(m.locks, resourceID)
		}
	}

	return nil
}

func (m *MemoryManager) ReleaseAll(_ context.Context, holderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for resourceID, holders := range m.locks {
		delete(holders, holderID)

		if len(holders) == 0 {
			delete(m.locks, resourceID)
		}
	}

	return nil
}

func (m *MemoryManager) IsLocked(_ context.Context, resourceID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purgeStale(resourceID)

	return len(m.locks[resourceID]) > 0, nil
}

func (m *MemoryManager) Holders(_ context.Context, resourceID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purgeStale(resourceID)

	holders := make([]string, 0, len(m.locks[resourceID]))
	for holderID := range m.locks[resourceID] {
		holders = append(holders, holderID)
	}

	sort.Strings(holders)

	return holders, nil
}

// purgeStale drops entries past the TTL. Cleanup is a side effect of query
// only; there is no background sweeper. Callers must hold m.mu.
func (m *MemoryManager) purgeStale(resourceID string) {
	holders, ok := m.locks[resourceID]
	if !ok {
		return
	}

	cutoff := m.now().Add(-m.ttl)

	for holderID, acquiredAt := range holders {
		if acquiredAt.Before(cutoff) {
			delete(holders, holderID)
		}
	}

	if len(holders) == 0 {
		delete(m.locks, resourceID)
	}
}
