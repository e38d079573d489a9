package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/nkko/flowvault/pkg/locks"
)

// NewLockManager creates a lock manager from a connection URL. An empty URL
// or "memory" selects the in-process manager; redis:// selects the shared
// Redis-backed manager.
func NewLockManager(url string, ttl time.Duration) locks.Manager {
	switch {
	case url == "" || url == "memory":
		return locks.NewMemoryManager(ttl)
	case strings.HasPrefix(url, "redis://"):
		manager, err := locks.NewRedisManager(url, ttl)
		if err != nil {
			panic(fmt.Errorf("failed to create Redis lock manager: %w", err))
		}

		return manager
	default:
		panic("Unsupported lock manager URL: " + url)
	}
}
