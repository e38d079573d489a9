package backup

import (
	"context"
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"
)

// RotationScheduler periodically sweeps every workflow directory under the
// backup root and applies rotation. Sweeps are housekeeping: any failure is
// logged and the next run tries again.
type RotationScheduler struct {
	store    *Store
	logger   *slog.Logger
	schedule string
	cron     *cron.Cron
}

// NewRotationScheduler creates a scheduler running on the given cron
// expression (standard five-field syntax).
func NewRotationScheduler(store *Store, logger *slog.Logger, schedule string) *RotationScheduler {
	return &RotationScheduler{
		store:    store,
		logger:   logger,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start registers the sweep and begins the cron loop.
func (rs *RotationScheduler) Start(ctx context.Context) error {
	_, err := rs.cron.AddFunc(rs.schedule, func() {
		rs.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	rs.cron.Start()

	return nil
}

// Stop halts the cron loop, waiting for a running sweep to finish.
func (rs *RotationScheduler) Stop() {
	<-rs.cron.Stop().Done()
}

// Sweep rotates every workflow directory once.
func (rs *RotationScheduler) Sweep(ctx context.Context) {
	entries, err := os.ReadDir(rs.store.root)
	if err != nil {
		rs.logger.WarnContext(ctx, "Rotation sweep could not read backup root", "error", err)

		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		deleted, err := rs.store.Rotate(ctx, entry.Name(), rs.store.keepLast())
		if err != nil {
			rs.logger.WarnContext(ctx, "Rotation sweep failed for workflow",
				"workflow_id", entry.Name(), "error", err)

			continue
		}

		if len(deleted) > 0 {
			rs.logger.InfoContext(ctx, "Rotated snapshots",
				"workflow_id", entry.Name(), "deleted", len(deleted))
		}
	}
}
