package sounds

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"voicepad/internal/logger"
)

// DefaultOrphanGrace keeps Reconcile away from files written by uploads that
// may still be committing.
const DefaultOrphanGrace = time.Hour

// ReconcileReport lists drift between the asset store and the sounds table.
type ReconcileReport struct {
	// Orphans are stored files no sound references.
	Orphans []string
	// Missing are file paths recorded on sounds but absent from storage.
	Missing []string
	// Skipped are orphans younger than the grace period.
	Skipped []string
	// Deleted are orphans removed in this run.
	Deleted []string
}

// Reconcile compares the files under KeyPrefix with the paths recorded on
// sounds. With deleteOrphans it removes orphans older than grace.
func (m *Manager) Reconcile(ctx context.Context, deleteOrphans bool, grace time.Duration) (ReconcileReport, error) {
	var report ReconcileReport

	keys, err := m.files.List(ctx, KeyPrefix)
	if err != nil {
		return report, fmt.Errorf("list stored files: %w", err)
	}
	paths, err := m.sounds.FilePaths(ctx, 0)
	if err != nil {
		return report, fmt.Errorf("list sound files: %w", err)
	}

	stored := make(map[string]bool, len(keys))
	for _, k := range keys {
		stored[k] = true
	}
	referenced := make(map[string]bool, len(paths))
	for _, p := range paths {
		referenced[p] = true
		if !stored[p] {
			report.Missing = append(report.Missing, p)
		}
	}

	cutoff := m.now().Add(-grace)
	for _, k := range keys {
		if referenced[k] {
			continue
		}
		report.Orphans = append(report.Orphans, k)
		if t, ok := keyTime(k); ok && t.After(cutoff) {
			report.Skipped = append(report.Skipped, k)
			continue
		}
		if !deleteOrphans {
			continue
		}
		if err := m.files.Delete(ctx, k); err != nil {
			logger.Warn("failed to delete orphaned file", zap.String("key", k), zap.Error(err))
			continue
		}
		report.Deleted = append(report.Deleted, k)
	}

	logger.Info("reconcile finished",
		zap.Int("stored", len(keys)), zap.Int("referenced", len(paths)),
		zap.Int("orphans", len(report.Orphans)), zap.Int("missing", len(report.Missing)),
		zap.Int("deleted", len(report.Deleted)))
	return report, nil
}
