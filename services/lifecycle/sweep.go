package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ExpireOldWarnings transitions every active warning past its expiry to
// expired in one bulk update. Safe to re-run: the predicate only matches
// documents not yet transitioned, so a second sweep affects zero rows.
func (e *Engine) ExpireOldWarnings(ctx context.Context) (int64, error) {
	count, err := e.Warnings.ExpireDue(e.now())
	if err != nil {
		return 0, fmt.Errorf("warning expiry sweep failed: %w", err)
	}
	if count > 0 {
		e.Logger.Info("expired warnings", zap.Int64("count", count))
	}
	return count, nil
}

// SyncWarningCounts reconciles the cached warningsCount on profiles with the
// actual number of active warning documents. The warning collection is the
// source of truth; write paths never increment the cached counter inline.
func (e *Engine) SyncWarningCounts(ctx context.Context) (int, error) {
	counts, err := e.Warnings.CountActiveByProfile()
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate warning counts: %w", err)
	}

	synced := 0
	activeIDs := make([]string, 0, len(counts))
	for profileID, count := range counts {
		activeIDs = append(activeIDs, profileID)
		if err := e.Profiles.SetWarningCount(profileID, count); err != nil {
			// One missing profile must not abort the reconciliation run.
			e.Logger.Warn("failed to sync warning count",
				zap.String("profileId", profileID),
				zap.Error(err),
			)
			continue
		}
		synced++
	}

	// The aggregation only yields profiles with at least one active warning,
	// so a profile whose last active warning resolved or expired never shows
	// up in it. Its cached counter still has to come back down to zero.
	cleared, err := e.Profiles.ClearWarningCounts(activeIDs)
	if err != nil {
		return synced, fmt.Errorf("failed to clear stale warning counts: %w", err)
	}
	synced += int(cleared)

	e.Logger.Info("warning counts synced",
		zap.Int("profiles", synced),
		zap.Int64("cleared", cleared),
	)
	return synced, nil
}

// CleanupExpiredWarnings hard-deletes expired warnings whose expiry predates
// the retention window. The only hard-delete path for warnings.
func (e *Engine) CleanupExpiredWarnings(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, &ValidationError{Field: "retention", Message: "retention must be positive"}
	}
	cutoff := e.now().Add(-retention)
	count, err := e.Warnings.DeleteExpiredBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("warning retention cleanup failed: %w", err)
	}
	if count > 0 {
		e.Logger.Info("cleaned up expired warnings",
			zap.Int64("count", count),
			zap.Time("cutoff", cutoff),
		)
	}
	return count, nil
}
