package job

import (
	"context"
	"time"

	"github.com/xxxsen/mslide/internal/repo"
)

type ConflictCleanupJob struct {
	conflicts *repo.ConflictRepo
	retain    time.Duration
}

func NewConflictCleanupJob(conflicts *repo.ConflictRepo, retain time.Duration) *ConflictCleanupJob {
	return &ConflictCleanupJob{conflicts: conflicts, retain: retain}
}

func (j *ConflictCleanupJob) Name() string {
	return "conflict_cleanup"
}

// Run removes resolved merge conflicts older than the retention window.
// Pending conflicts are never touched.
func (j *ConflictCleanupJob) Run(ctx context.Context) error {
	if j.conflicts == nil {
		return nil
	}
	retain := j.retain
	if retain <= 0 {
		retain = 7 * 24 * time.Hour
	}
	cutoff := time.Now().Add(-retain).Unix()
	_, err := j.conflicts.DeleteResolvedBefore(ctx, cutoff)
	return err
}
