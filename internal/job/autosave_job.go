package job

import (
	"context"

	"github.com/xxxsen/mslide/internal/service"
)

type AutoSaveJob struct {
	versions    *service.VersionService
	maxPerSweep int
}

func NewAutoSaveJob(versions *service.VersionService, maxPerSweep int) *AutoSaveJob {
	return &AutoSaveJob{versions: versions, maxPerSweep: maxPerSweep}
}

func (j *AutoSaveJob) Name() string {
	return "auto_save"
}

func (j *AutoSaveJob) Run(ctx context.Context) error {
	if j.versions == nil {
		return nil
	}
	_, err := j.versions.AutoSaveSweep(ctx, j.maxPerSweep)
	return err
}
