package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Job is a unit of background work driven by the scheduler. Run receives
// the scheduler's lifetime context and should return once the sweep is done.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler interface {
	AddJob(job Job, spec string) error
	Start(ctx context.Context)
	Stop()
}

// guardedJob skips a tick if the previous run of the same job is still
// in flight; sweeps over large tables must never overlap themselves.
type guardedJob struct {
	job     Job
	spec    string
	running atomic.Bool
	ctx     func() context.Context
}

func (g *guardedJob) tick() {
	logger := logutil.GetLogger(context.Background()).With(
		zap.String("job", g.job.Name()),
		zap.String("spec", g.spec),
	)
	if !g.running.CompareAndSwap(false, true) {
		logger.Info("previous run still active, skipping tick")
		return
	}
	defer g.running.Store(false)

	ctx := g.ctx()
	start := time.Now()
	logger.Info("job started")
	if err := g.job.Run(ctx); err != nil {
		logger.Error("job finished", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return
	}
	logger.Info("job finished", zap.Duration("duration", time.Since(start)))
}

type CronScheduler struct {
	cron  *cron.Cron
	names []string
	ctx   context.Context
}

func NewCronScheduler() *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &CronScheduler{
		cron: cron.New(cron.WithParser(parser)),
	}
}

func (c *CronScheduler) AddJob(job Job, spec string) error {
	guarded := &guardedJob{job: job, spec: spec, ctx: c.runContext}
	if _, err := c.cron.AddFunc(spec, guarded.tick); err != nil {
		logutil.GetLogger(context.Background()).Error("schedule job failed",
			zap.String("job", job.Name()), zap.String("spec", spec), zap.Error(err))
		return err
	}
	c.names = append(c.names, job.Name())
	return nil
}

func (c *CronScheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
	c.cron.Start()
	logutil.GetLogger(ctx).Info("scheduler started", zap.Strings("jobs", c.names))
}

// Stop halts the cron loop and waits for in-flight runs to return.
func (c *CronScheduler) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("scheduler stopped")
}

func (c *CronScheduler) runContext() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}
