// File: internal/jobs/audit_retention.go
package jobs

import (
	"context"
	"time"

	"backend_resources/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	runTimeout  = 5 * time.Minute
	stopTimeout = 10 * time.Second
)

// AuditPruner removes audit events older than a cutoff.
type AuditPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditRetentionJob periodically deletes provisioning audit events past their retention.
type AuditRetentionJob struct {
	pruner        AuditPruner
	logger        *zap.Logger
	schedule      string
	retention     time.Duration
	now           func() time.Time
	cronScheduler *cron.Cron
}

// NewAuditRetentionJob creates a new AuditRetentionJob.
func NewAuditRetentionJob(pruner AuditPruner, logger *zap.Logger, cfg *config.Config) *AuditRetentionJob {
	cl := NewCronLogger(logger.Named("cron"))
	scheduler := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	return &AuditRetentionJob{
		pruner:        pruner,
		logger:        logger.Named("AuditRetentionJob"),
		schedule:      cfg.AuditRetentionJobSchedule,
		retention:     time.Duration(cfg.AuditRetentionDays) * 24 * time.Hour,
		now:           time.Now,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job. An empty schedule disables it.
func (j *AuditRetentionJob) SetupAndStart() error {
	if j.schedule == "" {
		j.logger.Warn("Audit retention job schedule not defined (AUDIT_RETENTION_JOB_SCHEDULE). Job will not run.")
		return nil
	}
	if j.retention <= 0 {
		j.logger.Warn("Audit retention is not positive (AUDIT_RETENTION_DAYS). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(j.schedule, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule audit retention job", zap.String("spec", j.schedule), zap.Error(err))
		return err
	}

	j.logger.Info("Audit retention job scheduled",
		zap.String("spec", j.schedule),
		zap.Duration("retention", j.retention),
		zap.Int("jobID", int(jobID)),
	)
	j.cronScheduler.Start()
	return nil
}

// RunOnce deletes everything older than the retention window.
func (j *AuditRetentionJob) RunOnce(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.retention)
	return j.pruner.DeleteOlderThan(ctx, cutoff)
}

func (j *AuditRetentionJob) runJob() {
	j.logger.Info("Starting audit retention job run...")
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	deleted, err := j.RunOnce(ctx)
	if err != nil {
		j.logger.Error("Audit retention job run failed", zap.Error(err))
		return
	}
	j.logger.Info("Audit retention job run completed", zap.Int64("events_deleted", deleted))
}

// Stop gracefully stops the cron scheduler.
func (j *AuditRetentionJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	j.logger.Info("Stopping audit retention job scheduler...")
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Audit retention job scheduler stopped gracefully.")
	case <-time.After(stopTimeout):
		j.logger.Warn("Audit retention job scheduler stop timed out.")
	}
}
