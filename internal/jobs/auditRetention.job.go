package jobs

import (
	"context"

	"staylane/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type AuditPurger interface {
	PurgeExpired(ctx context.Context, retentionDays int) (int64, error)
}

// AuditRetentionJob deletes audit entries older than the retention window.
type AuditRetentionJob struct {
	purger        AuditPurger
	retentionDays int
	log           logger.Logger
	schedule      services.Schedule
}

func NewAuditRetentionJob(
	purger AuditPurger,
	retentionDays int,
	schedule services.Schedule,
) *AuditRetentionJob {
	log := logger.New("auditRetentionJob")
	log.Info("Creating new audit retention job", "schedule", schedule, "retentionDays", retentionDays)

	return &AuditRetentionJob{
		purger:        purger,
		retentionDays: retentionDays,
		log:           log,
		schedule:      schedule,
	}
}

func (j *AuditRetentionJob) Name() string {
	return "AuditRetention"
}

func (j *AuditRetentionJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	deleted, err := j.purger.PurgeExpired(ctx, j.retentionDays)
	if err != nil {
		return log.Err("audit retention purge failed", err, "retentionDays", j.retentionDays)
	}

	log.Info("Audit retention purge completed", "deleted", deleted)
	return nil
}

func (j *AuditRetentionJob) Schedule() services.Schedule {
	return j.schedule
}
