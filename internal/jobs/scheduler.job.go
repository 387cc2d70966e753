package jobs

import (
	"staylane/config"
	"staylane/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	cfg config.Config,
	svc services.Service,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")

	if !cfg.SchedulerEnabled {
		log.Info("Scheduler disabled, skipping job registration")
		return nil
	}

	schedule, ok := services.ParseSchedule(cfg.AuditRetentionSchedule)
	if !ok {
		return log.Error("unknown audit retention schedule", "schedule", cfg.AuditRetentionSchedule)
	}

	retentionDays := cfg.AuditRetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultAuditRetentionDays
	}

	auditRetentionJob := NewAuditRetentionJob(svc.AuditLedger, retentionDays, schedule)
	if err := schedulerService.AddJob(auditRetentionJob); err != nil {
		return log.Err("failed to register audit retention job", err)
	}
	log.Info("Registered audit retention job", "schedule", schedule)

	return nil
}
