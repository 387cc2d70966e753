package services

import (
	"staylane/internal/database"
	"staylane/internal/repositories"
	"staylane/internal/utils"
)

type Service struct {
	Transaction        *TransactionService
	Scheduler          *SchedulerService
	Pricing            *PricingService
	Eligibility        *RatePlanEligibilityService
	CancellationPolicy *CancellationPolicyService
	AuditLedger        *AuditLedgerService
	Clock              utils.Clock
}

func New(db database.DB, repos repositories.Repository, clock utils.Clock) Service {
	return Service{
		Transaction:        NewTransactionService(db),
		Scheduler:          NewSchedulerService(),
		Pricing:            NewPricingService(repos),
		Eligibility:        NewRatePlanEligibilityService(),
		CancellationPolicy: NewCancellationPolicyService(),
		AuditLedger:        NewAuditLedgerService(db, repos, clock),
		Clock:              clock,
	}
}
