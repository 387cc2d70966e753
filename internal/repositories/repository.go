package repositories

import (
	"staylane/internal/database"
)

type Repository struct {
	User         UserRepository
	Property     PropertyRepository
	Pricing      PricingRepository
	RatePlan     RatePlanRepository
	Reservation  ReservationRepository
	Availability AvailabilityRepository
	Payout       PayoutRepository
	AuditLog     AuditLogRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:         NewUserRepository(db.Cache.Session),
		Property:     NewPropertyRepository(),
		Pricing:      NewPricingRepository(db.Cache.Pricing),
		RatePlan:     NewRatePlanRepository(),
		Reservation:  NewReservationRepository(),
		Availability: NewAvailabilityRepository(),
		Payout:       NewPayoutRepository(),
		AuditLog:     NewAuditLogRepository(),
	}
}
