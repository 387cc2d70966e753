package controllers

import (
	"staylane/config"
	"staylane/internal/database"
	"staylane/internal/events"
	"staylane/internal/repositories"
	"staylane/internal/services"

	auditController "staylane/internal/controllers/audit"
	bookingController "staylane/internal/controllers/booking"
	cancellationController "staylane/internal/controllers/cancellation"
	pricingController "staylane/internal/controllers/pricing"
)

type Controllers struct {
	Booking      bookingController.BookingControllerInterface
	Cancellation cancellationController.CancellationControllerInterface
	Audit        auditController.AuditControllerInterface
	Pricing      pricingController.PricingControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Booking:      bookingController.New(repos, services, config, db),
		Cancellation: cancellationController.New(repos, services, eventBus, config, db),
		Audit:        auditController.New(repos, services, config, db),
		Pricing:      pricingController.New(repos, services, config, db),
	}
}
