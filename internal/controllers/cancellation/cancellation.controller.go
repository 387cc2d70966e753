package cancellationController

import (
	"context"
	"fmt"
	"strings"
	"time"

	"staylane/config"
	"staylane/internal/constants"
	"staylane/internal/database"
	"staylane/internal/events"
	. "staylane/internal/models"
	"staylane/internal/repositories"
	"staylane/internal/services"
	"staylane/internal/types"
	"staylane/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

const (
	InitiatedByGuest = "guest"
	InitiatedByHost  = "host"
)

type CancellationPreview struct {
	ReservationID     uuid.UUID              `json:"reservationId"`
	TotalPrice        decimal.Decimal        `json:"totalPrice"`
	RefundAmount      decimal.Decimal        `json:"refundAmount"`
	CancellationFee   decimal.Decimal        `json:"cancellationFee"`
	RefundPercentage  int                    `json:"refundPercentage"`
	DaysBeforeCheckIn int                    `json:"daysBeforeCheckIn"`
	PolicyType        CancellationPolicyType `json:"policyType"`
	PolicySummary     string                 `json:"policySummary"`
	IsHostInitiated   bool                   `json:"isHostInitiated"`
}

type CancellationRequest struct {
	ReservationID  uuid.UUID `json:"reservationId"  validate:"required"`
	UserID         uuid.UUID `json:"userId"         validate:"required"`
	Reason         string    `json:"reason"         validate:"required,max=1000"`
	ReasonCategory string    `json:"reasonCategory" validate:"required,oneof=change_of_plans emergency weather travel_restrictions property_issue host_unavailable other"`
	InitiatedBy    string    `json:"initiatedBy"    validate:"required,oneof=guest host"`
}

type CancellationDetails struct {
	RefundAmount      decimal.Decimal `json:"refundAmount"`
	CancellationFee   decimal.Decimal `json:"cancellationFee"`
	RefundPercentage  int             `json:"refundPercentage"`
	DaysBeforeCheckIn int             `json:"daysBeforeCheckIn"`
	CancelledBy       uuid.UUID       `json:"cancelledBy"`
	InitiatedBy       string          `json:"initiatedBy"`
	CancelledAt       time.Time       `json:"cancelledAt"`
	Reason            string          `json:"reason"`
	ReasonCategory    string          `json:"reasonCategory"`
	PayoutID          *uuid.UUID      `json:"payoutId,omitempty"`
}

type CancellationResult struct {
	Reservation         *Reservation        `json:"reservation"`
	CancellationDetails CancellationDetails `json:"cancellationDetails"`
}

type CancellationControllerInterface interface {
	GetCancellationPreview(
		ctx context.Context,
		reservationID uuid.UUID,
		actingUserID uuid.UUID,
	) (*CancellationPreview, error)
	ProcessCancellation(ctx context.Context, request CancellationRequest) (*CancellationResult, error)
}

type CancellationController struct {
	reservationRepo    repositories.ReservationRepository
	propertyRepo       repositories.PropertyRepository
	ratePlanRepo       repositories.RatePlanRepository
	availabilityRepo   repositories.AvailabilityRepository
	payoutRepo         repositories.PayoutRepository
	userRepo           repositories.UserRepository
	transactionService *services.TransactionService
	cancellationPolicy *services.CancellationPolicyService
	auditLedger        *services.AuditLedgerService
	clock              utils.Clock
	eventBus           *events.EventBus
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) CancellationControllerInterface {
	return &CancellationController{
		reservationRepo:    repos.Reservation,
		propertyRepo:       repos.Property,
		ratePlanRepo:       repos.RatePlan,
		availabilityRepo:   repos.Availability,
		payoutRepo:         repos.Payout,
		userRepo:           repos.User,
		transactionService: services.Transaction,
		cancellationPolicy: services.CancellationPolicy,
		auditLedger:        services.AuditLedger,
		clock:              services.Clock,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
		log:                logger.New("cancellationController"),
	}
}

// actorRole works out whether actingUserID may cancel reservation and in
// which capacity. Owners of the property act as host.
func (c *CancellationController) actorRole(
	ctx context.Context,
	tx *gorm.DB,
	reservation *Reservation,
	actingUserID uuid.UUID,
) (isGuest bool, isHost bool, err error) {
	property, err := c.propertyRepo.GetByID(ctx, tx, reservation.PropertyID)
	if err != nil {
		return false, false, err
	}

	isGuest = reservation.GuestID == actingUserID
	isHost = property.IsOwnedBy(actingUserID)
	if !isGuest && !isHost {
		return false, false, types.ErrPermissionDenied
	}
	return isGuest, isHost, nil
}

// preview computes the refund for reservation as it stands in tx. It is run
// again on the locked row when the cancellation is applied.
func (c *CancellationController) preview(
	ctx context.Context,
	tx *gorm.DB,
	reservation *Reservation,
	hostInitiated bool,
	now time.Time,
) (*CancellationPreview, error) {
	switch {
	case reservation.IsCancelled():
		return nil, types.ErrAlreadyCancelled
	case reservation.IsNoShow():
		return nil, types.ErrCannotCancelNoShow
	}

	days := utils.DaysBeforeCheckIn(now, reservation.CheckIn)
	if days < 0 {
		return nil, types.ErrPastCheckIn
	}

	var policy *CancellationPolicy
	if reservation.RatePlanID != nil {
		var err error
		policy, err = c.ratePlanRepo.GetPolicy(ctx, tx, *reservation.RatePlanID)
		if err != nil {
			return nil, err
		}
	}

	refund, err := c.cancellationPolicy.Refund(policy, reservation.TotalPrice, days, hostInitiated)
	if err != nil {
		return nil, err
	}

	policyType := DefaultCancellationPolicy().Type
	if policy != nil {
		policyType = policy.Type
	}

	return &CancellationPreview{
		ReservationID:     reservation.ID,
		TotalPrice:        reservation.TotalPrice,
		RefundAmount:      refund.RefundAmount,
		CancellationFee:   refund.CancellationFee,
		RefundPercentage:  refund.RefundPercentage,
		DaysBeforeCheckIn: days,
		PolicyType:        policyType,
		PolicySummary:     c.cancellationPolicy.DescribePolicy(policy),
		IsHostInitiated:   hostInitiated,
	}, nil
}

func (c *CancellationController) GetCancellationPreview(
	ctx context.Context,
	reservationID uuid.UUID,
	actingUserID uuid.UUID,
) (*CancellationPreview, error) {
	tx := c.db.SQLWithContext(ctx)

	reservation, err := c.reservationRepo.GetByID(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}

	_, isHost, err := c.actorRole(ctx, tx, reservation, actingUserID)
	if err != nil {
		return nil, err
	}

	return c.preview(ctx, tx, reservation, isHost, c.clock.Now())
}

func validateRequest(request *CancellationRequest) error {
	request.Reason = strings.TrimSpace(request.Reason)
	if err := validate.Struct(request); err != nil {
		return fmt.Errorf("%w: %s", types.ErrValidation, err.Error())
	}
	return nil
}

func cancellationNote(existing string, at time.Time, actor *User, initiatedBy string, reason string) string {
	note := fmt.Sprintf(
		"[%s] Cancelled by %s %s: %s",
		at.Format(time.RFC3339),
		initiatedBy,
		actor.DisplayName,
		reason,
	)
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}

// ProcessCancellation cancels a reservation, releases its nights, records the
// audit entry and schedules any refund in one transaction. The refund is
// recomputed from the locked row, never taken from the caller.
func (c *CancellationController) ProcessCancellation(
	ctx context.Context,
	request CancellationRequest,
) (*CancellationResult, error) {
	log := c.log.Function("ProcessCancellation")

	if err := validateRequest(&request); err != nil {
		return nil, err
	}

	actor, err := c.userRepo.GetByID(ctx, c.db.SQLWithContext(ctx), request.UserID)
	if err != nil {
		return nil, err
	}

	var result *CancellationResult
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		reservation, err := c.reservationRepo.GetByIDForUpdate(ctx, tx, request.ReservationID)
		if err != nil {
			return err
		}

		isGuest, isHost, err := c.actorRole(ctx, tx, reservation, actor.ID)
		if err != nil {
			return err
		}
		hostInitiated := request.InitiatedBy == InitiatedByHost
		if (hostInitiated && !isHost) || (!hostInitiated && !isGuest) {
			return fmt.Errorf("%w: user cannot cancel as %s", types.ErrPermissionDenied, request.InitiatedBy)
		}

		now := c.clock.Now()
		preview, err := c.preview(ctx, tx, reservation, hostInitiated, now)
		if err != nil {
			return err
		}

		oldStatus := reservation.Status
		notes := cancellationNote(reservation.Notes, now, actor, request.InitiatedBy, request.Reason)

		if err := c.reservationRepo.MarkCancelled(ctx, tx, reservation.ID, repositories.CancellationUpdate{
			CancelledAt: now,
			CancelledBy: actor.ID,
			Reason:      request.Reason,
			Category:    request.ReasonCategory,
			Notes:       notes,
		}); err != nil {
			return err
		}

		if _, err := c.auditLedger.LogChange(
			ctx,
			tx,
			reservation.ID,
			actor.ID,
			actor.Role,
			AuditActionCancelled,
			services.ChangeDetails{
				Field:    utils.Ptr("status"),
				OldValue: utils.Ptr(string(oldStatus)),
				NewValue: utils.Ptr(string(ReservationCancelled)),
				Metadata: map[string]any{
					"refundAmount":     preview.RefundAmount.StringFixed(constants.MoneyScale),
					"cancellationFee":  preview.CancellationFee.StringFixed(constants.MoneyScale),
					"refundPercentage": preview.RefundPercentage,
					"reason":           request.Reason,
					"reasonCategory":   request.ReasonCategory,
					"initiatedBy":      request.InitiatedBy,
				},
			},
		); err != nil {
			return err
		}

		released, err := c.availabilityRepo.ReleaseDates(ctx, tx, reservation.PropertyID, reservation.StayDates())
		if err != nil {
			return err
		}

		var payoutID *uuid.UUID
		if preview.RefundAmount.IsPositive() {
			payout := &Payout{
				ReservationID: reservation.ID,
				PropertyID:    reservation.PropertyID,
				RecipientID:   reservation.GuestID,
				Amount:        preview.RefundAmount.Neg(),
				Type:          PayoutTypeRefund,
				Status:        PayoutScheduled,
				ScheduledAt:   now,
				Description: fmt.Sprintf(
					"%d%% refund for cancelled reservation %s",
					preview.RefundPercentage,
					reservation.ID,
				),
			}
			if err := c.payoutRepo.Create(ctx, tx, payout); err != nil {
				return err
			}
			payoutID = &payout.ID
		}

		reservation.Status = ReservationCancelled
		reservation.Notes = notes
		reservation.CancelledAt = &now
		reservation.CancelledBy = &actor.ID
		reservation.CancellationReason = &request.Reason
		reservation.CancellationCategory = &request.ReasonCategory

		log.Info(
			"Reservation cancelled",
			"reservationID", reservation.ID,
			"initiatedBy", request.InitiatedBy,
			"refundPercentage", preview.RefundPercentage,
			"releasedNights", released,
		)

		result = &CancellationResult{
			Reservation: reservation,
			CancellationDetails: CancellationDetails{
				RefundAmount:      preview.RefundAmount,
				CancellationFee:   preview.CancellationFee,
				RefundPercentage:  preview.RefundPercentage,
				DaysBeforeCheckIn: preview.DaysBeforeCheckIn,
				CancelledBy:       actor.ID,
				InitiatedBy:       request.InitiatedBy,
				CancelledAt:       now,
				Reason:            request.Reason,
				ReasonCategory:    request.ReasonCategory,
				PayoutID:          payoutID,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publishCancelled(result)
	return result, nil
}

// publishCancelled notifies listeners after commit. Failures are logged only.
func (c *CancellationController) publishCancelled(result *CancellationResult) {
	if c.eventBus == nil {
		return
	}

	details := result.CancellationDetails
	if err := c.eventBus.PublishReservationCancelled(events.ReservationCancelled{
		ReservationID:    result.Reservation.ID,
		PropertyID:       result.Reservation.PropertyID,
		GuestID:          result.Reservation.GuestID,
		CancelledBy:      details.CancelledBy,
		InitiatedBy:      details.InitiatedBy,
		RefundAmount:     details.RefundAmount.StringFixed(constants.MoneyScale),
		RefundPercentage: details.RefundPercentage,
		CancelledAt:      details.CancelledAt,
	}); err != nil {
		c.log.Function("publishCancelled").Warn(
			"failed to publish cancellation event",
			"reservationID", result.Reservation.ID,
			"error", err,
		)
	}
}
