package pricingController

import (
	"context"
	"fmt"
	"strings"
	"time"

	"staylane/config"
	"staylane/internal/constants"
	"staylane/internal/database"
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

// WeeklyPricingRequest carries both schedules indexed by weekday, Sunday first.
type WeeklyPricingRequest struct {
	FullDayPrices [7]decimal.Decimal `json:"fullDayPrices"`
	HalfDayPrices [7]decimal.Decimal `json:"halfDayPrices"`
}

type DateOverrideRequest struct {
	Date         time.Time        `json:"date"                   validate:"required"`
	Price        decimal.Decimal  `json:"price"`
	HalfDayPrice *decimal.Decimal `json:"halfDayPrice,omitempty"`
	Reason       *string          `json:"reason,omitempty"       validate:"omitempty,max=255"`
}

type CancellationPolicyRequest struct {
	Type                 CancellationPolicyType `json:"type"                           validate:"required,oneof=non_refundable fully_flexible moderate"`
	FreeCancellationDays *int                   `json:"freeCancellationDays,omitempty" validate:"omitempty,min=0,max=365"`
	PartialRefundDays    *int                   `json:"partialRefundDays,omitempty"    validate:"omitempty,min=0,max=365"`
}

type RatePlanRequest struct {
	Name               string                     `json:"name"                         validate:"required,max=100"`
	Description        string                     `json:"description"                  validate:"max=1000"`
	IsActive           *bool                      `json:"isActive,omitempty"`
	Priority           int                        `json:"priority"                     validate:"min=0,max=1000"`
	ModifierType       ModifierType               `json:"modifierType"                 validate:"required,oneof=percentage fixed_amount"`
	ModifierValue      decimal.Decimal            `json:"modifierValue"`
	MinStay            *int                       `json:"minStay,omitempty"            validate:"omitempty,min=1"`
	MaxStay            *int                       `json:"maxStay,omitempty"            validate:"omitempty,min=1"`
	MinAdvanceBooking  *int                       `json:"minAdvanceBooking,omitempty"  validate:"omitempty,min=0"`
	MaxAdvanceBooking  *int                       `json:"maxAdvanceBooking,omitempty"  validate:"omitempty,min=0"`
	MinGuests          *int                       `json:"minGuests,omitempty"          validate:"omitempty,min=1"`
	MaxGuests          *int                       `json:"maxGuests,omitempty"          validate:"omitempty,min=1"`
	Features           []string                   `json:"features"                     validate:"max=20,dive,required,max=100"`
	CancellationPolicy *CancellationPolicyRequest `json:"cancellationPolicy,omitempty"`
}

type PricingControllerInterface interface {
	SetWeeklyPricing(
		ctx context.Context,
		user *User,
		propertyID uuid.UUID,
		request WeeklyPricingRequest,
	) (*WeeklyPricing, error)
	UpsertDateOverride(
		ctx context.Context,
		user *User,
		propertyID uuid.UUID,
		request DateOverrideRequest,
	) (*DateOverride, error)
	DeleteDateOverride(ctx context.Context, user *User, propertyID uuid.UUID, date time.Time) error
	ListDateOverrides(ctx context.Context, user *User, propertyID uuid.UUID) ([]*DateOverride, error)
	CreateRatePlan(
		ctx context.Context,
		user *User,
		propertyID uuid.UUID,
		request RatePlanRequest,
	) (*RatePlan, error)
	UpdateRatePlan(
		ctx context.Context,
		user *User,
		propertyID uuid.UUID,
		planID uuid.UUID,
		request RatePlanRequest,
	) (*RatePlan, error)
	DeactivateRatePlan(ctx context.Context, user *User, propertyID uuid.UUID, planID uuid.UUID) error
	ListRatePlans(ctx context.Context, user *User, propertyID uuid.UUID) ([]*RatePlan, error)
}

type PricingController struct {
	propertyRepo       repositories.PropertyRepository
	pricingRepo        repositories.PricingRepository
	ratePlanRepo       repositories.RatePlanRepository
	transactionService *services.TransactionService
	clock              utils.Clock
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) PricingControllerInterface {
	return &PricingController{
		propertyRepo:       repos.Property,
		pricingRepo:        repos.Pricing,
		ratePlanRepo:       repos.RatePlan,
		transactionService: services.Transaction,
		clock:              services.Clock,
		db:                 db,
		Config:             config,
		log:                logger.New("pricingController"),
	}
}

// ownedProperty loads the property when user may manage it. Admins manage any property.
func (c *PricingController) ownedProperty(
	ctx context.Context,
	tx *gorm.DB,
	user *User,
	propertyID uuid.UUID,
) (*Property, error) {
	if user.IsElevated() {
		return c.propertyRepo.GetByID(ctx, tx, propertyID)
	}
	return c.propertyRepo.GetOwnedBy(ctx, tx, propertyID, user.ID)
}

func validationError(err error) error {
	return fmt.Errorf("%w: %s", types.ErrValidation, err.Error())
}

func (c *PricingController) SetWeeklyPricing(
	ctx context.Context,
	user *User,
	propertyID uuid.UUID,
	request WeeklyPricingRequest,
) (*WeeklyPricing, error) {
	log := c.log.Function("SetWeeklyPricing")

	tx := c.db.SQLWithContext(ctx)
	property, err := c.ownedProperty(ctx, tx, user, propertyID)
	if err != nil {
		return nil, err
	}

	pricing := &WeeklyPricing{PropertyID: property.ID}
	pricing.SetPrices(request.FullDayPrices, request.HalfDayPrices)
	if err := pricing.Validate(); err != nil {
		return nil, err
	}

	if err := c.pricingRepo.SaveWeeklyPricing(ctx, tx, pricing); err != nil {
		return nil, err
	}

	log.Info("Weekly pricing updated", "propertyID", property.ID, "userID", user.ID)
	return pricing, nil
}

// checkFutureDate rejects dates before today.
func (c *PricingController) checkFutureDate(date time.Time) (time.Time, error) {
	date = utils.DateOnly(date)
	if date.Before(utils.DateOnly(c.clock.Now())) {
		return date, fmt.Errorf("%w: %s", types.ErrPastDate, utils.FormatDate(date))
	}
	return date, nil
}

func (c *PricingController) UpsertDateOverride(
	ctx context.Context,
	user *User,
	propertyID uuid.UUID,
	request DateOverrideRequest,
) (*DateOverride, error) {
	if err := validate.Struct(request); err != nil {
		return nil, validationError(err)
	}

	date, err := c.checkFutureDate(request.Date)
	if err != nil {
		return nil, err
	}

	tx := c.db.SQLWithContext(ctx)
	property, err := c.ownedProperty(ctx, tx, user, propertyID)
	if err != nil {
		return nil, err
	}

	override := &DateOverride{
		PropertyID:   property.ID,
		Date:         date,
		Price:        request.Price,
		HalfDayPrice: request.HalfDayPrice,
	}
	if request.Reason != nil {
		if reason := strings.TrimSpace(*request.Reason); reason != "" {
			override.Reason = &reason
		}
	}
	if err := override.Validate(); err != nil {
		return nil, err
	}

	if err := c.pricingRepo.SaveOverride(ctx, tx, override); err != nil {
		return nil, err
	}

	return override, nil
}

func (c *PricingController) DeleteDateOverride(
	ctx context.Context,
	user *User,
	propertyID uuid.UUID,
	date time.Time,
) error {
	date, err := c.checkFutureDate(date)
	if err != nil {
		return err
	}

	tx := c.db.SQLWithContext(ctx)
	if _, err := c.ownedProperty(ctx, tx, user, propertyID); err != nil {
		return err
	}

	return c.pricingRepo.DeleteOverride(ctx, tx, propertyID, date)
}

// ListDateOverrides returns today's and future overrides, earliest first.
func (c *PricingController) ListDateOverrides(
	ctx context.Context,
	user *User,
	propertyID uuid.UUID,
) ([]*DateOverride, error) {
	tx := c.db.SQLWithContext(ctx)
	if _, err := c.ownedProperty(ctx, tx, user, propertyID); err != nil {
		return nil, err
	}

	return c.pricingRepo.ListOverrides(ctx, tx, propertyID, utils.DateOnly(c.clock.Now()))
}

func checkRange(name string, min, max *int) error {
	if min != nil && max != nil && *min > *max {
		return fmt.Errorf("%w: min %s %d exceeds max %d", types.ErrValidation, name, *min, *max)
	}
	return nil
}

var minPercentage = decimal.NewFromInt(-100)

func validateRatePlan(request *RatePlanRequest) error {
	request.Name = strings.TrimSpace(request.Name)
	if err := validate.Struct(request); err != nil {
		return validationError(err)
	}

	if request.ModifierType == ModifierPercentage && request.ModifierValue.LessThan(minPercentage) {
		return fmt.Errorf("%w: percentage modifier below -100", types.ErrValidation)
	}
	if request.ModifierValue.Abs().GreaterThan(constants.MaxPrice) {
		return fmt.Errorf("%w: modifier value out of range", types.ErrValidation)
	}

	if err := checkRange("stay", request.MinStay, request.MaxStay); err != nil {
		return err
	}
	if err := checkRange("advance booking", request.MinAdvanceBooking, request.MaxAdvanceBooking); err != nil {
		return err
	}
	if err := checkRange("guests", request.MinGuests, request.MaxGuests); err != nil {
		return err
	}

	if policy := request.CancellationPolicy; policy != nil && policy.Type == PolicyModerate {
		free := constants.DefaultModerateFreeCancellationDays
		if policy.FreeCancellationDays != nil {
			free = *policy.FreeCancellationDays
		}
		partial := constants.DefaultModeratePartialRefundDays
		if policy.PartialRefundDays != nil {
			partial = *policy.PartialRefundDays
		}
		if partial > free {
			return fmt.Errorf(
				"%w: partial refund threshold %d exceeds free cancellation threshold %d",
				types.ErrValidation,
				partial,
				free,
			)
		}
	}

	return nil
}

// applyRequest copies request onto plan. Constraints absent from the request are cleared.
func applyRequest(plan *RatePlan, request RatePlanRequest) {
	plan.Name = request.Name
	plan.Description = request.Description
	plan.Priority = request.Priority
	plan.ModifierType = request.ModifierType
	plan.ModifierValue = request.ModifierValue.Round(constants.MoneyScale)
	plan.MinStay = request.MinStay
	plan.MaxStay = request.MaxStay
	plan.MinAdvance = request.MinAdvanceBooking
	plan.MaxAdvance = request.MaxAdvanceBooking
	plan.MinGuests = request.MinGuests
	plan.MaxGuests = request.MaxGuests

	plan.Features = request.Features
	if plan.Features == nil {
		plan.Features = []string{}
	}

	if request.IsActive != nil {
		plan.IsActive = *request.IsActive
	}

	plan.CancellationPolicy = nil
	if request.CancellationPolicy != nil {
		plan.CancellationPolicy = &CancellationPolicy{
			Type:                 request.CancellationPolicy.Type,
			FreeCancellationDays: request.CancellationPolicy.FreeCancellationDays,
			PartialRefundDays:    request.CancellationPolicy.PartialRefundDays,
		}
	}
}

func (c *PricingController) CreateRatePlan(
	ctx context.Context,
	user *User,
	propertyID uuid.UUID,
	request RatePlanRequest,
) (*RatePlan, error) {
	log := c.log.Function("CreateRatePlan")

	if err := validateRatePlan(&request); err != nil {
		return nil, err
	}

	plan := &RatePlan{IsActive: true}
	applyRequest(plan, request)

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		property, err := c.ownedProperty(ctx, tx, user, propertyID)
		if err != nil {
			return err
		}

		plan.PropertyID = property.ID
		return c.ratePlanRepo.Create(ctx, tx, plan)
	})
	if err != nil {
		return nil, err
	}

	log.Info("Rate plan created", "planID", plan.ID, "propertyID", propertyID)
	return plan, nil
}

func (c *PricingController) UpdateRatePlan(
	ctx context.Context,
	user *User,
	propertyID uuid.UUID,
	planID uuid.UUID,
	request RatePlanRequest,
) (*RatePlan, error) {
	if err := validateRatePlan(&request); err != nil {
		return nil, err
	}

	var plan *RatePlan
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := c.ownedProperty(ctx, tx, user, propertyID); err != nil {
			return err
		}

		existing, err := c.ratePlanRepo.GetByID(ctx, tx, propertyID, planID)
		if err != nil {
			return err
		}

		applyRequest(existing, request)
		if err := c.ratePlanRepo.Update(ctx, tx, existing); err != nil {
			return err
		}

		plan = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// DeactivateRatePlan hides a plan from new bookings. Existing reservations keep it.
func (c *PricingController) DeactivateRatePlan(
	ctx context.Context,
	user *User,
	propertyID uuid.UUID,
	planID uuid.UUID,
) error {
	tx := c.db.SQLWithContext(ctx)
	if _, err := c.ownedProperty(ctx, tx, user, propertyID); err != nil {
		return err
	}

	return c.ratePlanRepo.Deactivate(ctx, tx, propertyID, planID)
}

func (c *PricingController) ListRatePlans(
	ctx context.Context,
	user *User,
	propertyID uuid.UUID,
) ([]*RatePlan, error) {
	tx := c.db.SQLWithContext(ctx)
	if _, err := c.ownedProperty(ctx, tx, user, propertyID); err != nil {
		return nil, err
	}

	return c.ratePlanRepo.ListByProperty(ctx, tx, propertyID)
}
