package bookingController

import (
	"context"
	"fmt"
	"sort"
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

type BookingCriteria struct {
	PropertyID uuid.UUID `json:"propertyId" validate:"required"`
	CheckIn    time.Time `json:"checkIn"    validate:"required"`
	CheckOut   time.Time `json:"checkOut"   validate:"required"`
	GuestCount int       `json:"guestCount" validate:"min=1"`
	IsHalfDay  bool      `json:"isHalfDay"`
}

// BookingOption is one bookable price for a stay: the Standard Rate or a rate plan.
type BookingOption struct {
	RatePlanID          *uuid.UUID             `json:"ratePlanId,omitempty"`
	Name                string                 `json:"name"`
	Description         string                 `json:"description"`
	IsStandardRate      bool                   `json:"isStandardRate"`
	Nights              int                    `json:"nights"`
	BaseTotal           decimal.Decimal        `json:"baseTotal"`
	TotalPrice          decimal.Decimal        `json:"totalPrice"`
	AverageNightlyPrice decimal.Decimal        `json:"averageNightlyPrice"`
	Savings             decimal.Decimal        `json:"savings"`
	Features            []string               `json:"features"`
	CancellationPolicy  CancellationPolicyType `json:"cancellationPolicy"`
	CancellationSummary string                 `json:"cancellationSummary"`
	NightlyPrices       []services.NightlyPrice `json:"nightlyPrices"`
}

type BookingOptions struct {
	PropertyID uuid.UUID       `json:"propertyId"`
	CheckIn    string          `json:"checkIn"`
	CheckOut   string          `json:"checkOut"`
	Nights     int             `json:"nights"`
	GuestCount int             `json:"guestCount"`
	IsHalfDay  bool            `json:"isHalfDay"`
	BaseTotal  decimal.Decimal `json:"baseTotal"`
	Options    []BookingOption `json:"options"`
}

type BookingControllerInterface interface {
	CalculateBookingOptions(ctx context.Context, criteria BookingCriteria) (*BookingOptions, error)
	CalculateBookingPrice(
		ctx context.Context,
		criteria BookingCriteria,
		ratePlanID *uuid.UUID,
	) (*BookingOption, error)
}

type BookingController struct {
	propertyRepo       repositories.PropertyRepository
	ratePlanRepo       repositories.RatePlanRepository
	pricingService     *services.PricingService
	eligibility        *services.RatePlanEligibilityService
	cancellationPolicy *services.CancellationPolicyService
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
) BookingControllerInterface {
	return &BookingController{
		propertyRepo:       repos.Property,
		ratePlanRepo:       repos.RatePlan,
		pricingService:     services.Pricing,
		eligibility:        services.Eligibility,
		cancellationPolicy: services.CancellationPolicy,
		clock:              services.Clock,
		db:                 db,
		Config:             config,
		log:                logger.New("bookingController"),
	}
}

// stayQuote is the priced, validated stay every option is derived from.
type stayQuote struct {
	criteria  BookingCriteria
	nights    []services.NightlyPrice
	baseTotal decimal.Decimal
	profile   services.StayProfile
}

func (c *BookingController) quoteStay(
	ctx context.Context,
	tx *gorm.DB,
	criteria BookingCriteria,
) (*stayQuote, error) {
	if err := validate.Struct(criteria); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrValidation, err.Error())
	}

	criteria.CheckIn = utils.DateOnly(criteria.CheckIn)
	criteria.CheckOut = utils.DateOnly(criteria.CheckOut)

	nightCount := utils.NightsBetween(criteria.CheckIn, criteria.CheckOut)
	if nightCount <= 0 {
		return nil, types.ErrInvalidDateRange
	}

	property, err := c.propertyRepo.GetByID(ctx, tx, criteria.PropertyID)
	if err != nil {
		return nil, err
	}
	if !property.IsBookable() {
		return nil, types.ErrPropertyNotBookable
	}

	nights, err := c.pricingService.ResolveStay(
		ctx,
		tx,
		property.ID,
		criteria.CheckIn,
		criteria.CheckOut,
		criteria.IsHalfDay,
	)
	if err != nil {
		return nil, err
	}

	prices := make([]decimal.Decimal, len(nights))
	for i, night := range nights {
		prices[i] = night.Price
	}

	return &stayQuote{
		criteria:  criteria,
		nights:    nights,
		baseTotal: services.SumNights(prices),
		profile: services.StayProfile{
			Nights:        nightCount,
			DaysInAdvance: utils.DaysInAdvance(c.clock.Now(), criteria.CheckIn),
			GuestCount:    criteria.GuestCount,
		},
	}, nil
}

func (c *BookingController) standardOption(quote *stayQuote) BookingOption {
	policy := DefaultCancellationPolicy()

	return BookingOption{
		Name:                constants.StandardRateName,
		Description:         constants.StandardRateDescription,
		IsStandardRate:      true,
		Nights:              len(quote.nights),
		BaseTotal:           quote.baseTotal,
		TotalPrice:          quote.baseTotal,
		AverageNightlyPrice: averageNightly(quote.baseTotal, len(quote.nights)),
		Savings:             decimal.Zero,
		Features:            []string{},
		CancellationPolicy:  policy.Type,
		CancellationSummary: c.cancellationPolicy.DescribePolicy(&policy),
		NightlyPrices:       quote.nights,
	}
}

// planOption reprices every night under the plan's modifier. Nights are rounded
// individually before summing.
func (c *BookingController) planOption(quote *stayQuote, plan *RatePlan) (BookingOption, error) {
	modifier, err := plan.Modifier()
	if err != nil {
		return BookingOption{}, err
	}

	nights := make([]services.NightlyPrice, len(quote.nights))
	prices := make([]decimal.Decimal, len(quote.nights))
	for i, night := range quote.nights {
		adjusted, err := services.ApplyModifier(night.Price, modifier)
		if err != nil {
			return BookingOption{}, err
		}
		night.Price = adjusted
		nights[i] = night
		prices[i] = adjusted
	}

	total := services.SumNights(prices)

	policy := plan.CancellationPolicy
	if policy == nil {
		defaultPolicy := DefaultCancellationPolicy()
		policy = &defaultPolicy
	}

	features := []string(plan.Features)
	if features == nil {
		features = []string{}
	}

	planID := plan.ID
	return BookingOption{
		RatePlanID:          &planID,
		Name:                plan.Name,
		Description:         plan.Description,
		Nights:              len(nights),
		BaseTotal:           quote.baseTotal,
		TotalPrice:          total,
		AverageNightlyPrice: averageNightly(total, len(nights)),
		Savings:             quote.baseTotal.Sub(total),
		Features:            features,
		CancellationPolicy:  policy.Type,
		CancellationSummary: c.cancellationPolicy.DescribePolicy(policy),
		NightlyPrices:       nights,
	}, nil
}

func averageNightly(total decimal.Decimal, nights int) decimal.Decimal {
	if nights == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(nights))).Round(constants.MoneyScale)
}

// CalculateBookingOptions returns the Standard Rate plus every eligible active
// plan, cheapest first. Equal totals keep discovery order: Standard Rate, then
// plans by priority.
func (c *BookingController) CalculateBookingOptions(
	ctx context.Context,
	criteria BookingCriteria,
) (*BookingOptions, error) {
	log := c.log.Function("CalculateBookingOptions")

	tx := c.db.SQLWithContext(ctx)

	quote, err := c.quoteStay(ctx, tx, criteria)
	if err != nil {
		return nil, err
	}

	plans, err := c.ratePlanRepo.GetActiveByProperty(ctx, tx, quote.criteria.PropertyID)
	if err != nil {
		return nil, err
	}

	options := []BookingOption{c.standardOption(quote)}
	for _, plan := range plans {
		if failures := c.eligibility.Evaluate(plan, quote.profile); len(failures) > 0 {
			log.Debug("Rate plan not eligible", "planID", plan.ID, "failures", len(failures))
			continue
		}

		option, err := c.planOption(quote, plan)
		if err != nil {
			return nil, log.Err("failed to price rate plan", err, "planID", plan.ID)
		}
		options = append(options, option)
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].TotalPrice.LessThan(options[j].TotalPrice)
	})

	return &BookingOptions{
		PropertyID: quote.criteria.PropertyID,
		CheckIn:    utils.FormatDate(quote.criteria.CheckIn),
		CheckOut:   utils.FormatDate(quote.criteria.CheckOut),
		Nights:     quote.profile.Nights,
		GuestCount: quote.criteria.GuestCount,
		IsHalfDay:  quote.criteria.IsHalfDay,
		BaseTotal:  quote.baseTotal,
		Options:    options,
	}, nil
}

// CalculateBookingPrice prices a single option. A nil plan means the Standard
// Rate; otherwise the plan must still be active and eligible for the stay.
func (c *BookingController) CalculateBookingPrice(
	ctx context.Context,
	criteria BookingCriteria,
	ratePlanID *uuid.UUID,
) (*BookingOption, error) {
	tx := c.db.SQLWithContext(ctx)

	quote, err := c.quoteStay(ctx, tx, criteria)
	if err != nil {
		return nil, err
	}

	if ratePlanID == nil {
		option := c.standardOption(quote)
		return &option, nil
	}

	plan, err := c.ratePlanRepo.GetByID(ctx, tx, quote.criteria.PropertyID, *ratePlanID)
	if err != nil {
		return nil, err
	}

	if !plan.IsActive {
		return nil, fmt.Errorf("%w: %s is no longer offered", types.ErrRatePlanUnavailable, plan.Name)
	}

	if failures := c.eligibility.Evaluate(plan, quote.profile); len(failures) > 0 {
		reasons := make([]string, len(failures))
		for i, failure := range failures {
			reasons[i] = failure.String()
		}
		return nil, fmt.Errorf(
			"%w: %s does not apply to this stay (%s)",
			types.ErrRatePlanUnavailable,
			plan.Name,
			strings.Join(reasons, ", "),
		)
	}

	option, err := c.planOption(quote, plan)
	if err != nil {
		return nil, err
	}
	return &option, nil
}
