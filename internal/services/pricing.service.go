package services

import (
	"context"
	"fmt"
	"time"

	"staylane/internal/constants"
	"staylane/internal/models"
	"staylane/internal/repositories"
	"staylane/internal/types"
	"staylane/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NightlyPrice is the resolved base price of one night and where it came from.
type NightlyPrice struct {
	Date           time.Time       `json:"date"`
	Price          decimal.Decimal `json:"price"`
	IsOverride     bool            `json:"isOverride"`
	OverrideReason *string         `json:"overrideReason,omitempty"`
}

type PricingService struct {
	pricingRepo repositories.PricingRepository
	log         logger.Logger
}

func NewPricingService(repos repositories.Repository) *PricingService {
	return &PricingService{
		pricingRepo: repos.Pricing,
		log:         logger.New("pricingService"),
	}
}

// ResolvePrice picks the nightly price for date. An override for the date
// always wins; a half-day request against an override without its own half-day
// price falls back to HalfDayFallbackRatio of the full-day override. Without an
// override the weekly schedule is indexed by weekday.
func ResolvePrice(
	weekly *models.WeeklyPricing,
	override *models.DateOverride,
	date time.Time,
	isHalfDay bool,
) (decimal.Decimal, error) {
	if override != nil {
		if !isHalfDay {
			return override.Price, nil
		}
		if override.HalfDayPrice != nil {
			return *override.HalfDayPrice, nil
		}
		return override.Price.Mul(constants.HalfDayFallbackRatio).Round(constants.MoneyScale), nil
	}

	if weekly == nil {
		return decimal.Zero, types.ErrPricingNotConfigured
	}

	return weekly.PriceFor(utils.DateOnly(date).Weekday(), isHalfDay), nil
}

// ApplyModifier derives a rate plan's nightly price from the base price,
// rounded to cents. Fixed amounts never push a night below zero.
func ApplyModifier(price decimal.Decimal, modifier models.PriceModifier) (decimal.Decimal, error) {
	var adjusted decimal.Decimal

	switch m := modifier.(type) {
	case models.PercentageModifier:
		factor := decimal.NewFromInt(1).Add(m.Percent.Div(decimal.NewFromInt(100)))
		adjusted = price.Mul(factor)
	case models.FixedAmountModifier:
		adjusted = decimal.Max(price.Add(m.Amount), decimal.Zero)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported price modifier %T", types.ErrValidation, modifier)
	}

	return adjusted.Round(constants.MoneyScale), nil
}

func (s *PricingService) Resolve(
	ctx context.Context,
	tx *gorm.DB,
	propertyID uuid.UUID,
	date time.Time,
	isHalfDay bool,
) (decimal.Decimal, error) {
	night, err := s.ResolveNight(ctx, tx, propertyID, date, isHalfDay)
	if err != nil {
		return decimal.Zero, err
	}
	return night.Price, nil
}

func (s *PricingService) ResolveNight(
	ctx context.Context,
	tx *gorm.DB,
	propertyID uuid.UUID,
	date time.Time,
	isHalfDay bool,
) (NightlyPrice, error) {
	date = utils.DateOnly(date)

	weekly, err := s.pricingRepo.GetWeeklyPricing(ctx, tx, propertyID)
	if err != nil {
		return NightlyPrice{}, err
	}

	override, err := s.pricingRepo.GetOverride(ctx, tx, propertyID, date)
	if err != nil {
		return NightlyPrice{}, err
	}

	return resolveNight(weekly, override, date, isHalfDay)
}

// ResolveStay prices every night in [checkIn, checkOut) with two queries.
func (s *PricingService) ResolveStay(
	ctx context.Context,
	tx *gorm.DB,
	propertyID uuid.UUID,
	checkIn, checkOut time.Time,
	isHalfDay bool,
) ([]NightlyPrice, error) {
	log := s.log.Function("ResolveStay")

	weekly, err := s.pricingRepo.GetWeeklyPricing(ctx, tx, propertyID)
	if err != nil {
		return nil, err
	}
	if weekly == nil {
		return nil, types.ErrPricingNotConfigured
	}

	overrides, err := s.pricingRepo.GetOverridesInRange(ctx, tx, propertyID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	dates := utils.DatesInRange(checkIn, checkOut)
	nights := make([]NightlyPrice, 0, len(dates))
	for _, date := range dates {
		night, err := resolveNight(weekly, overrides[utils.FormatDate(date)], date, isHalfDay)
		if err != nil {
			return nil, err
		}
		nights = append(nights, night)
	}

	log.Debug("Resolved stay", "propertyID", propertyID, "nights", len(nights), "overrides", len(overrides))
	return nights, nil
}

func resolveNight(
	weekly *models.WeeklyPricing,
	override *models.DateOverride,
	date time.Time,
	isHalfDay bool,
) (NightlyPrice, error) {
	price, err := ResolvePrice(weekly, override, date, isHalfDay)
	if err != nil {
		return NightlyPrice{}, err
	}

	night := NightlyPrice{Date: date, Price: price}
	if override != nil {
		night.IsOverride = true
		night.OverrideReason = override.Reason
	}
	return night, nil
}

// SumNights totals already-rounded nightly prices.
func SumNights(prices []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, price := range prices {
		total = total.Add(price)
	}
	return total.Round(constants.MoneyScale)
}
