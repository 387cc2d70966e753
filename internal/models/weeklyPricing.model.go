package models

import (
	"fmt"
	"time"

	"staylane/internal/constants"
	"staylane/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WeeklyPricing holds one full-day and one half-day price per weekday.
type WeeklyPricing struct {
	BaseUUIDModel
	PropertyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"propertyId"`

	SundayPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"sundayPrice"`
	MondayPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"mondayPrice"`
	TuesdayPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tuesdayPrice"`
	WednesdayPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"wednesdayPrice"`
	ThursdayPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"thursdayPrice"`
	FridayPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"fridayPrice"`
	SaturdayPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"saturdayPrice"`

	SundayHalfDayPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"sundayHalfDayPrice"`
	MondayHalfDayPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"mondayHalfDayPrice"`
	TuesdayHalfDayPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tuesdayHalfDayPrice"`
	WednesdayHalfDayPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"wednesdayHalfDayPrice"`
	ThursdayHalfDayPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"thursdayHalfDayPrice"`
	FridayHalfDayPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"fridayHalfDayPrice"`
	SaturdayHalfDayPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"saturdayHalfDayPrice"`
}

// FullDayPrices is indexed by time.Weekday (0=Sunday).
func (w *WeeklyPricing) FullDayPrices() [7]decimal.Decimal {
	return [7]decimal.Decimal{
		w.SundayPrice,
		w.MondayPrice,
		w.TuesdayPrice,
		w.WednesdayPrice,
		w.ThursdayPrice,
		w.FridayPrice,
		w.SaturdayPrice,
	}
}

// HalfDayPrices is indexed by time.Weekday (0=Sunday).
func (w *WeeklyPricing) HalfDayPrices() [7]decimal.Decimal {
	return [7]decimal.Decimal{
		w.SundayHalfDayPrice,
		w.MondayHalfDayPrice,
		w.TuesdayHalfDayPrice,
		w.WednesdayHalfDayPrice,
		w.ThursdayHalfDayPrice,
		w.FridayHalfDayPrice,
		w.SaturdayHalfDayPrice,
	}
}

// SetPrices assigns both schedules from arrays indexed by time.Weekday.
func (w *WeeklyPricing) SetPrices(full, half [7]decimal.Decimal) {
	w.SundayPrice, w.SundayHalfDayPrice = full[time.Sunday], half[time.Sunday]
	w.MondayPrice, w.MondayHalfDayPrice = full[time.Monday], half[time.Monday]
	w.TuesdayPrice, w.TuesdayHalfDayPrice = full[time.Tuesday], half[time.Tuesday]
	w.WednesdayPrice, w.WednesdayHalfDayPrice = full[time.Wednesday], half[time.Wednesday]
	w.ThursdayPrice, w.ThursdayHalfDayPrice = full[time.Thursday], half[time.Thursday]
	w.FridayPrice, w.FridayHalfDayPrice = full[time.Friday], half[time.Friday]
	w.SaturdayPrice, w.SaturdayHalfDayPrice = full[time.Saturday], half[time.Saturday]
}

func (w *WeeklyPricing) PriceFor(weekday time.Weekday, isHalfDay bool) decimal.Decimal {
	if isHalfDay {
		return w.HalfDayPrices()[weekday]
	}
	return w.FullDayPrices()[weekday]
}

func (w *WeeklyPricing) Validate() error {
	full := w.FullDayPrices()
	half := w.HalfDayPrices()
	for day := time.Sunday; day <= time.Saturday; day++ {
		if !IsValidPrice(full[day]) {
			return fmt.Errorf("%w: %s full-day price %s", types.ErrPriceOutOfRange, day, full[day])
		}
		if !IsValidPrice(half[day]) {
			return fmt.Errorf("%w: %s half-day price %s", types.ErrPriceOutOfRange, day, half[day])
		}
		if half[day].GreaterThan(full[day]) {
			return fmt.Errorf(
				"%w: %s half-day %s > full-day %s",
				types.ErrHalfDayExceedsFullDay,
				day,
				half[day],
				full[day],
			)
		}
	}
	return nil
}

func (w *WeeklyPricing) BeforeSave(tx *gorm.DB) error {
	if w.PropertyID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return w.Validate()
}

// IsValidPrice reports whether price lies in (0, MaxPrice].
func IsValidPrice(price decimal.Decimal) bool {
	return price.IsPositive() && price.LessThanOrEqual(constants.MaxPrice)
}
