package models

import (
	"fmt"
	"time"

	"staylane/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DateOverride replaces the weekly price for one calendar date.
type DateOverride struct {
	BaseUUIDModel
	PropertyID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_date_overrides_property_date,priority:1" json:"propertyId"`
	Date         time.Time        `gorm:"type:date;not null;uniqueIndex:idx_date_overrides_property_date,priority:2" json:"date"`
	Price        decimal.Decimal  `gorm:"type:decimal(10,2);not null"                                                json:"price"`
	HalfDayPrice *decimal.Decimal `gorm:"type:decimal(10,2)"                                                         json:"halfDayPrice,omitempty"`
	Reason       *string          `gorm:"type:text"                                                                  json:"reason,omitempty"`
}

func (o *DateOverride) Validate() error {
	if !IsValidPrice(o.Price) {
		return fmt.Errorf("%w: full-day price %s", types.ErrPriceOutOfRange, o.Price)
	}
	if o.HalfDayPrice != nil {
		if !IsValidPrice(*o.HalfDayPrice) {
			return fmt.Errorf("%w: half-day price %s", types.ErrPriceOutOfRange, *o.HalfDayPrice)
		}
		if o.HalfDayPrice.GreaterThan(o.Price) {
			return fmt.Errorf(
				"%w: half-day %s > full-day %s",
				types.ErrHalfDayExceedsFullDay,
				*o.HalfDayPrice,
				o.Price,
			)
		}
	}
	return nil
}

func (o *DateOverride) BeforeSave(tx *gorm.DB) error {
	if o.PropertyID == uuid.Nil || o.Date.IsZero() {
		return gorm.ErrInvalidValue
	}
	return o.Validate()
}
