package models

import (
	"fmt"

	"staylane/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ModifierType string

const (
	ModifierPercentage  ModifierType = "percentage"
	ModifierFixedAmount ModifierType = "fixed_amount"
)

// PriceModifier is a closed set: PercentageModifier or FixedAmountModifier.
type PriceModifier interface {
	isPriceModifier()
}

// PercentageModifier scales a nightly price by (1 + Percent/100).
type PercentageModifier struct {
	Percent decimal.Decimal
}

// FixedAmountModifier adds Amount to a nightly price, flooring at zero.
type FixedAmountModifier struct {
	Amount decimal.Decimal
}

func (PercentageModifier) isPriceModifier()  {}
func (FixedAmountModifier) isPriceModifier() {}

type RatePlan struct {
	BaseUUIDModel
	PropertyID    uuid.UUID                   `gorm:"type:uuid;not null;index:idx_rate_plans_property" json:"propertyId"`
	Name          string                      `gorm:"type:text;not null"                               json:"name"`
	Description   string                      `gorm:"type:text"                                        json:"description"`
	IsActive      bool                        `gorm:"type:bool;not null"                              json:"isActive"`
	Priority      int                         `gorm:"type:int;not null;default:0"                      json:"priority"`
	ModifierType  ModifierType                `gorm:"type:text;not null"                               json:"modifierType"`
	ModifierValue decimal.Decimal             `gorm:"type:decimal(10,2);not null"                      json:"modifierValue"`
	MinStay       *int                        `gorm:"type:int"                                         json:"minStay,omitempty"`
	MaxStay       *int                        `gorm:"type:int"                                         json:"maxStay,omitempty"`
	MinAdvance    *int                        `gorm:"column:min_advance_booking;type:int"              json:"minAdvanceBooking,omitempty"`
	MaxAdvance    *int                        `gorm:"column:max_advance_booking;type:int"              json:"maxAdvanceBooking,omitempty"`
	MinGuests     *int                        `gorm:"type:int"                                         json:"minGuests,omitempty"`
	MaxGuests     *int                        `gorm:"type:int"                                         json:"maxGuests,omitempty"`
	Features      datatypes.JSONSlice[string] `gorm:"type:json"                                        json:"features"`

	CancellationPolicy *CancellationPolicy `gorm:"foreignKey:RatePlanID" json:"cancellationPolicy,omitempty"`
}

// Modifier converts the stored type/value pair into its PriceModifier variant.
func (r *RatePlan) Modifier() (PriceModifier, error) {
	switch r.ModifierType {
	case ModifierPercentage:
		return PercentageModifier{Percent: r.ModifierValue}, nil
	case ModifierFixedAmount:
		return FixedAmountModifier{Amount: r.ModifierValue}, nil
	}
	return nil, fmt.Errorf("%w: unknown modifier type %q", types.ErrValidation, r.ModifierType)
}

func (r *RatePlan) BeforeSave(tx *gorm.DB) error {
	if r.PropertyID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if _, err := r.Modifier(); err != nil {
		return err
	}
	return nil
}

type CancellationPolicyType string

const (
	PolicyNonRefundable CancellationPolicyType = "non_refundable"
	PolicyFullyFlexible CancellationPolicyType = "fully_flexible"
	PolicyModerate      CancellationPolicyType = "moderate"
)

func (t CancellationPolicyType) IsValid() bool {
	switch t {
	case PolicyNonRefundable, PolicyFullyFlexible, PolicyModerate:
		return true
	}
	return false
}

type CancellationPolicy struct {
	BaseUUIDModel
	RatePlanID           uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex" json:"ratePlanId"`
	Type                 CancellationPolicyType `gorm:"type:text;not null"             json:"type"`
	FreeCancellationDays *int                   `gorm:"type:int"                       json:"freeCancellationDays,omitempty"`
	PartialRefundDays    *int                   `gorm:"type:int"                       json:"partialRefundDays,omitempty"`
}

// DefaultCancellationPolicy applies to direct bookings and plans without a policy.
func DefaultCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{Type: PolicyFullyFlexible}
}
