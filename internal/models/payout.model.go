package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayoutType string

const (
	PayoutTypeRefund     PayoutType = "refund"
	PayoutTypeHostPayout PayoutType = "host_payout"
)

type PayoutStatus string

const (
	PayoutScheduled PayoutStatus = "scheduled"
	PayoutPaid      PayoutStatus = "paid"
	PayoutFailed    PayoutStatus = "failed"
)

// Payout is a scheduled money movement. A negative Amount is a refund to the
// guest rather than a payout to the host.
type Payout struct {
	BaseUUIDModel
	ReservationID uuid.UUID       `gorm:"type:uuid;not null;index:idx_payouts_reservation" json:"reservationId"`
	PropertyID    uuid.UUID       `gorm:"type:uuid;not null"                               json:"propertyId"`
	RecipientID   uuid.UUID       `gorm:"type:uuid;not null"                               json:"recipientId"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null"                      json:"amount"`
	Type          PayoutType      `gorm:"type:text;not null"                               json:"type"`
	Status        PayoutStatus    `gorm:"type:text;not null;default:scheduled"             json:"status"`
	ScheduledAt   time.Time       `gorm:"type:timestamp;not null"                          json:"scheduledAt"`
	Description   string          `gorm:"type:text"                                        json:"description"`
}

func (p *Payout) IsRefund() bool {
	return p.Amount.IsNegative()
}
