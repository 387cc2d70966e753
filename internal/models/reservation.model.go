package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
	ReservationNoShow    ReservationStatus = "no_show"
)

type Reservation struct {
	BaseUUIDModel
	PropertyID uuid.UUID         `gorm:"type:uuid;not null;index:idx_reservations_property" json:"propertyId"`
	GuestID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_reservations_guest"    json:"guestId"`
	RatePlanID *uuid.UUID        `gorm:"type:uuid"                                          json:"ratePlanId,omitempty"`
	CheckIn    time.Time         `gorm:"type:date;not null"                                 json:"checkIn"`
	CheckOut   time.Time         `gorm:"type:date;not null"                                 json:"checkOut"`
	GuestCount int               `gorm:"type:int;not null"                                  json:"guestCount"`
	IsHalfDay  bool              `gorm:"type:bool;not null;default:false"                   json:"isHalfDay"`
	TotalPrice decimal.Decimal   `gorm:"type:decimal(10,2);not null"                        json:"totalPrice"`
	Status     ReservationStatus `gorm:"type:text;not null;default:pending;index"           json:"status"`
	Notes      string            `gorm:"type:text"                                          json:"notes,omitempty"`

	CancelledAt          *time.Time `gorm:"type:timestamp" json:"cancelledAt,omitempty"`
	CancelledBy          *uuid.UUID `gorm:"type:uuid"      json:"cancelledBy,omitempty"`
	CancellationReason   *string    `gorm:"type:text"      json:"cancellationReason,omitempty"`
	CancellationCategory *string    `gorm:"type:text"      json:"cancellationCategory,omitempty"`

	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	RatePlan *RatePlan `gorm:"foreignKey:RatePlanID" json:"ratePlan,omitempty"`
}

// CancellableStatuses are the statuses a cancellation may transition away from.
var CancellableStatuses = []ReservationStatus{
	ReservationPending,
	ReservationConfirmed,
	ReservationCompleted,
}

func (r *Reservation) IsCancelled() bool {
	return r.Status == ReservationCancelled
}

func (r *Reservation) IsNoShow() bool {
	return r.Status == ReservationNoShow
}

// StayDates lists every night of the stay, [CheckIn, CheckOut).
func (r *Reservation) StayDates() []time.Time {
	var dates []time.Time
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
