package models

import (
	"time"

	"github.com/google/uuid"
)

type Availability struct {
	BaseUUIDModel
	PropertyID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_availability_property_date,priority:1" json:"propertyId"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:idx_availability_property_date,priority:2" json:"date"`
	IsAvailable bool      `gorm:"type:bool;not null"                                                      json:"isAvailable"`
}

func (Availability) TableName() string {
	return "availability"
}
