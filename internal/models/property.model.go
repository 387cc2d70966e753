package models

import "github.com/google/uuid"

type PropertyStatus string

const (
	PropertyStatusDraft  PropertyStatus = "draft"
	PropertyStatusLive   PropertyStatus = "live"
	PropertyStatusClosed PropertyStatus = "closed"
)

type Property struct {
	BaseUUIDModel
	OwnerID uuid.UUID      `gorm:"type:uuid;not null;index:idx_properties_owner" json:"ownerId"`
	Name    string         `gorm:"type:text;not null"                            json:"name"`
	Status  PropertyStatus `gorm:"type:text;not null;default:draft"              json:"status"`

	Owner         *User          `gorm:"foreignKey:OwnerID"    json:"owner,omitempty"`
	WeeklyPricing *WeeklyPricing `gorm:"foreignKey:PropertyID" json:"weeklyPricing,omitempty"`
	RatePlans     []RatePlan     `gorm:"foreignKey:PropertyID" json:"ratePlans,omitempty"`
}

func (p *Property) IsBookable() bool {
	return p.Status == PropertyStatusLive
}

func (p *Property) IsOwnedBy(userID uuid.UUID) bool {
	return p.OwnerID == userID
}
