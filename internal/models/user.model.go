package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleGuest UserRole = "guest"
	RoleOwner UserRole = "owner"
	RoleAdmin UserRole = "admin"
)

type User struct {
	BaseUUIDModel
	FirstName   string     `gorm:"type:text"                        json:"firstName"`
	LastName    string     `gorm:"type:text"                        json:"lastName"`
	DisplayName string     `gorm:"type:text"                        json:"displayName"`
	Email       *string    `gorm:"type:text;uniqueIndex"            json:"email"`
	Role        UserRole   `gorm:"type:text;not null;default:guest" json:"role"`
	IsActive    bool       `gorm:"type:bool;not null"              json:"isActive"`
	LastLoginAt *time.Time `gorm:"type:timestamp"                   json:"lastLoginAt,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if err := u.ensureID(); err != nil {
		return err
	}
	if u.DisplayName == "" {
		u.DisplayName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	if u.Role == "" {
		u.Role = RoleGuest
	}
	return nil
}

// IsElevated reports whether the user may see data across all properties.
func (u *User) IsElevated() bool {
	return u.Role == RoleAdmin
}

func (r UserRole) IsValid() bool {
	switch r {
	case RoleGuest, RoleOwner, RoleAdmin:
		return true
	}
	return false
}
