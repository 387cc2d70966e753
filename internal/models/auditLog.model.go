package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditActionCreated           AuditAction = "CREATED"
	AuditActionCancelled         AuditAction = "CANCELLED"
	AuditActionStatusChanged     AuditAction = "status_changed"
	AuditActionDatesChanged      AuditAction = "dates_changed"
	AuditActionGuestCountChanged AuditAction = "guest_count_changed"
	AuditActionPriceChanged      AuditAction = "price_changed"
	AuditActionRatePlanChanged   AuditAction = "rate_plan_changed"
	AuditActionRefundIssued      AuditAction = "refund_issued"
	AuditActionNoteAdded         AuditAction = "note_added"
	AuditActionFieldUpdated      AuditAction = "field_updated"
)

// AuditLogEntry is insert-only. Rows are removed solely by the retention sweep.
type AuditLogEntry struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"                                       json:"id"`
	ReservationID uuid.UUID         `gorm:"type:uuid;not null;index:idx_audit_reservation_created,priority:1" json:"reservationId"`
	UserID        uuid.UUID         `gorm:"type:uuid;not null;index:idx_audit_user"                    json:"userId"`
	UserRole      UserRole          `gorm:"type:text;not null"                                         json:"userRole"`
	Action        AuditAction       `gorm:"type:text;not null;index:idx_audit_action"                  json:"action"`
	Field         *string           `gorm:"type:text"                                                  json:"field,omitempty"`
	OldValue      *string           `gorm:"type:text"                                                  json:"oldValue,omitempty"`
	NewValue      *string           `gorm:"type:text"                                                  json:"newValue,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"type:json"                                                  json:"metadata,omitempty"`
	Description   string            `gorm:"type:text;not null"                                         json:"description"`
	CreatedAt     time.Time         `gorm:"not null;index:idx_audit_reservation_created,priority:2;index:idx_audit_created" json:"createdAt"`
}

func (AuditLogEntry) TableName() string {
	return "audit_log_entries"
}

func (e *AuditLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		e.ID = id
	}
	if e.ReservationID == uuid.Nil || e.UserID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return nil
}

// BeforeUpdate rejects every update; entries are immutable once written.
func (e *AuditLogEntry) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrInvalidData
}
