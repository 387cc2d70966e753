package repositories

import (
	"context"
	"time"

	. "staylane/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditFilter narrows audit queries. Zero values impose no restriction.
// OwnerID limits results to reservations on properties that user owns.
type AuditFilter struct {
	ReservationID *uuid.UUID
	OwnerID       *uuid.UUID
	UserID        *uuid.UUID
	Action        *AuditAction
	Field         *string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

type AuditLogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *AuditLogEntry) error
	// Find returns one page, newest first, plus the unpaginated total.
	Find(ctx context.Context, tx *gorm.DB, filter AuditFilter) ([]*AuditLogEntry, int64, error)
	// FindAll ignores Limit and Offset.
	FindAll(ctx context.Context, tx *gorm.DB, filter AuditFilter) ([]*AuditLogEntry, error)
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type auditLogRepository struct {
	log logger.Logger
}

func NewAuditLogRepository() AuditLogRepository {
	return &auditLogRepository{
		log: logger.New("auditLogRepository"),
	}
}

func (r *auditLogRepository) Create(ctx context.Context, tx *gorm.DB, entry *AuditLogEntry) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return log.Err(
			"failed to create audit entry",
			err,
			"reservationID", entry.ReservationID,
			"action", entry.Action,
		)
	}

	return nil
}

func (r *auditLogRepository) Find(
	ctx context.Context,
	tx *gorm.DB,
	filter AuditFilter,
) ([]*AuditLogEntry, int64, error) {
	log := r.log.Function("Find")

	var total int64
	if err := r.scoped(tx.WithContext(ctx), filter).
		Model(&AuditLogEntry{}).
		Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count audit entries", err)
	}

	var entries []*AuditLogEntry
	query := r.scoped(tx.WithContext(ctx), filter).
		Order("created_at DESC").
		Order("id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, log.Err("failed to find audit entries", err)
	}

	return entries, total, nil
}

func (r *auditLogRepository) FindAll(
	ctx context.Context,
	tx *gorm.DB,
	filter AuditFilter,
) ([]*AuditLogEntry, error) {
	log := r.log.Function("FindAll")

	var entries []*AuditLogEntry
	if err := r.scoped(tx.WithContext(ctx), filter).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error; err != nil {
		return nil, log.Err("failed to find audit entries", err)
	}

	return entries, nil
}

func (r *auditLogRepository) DeleteOlderThan(
	ctx context.Context,
	tx *gorm.DB,
	cutoff time.Time,
) (int64, error) {
	log := r.log.Function("DeleteOlderThan")

	result := tx.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&AuditLogEntry{})
	if result.Error != nil {
		return 0, log.Err("failed to purge audit entries", result.Error, "cutoff", cutoff)
	}

	return result.RowsAffected, nil
}

func (r *auditLogRepository) scoped(query *gorm.DB, filter AuditFilter) *gorm.DB {
	query = query.Model(&AuditLogEntry{})

	if filter.ReservationID != nil {
		query = query.Where("reservation_id = ?", *filter.ReservationID)
	}
	if filter.OwnerID != nil {
		owned := query.Session(&gorm.Session{NewDB: true}).
			Table("reservations").
			Select("reservations.id").
			Joins("JOIN properties ON properties.id = reservations.property_id").
			Where("properties.owner_id = ?", *filter.OwnerID)
		query = query.Where("reservation_id IN (?)", owned)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	if filter.Field != nil {
		query = query.Where("field = ?", *filter.Field)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	return query
}
