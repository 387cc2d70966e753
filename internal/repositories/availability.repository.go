package repositories

import (
	"context"
	"time"

	. "staylane/internal/models"
	"staylane/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AvailabilityRepository interface {
	// ReleaseDates marks existing rows for dates available and reports how many
	// rows changed. Repeating the call is harmless.
	ReleaseDates(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID, dates []time.Time) (int64, error)
}

type availabilityRepository struct {
	log logger.Logger
}

func NewAvailabilityRepository() AvailabilityRepository {
	return &availabilityRepository{
		log: logger.New("availabilityRepository"),
	}
}

func (r *availabilityRepository) ReleaseDates(
	ctx context.Context,
	tx *gorm.DB,
	propertyID uuid.UUID,
	dates []time.Time,
) (int64, error) {
	log := r.log.Function("ReleaseDates")

	if len(dates) == 0 {
		return 0, nil
	}

	normalized := make([]time.Time, len(dates))
	for i, date := range dates {
		normalized[i] = utils.DateOnly(date)
	}

	result := tx.WithContext(ctx).
		Model(&Availability{}).
		Where("property_id = ? AND date IN ? AND is_available = ?", propertyID, normalized, false).
		Update("is_available", true)
	if result.Error != nil {
		return 0, log.Err(
			"failed to release availability",
			result.Error,
			"propertyID", propertyID,
			"dates", len(dates),
		)
	}

	return result.RowsAffected, nil
}
