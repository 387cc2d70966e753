package repositories

import (
	"context"
	"errors"
	"time"

	. "staylane/internal/models"
	"staylane/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CancellationUpdate struct {
	CancelledAt time.Time
	CancelledBy uuid.UUID
	Reason      string
	Category    string
	Notes       string
}

type ReservationRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Reservation, error)
	// GetByIDForUpdate locks the reservation row until tx ends.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Reservation, error)
	// MarkCancelled moves an active reservation to cancelled. It fails with
	// ErrAlreadyCancelled when the row is no longer in a cancellable status.
	MarkCancelled(ctx context.Context, tx *gorm.DB, id uuid.UUID, update CancellationUpdate) error
}

type reservationRepository struct {
	log logger.Logger
}

func NewReservationRepository() ReservationRepository {
	return &reservationRepository{
		log: logger.New("reservationRepository"),
	}
}

func (r *reservationRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*Reservation, error) {
	return r.get(ctx, tx.WithContext(ctx), id, "GetByID")
}

func (r *reservationRepository) GetByIDForUpdate(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*Reservation, error) {
	return r.get(ctx, tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id, "GetByIDForUpdate")
}

func (r *reservationRepository) get(
	ctx context.Context,
	query *gorm.DB,
	id uuid.UUID,
	function string,
) (*Reservation, error) {
	log := r.log.Function(function)

	var reservation Reservation
	if err := query.First(&reservation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrReservationNotFound
		}
		return nil, log.Err("failed to get reservation", err, "reservationID", id)
	}

	return &reservation, nil
}

func (r *reservationRepository) MarkCancelled(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	update CancellationUpdate,
) error {
	log := r.log.Function("MarkCancelled")

	result := tx.WithContext(ctx).
		Model(&Reservation{}).
		Where("id = ? AND status IN ?", id, CancellableStatuses).
		Updates(map[string]any{
			"status":                ReservationCancelled,
			"cancelled_at":          update.CancelledAt,
			"cancelled_by":          update.CancelledBy,
			"cancellation_reason":   update.Reason,
			"cancellation_category": update.Category,
			"notes":                 update.Notes,
		})
	if result.Error != nil {
		return log.Err("failed to cancel reservation", result.Error, "reservationID", id)
	}

	if result.RowsAffected == 0 {
		return types.ErrAlreadyCancelled
	}

	return nil
}
