package repositories

import (
	"context"

	. "staylane/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayoutRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payout *Payout) error
	ListByReservation(ctx context.Context, tx *gorm.DB, reservationID uuid.UUID) ([]*Payout, error)
}

type payoutRepository struct {
	log logger.Logger
}

func NewPayoutRepository() PayoutRepository {
	return &payoutRepository{
		log: logger.New("payoutRepository"),
	}
}

func (r *payoutRepository) Create(ctx context.Context, tx *gorm.DB, payout *Payout) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Create(payout).Error; err != nil {
		return log.Err("failed to create payout", err, "reservationID", payout.ReservationID)
	}

	return nil
}

func (r *payoutRepository) ListByReservation(
	ctx context.Context,
	tx *gorm.DB,
	reservationID uuid.UUID,
) ([]*Payout, error) {
	log := r.log.Function("ListByReservation")

	var payouts []*Payout
	if err := tx.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("scheduled_at ASC").
		Find(&payouts).Error; err != nil {
		return nil, log.Err("failed to list payouts", err, "reservationID", reservationID)
	}

	return payouts, nil
}
