package repositories

import (
	"context"
	"errors"

	"staylane/internal/types"
	. "staylane/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PropertyRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Property, error)
	GetOwnedBy(ctx context.Context, tx *gorm.DB, id uuid.UUID, ownerID uuid.UUID) (*Property, error)
}

type propertyRepository struct {
	log logger.Logger
}

func NewPropertyRepository() PropertyRepository {
	return &propertyRepository{
		log: logger.New("propertyRepository"),
	}
}

func (r *propertyRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*Property, error) {
	log := r.log.Function("GetByID")

	var property Property
	if err := tx.WithContext(ctx).First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrPropertyNotFound
		}
		return nil, log.Err("failed to get property", err, "propertyID", id)
	}

	return &property, nil
}

// GetOwnedBy loads the property and fails with ErrPermissionDenied unless
// ownerID owns it.
func (r *propertyRepository) GetOwnedBy(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	ownerID uuid.UUID,
) (*Property, error) {
	property, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !property.IsOwnedBy(ownerID) {
		return nil, types.ErrPermissionDenied
	}

	return property, nil
}
