package repositories

import (
	"context"
	"errors"
	"time"

	"staylane/internal/constants"
	"staylane/internal/database"
	. "staylane/internal/models"
	"staylane/internal/types"
	"staylane/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PricingRepository interface {
	// GetWeeklyPricing returns nil without error when the property has no schedule.
	GetWeeklyPricing(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) (*WeeklyPricing, error)
	SaveWeeklyPricing(ctx context.Context, tx *gorm.DB, pricing *WeeklyPricing) error

	// GetOverride returns nil without error when no override exists for date.
	GetOverride(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID, date time.Time) (*DateOverride, error)
	GetOverridesInRange(
		ctx context.Context,
		tx *gorm.DB,
		propertyID uuid.UUID,
		start, end time.Time,
	) (map[string]*DateOverride, error)
	ListOverrides(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID, from time.Time) ([]*DateOverride, error)
	SaveOverride(ctx context.Context, tx *gorm.DB, override *DateOverride) error
	DeleteOverride(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID, date time.Time) error
}

type pricingRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewPricingRepository(cache database.CacheClient) PricingRepository {
	return &pricingRepository{
		cache: cache,
		log:   logger.New("pricingRepository"),
	}
}

func (r *pricingRepository) GetWeeklyPricing(
	ctx context.Context,
	tx *gorm.DB,
	propertyID uuid.UUID,
) (*WeeklyPricing, error) {
	log := r.log.Function("GetWeeklyPricing")

	var cached WeeklyPricing
	found, err := database.NewCacheBuilder(r.cache, propertyID).
		WithContext(ctx).
		WithHash(constants.WeeklyPricingCachePrefix).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get weekly pricing from cache", "propertyID", propertyID, "error", err)
	}

	if found {
		return &cached, nil
	}

	var pricing WeeklyPricing
	if err := tx.WithContext(ctx).First(&pricing, "property_id = ?", propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get weekly pricing", err, "propertyID", propertyID)
	}

	if err := database.NewCacheBuilder(r.cache, propertyID).
		WithContext(ctx).
		WithHash(constants.WeeklyPricingCachePrefix).
		WithStruct(pricing).
		WithTTL(constants.WeeklyPricingCacheExpiry).
		Set(); err != nil {
		log.Warn("failed to cache weekly pricing", "propertyID", propertyID, "error", err)
	}

	return &pricing, nil
}

// SaveWeeklyPricing upserts the single schedule row for pricing.PropertyID.
func (r *pricingRepository) SaveWeeklyPricing(
	ctx context.Context,
	tx *gorm.DB,
	pricing *WeeklyPricing,
) error {
	log := r.log.Function("SaveWeeklyPricing")

	var existing WeeklyPricing
	err := tx.WithContext(ctx).
		Select("id", "created_at").
		First(&existing, "property_id = ?", pricing.PropertyID).Error
	switch {
	case err == nil:
		pricing.ID = existing.ID
		pricing.CreatedAt = existing.CreatedAt
		err = tx.WithContext(ctx).Save(pricing).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = tx.WithContext(ctx).Create(pricing).Error
	}
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			return err
		}
		return log.Err("failed to save weekly pricing", err, "propertyID", pricing.PropertyID)
	}

	r.clearWeeklyPricingCache(ctx, pricing.PropertyID)
	return nil
}

func (r *pricingRepository) clearWeeklyPricingCache(ctx context.Context, propertyID uuid.UUID) {
	if err := database.NewCacheBuilder(r.cache, propertyID).
		WithContext(ctx).
		WithHash(constants.WeeklyPricingCachePrefix).
		Delete(); err != nil {
		r.log.Function("clearWeeklyPricingCache").
			Warn("failed to clear weekly pricing cache", "propertyID", propertyID, "error", err)
	}
}

func (r *pricingRepository) GetOverride(
	ctx context.Context,
	tx *gorm.DB,
	propertyID uuid.UUID,
	date time.Time,
) (*DateOverride, error) {
	log := r.log.Function("GetOverride")

	var override DateOverride
	err := tx.WithContext(ctx).
		Where("property_id = ? AND date = ?", propertyID, utils.DateOnly(date)).
		First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get date override", err, "propertyID", propertyID, "date", date)
	}

	return &override, nil
}

// GetOverridesInRange returns overrides for [start, end) keyed by ISO date.
func (r *pricingRepository) GetOverridesInRange(
	ctx context.Context,
	tx *gorm.DB,
	propertyID uuid.UUID,
	start, end time.Time,
) (map[string]*DateOverride, error) {
	log := r.log.Function("GetOverridesInRange")

	dates := utils.DatesInRange(start, end)
	if len(dates) == 0 {
		return map[string]*DateOverride{}, nil
	}

	var overrides []*DateOverride
	if err := tx.WithContext(ctx).
		Where("property_id = ? AND date IN ?", propertyID, dates).
		Find(&overrides).Error; err != nil {
		return nil, log.Err("failed to get date overrides", err, "propertyID", propertyID)
	}

	byDate := make(map[string]*DateOverride, len(overrides))
	for _, override := range overrides {
		byDate[utils.FormatDate(override.Date)] = override
	}
	return byDate, nil
}

func (r *pricingRepository) ListOverrides(
	ctx context.Context,
	tx *gorm.DB,
	propertyID uuid.UUID,
	from time.Time,
) ([]*DateOverride, error) {
	log := r.log.Function("ListOverrides")

	var overrides []*DateOverride
	if err := tx.WithContext(ctx).
		Where("property_id = ? AND date >= ?", propertyID, utils.DateOnly(from)).
		Order("date ASC").
		Find(&overrides).Error; err != nil {
		return nil, log.Err("failed to list date overrides", err, "propertyID", propertyID)
	}

	return overrides, nil
}

// SaveOverride upserts on (property_id, date).
func (r *pricingRepository) SaveOverride(
	ctx context.Context,
	tx *gorm.DB,
	override *DateOverride,
) error {
	log := r.log.Function("SaveOverride")

	override.Date = utils.DateOnly(override.Date)

	existing, err := r.GetOverride(ctx, tx, override.PropertyID, override.Date)
	if err != nil {
		return err
	}

	if existing != nil {
		override.ID = existing.ID
		override.CreatedAt = existing.CreatedAt
		err = tx.WithContext(ctx).Save(override).Error
	} else {
		err = tx.WithContext(ctx).Create(override).Error
	}
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			return err
		}
		return log.Err(
			"failed to save date override",
			err,
			"propertyID", override.PropertyID,
			"date", override.Date,
		)
	}

	return nil
}

func (r *pricingRepository) DeleteOverride(
	ctx context.Context,
	tx *gorm.DB,
	propertyID uuid.UUID,
	date time.Time,
) error {
	log := r.log.Function("DeleteOverride")

	result := tx.WithContext(ctx).
		Where("property_id = ? AND date = ?", propertyID, utils.DateOnly(date)).
		Delete(&DateOverride{})
	if result.Error != nil {
		return log.Err("failed to delete date override", result.Error, "propertyID", propertyID, "date", date)
	}

	if result.RowsAffected == 0 {
		return types.ErrOverrideNotFound
	}

	return nil
}
