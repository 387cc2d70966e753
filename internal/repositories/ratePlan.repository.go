package repositories

import (
	"context"
	"errors"

	. "staylane/internal/models"
	"staylane/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RatePlanRepository interface {
	// GetActiveByProperty orders plans by priority (highest first), then creation order.
	GetActiveByProperty(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) ([]*RatePlan, error)
	ListByProperty(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) ([]*RatePlan, error)
	GetByID(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID, planID uuid.UUID) (*RatePlan, error)
	// GetPolicy returns nil without error when the plan has no policy.
	GetPolicy(ctx context.Context, tx *gorm.DB, planID uuid.UUID) (*CancellationPolicy, error)
	Create(ctx context.Context, tx *gorm.DB, plan *RatePlan) error
	Update(ctx context.Context, tx *gorm.DB, plan *RatePlan) error
	Deactivate(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID, planID uuid.UUID) error
}

type ratePlanRepository struct {
	log logger.Logger
}

func NewRatePlanRepository() RatePlanRepository {
	return &ratePlanRepository{
		log: logger.New("ratePlanRepository"),
	}
}

func (r *ratePlanRepository) GetActiveByProperty(
	ctx context.Context,
	tx *gorm.DB,
	propertyID uuid.UUID,
) ([]*RatePlan, error) {
	log := r.log.Function("GetActiveByProperty")

	var plans []*RatePlan
	if err := tx.WithContext(ctx).
		Preload("CancellationPolicy").
		Where("property_id = ? AND is_active = ?", propertyID, true).
		Order("priority DESC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&plans).Error; err != nil {
		return nil, log.Err("failed to get active rate plans", err, "propertyID", propertyID)
	}

	return plans, nil
}

func (r *ratePlanRepository) ListByProperty(
	ctx context.Context,
	tx *gorm.DB,
	propertyID uuid.UUID,
) ([]*RatePlan, error) {
	log := r.log.Function("ListByProperty")

	var plans []*RatePlan
	if err := tx.WithContext(ctx).
		Preload("CancellationPolicy").
		Where("property_id = ?", propertyID).
		Order("is_active DESC").
		Order("priority DESC").
		Order("created_at ASC").
		Find(&plans).Error; err != nil {
		return nil, log.Err("failed to list rate plans", err, "propertyID", propertyID)
	}

	return plans, nil
}

func (r *ratePlanRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	propertyID uuid.UUID,
	planID uuid.UUID,
) (*RatePlan, error) {
	log := r.log.Function("GetByID")

	var plan RatePlan
	if err := tx.WithContext(ctx).
		Preload("CancellationPolicy").
		Where("id = ? AND property_id = ?", planID, propertyID).
		First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrRatePlanNotFound
		}
		return nil, log.Err("failed to get rate plan", err, "planID", planID)
	}

	return &plan, nil
}

func (r *ratePlanRepository) GetPolicy(
	ctx context.Context,
	tx *gorm.DB,
	planID uuid.UUID,
) (*CancellationPolicy, error) {
	log := r.log.Function("GetPolicy")

	var policy CancellationPolicy
	if err := tx.WithContext(ctx).First(&policy, "rate_plan_id = ?", planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get cancellation policy", err, "planID", planID)
	}

	return &policy, nil
}

// Create inserts the plan and, when set, its cancellation policy.
func (r *ratePlanRepository) Create(ctx context.Context, tx *gorm.DB, plan *RatePlan) error {
	log := r.log.Function("Create")

	policy := plan.CancellationPolicy
	if err := tx.WithContext(ctx).Omit("CancellationPolicy").Create(plan).Error; err != nil {
		if errors.Is(err, types.ErrValidation) {
			return err
		}
		return log.Err("failed to create rate plan", err, "propertyID", plan.PropertyID)
	}

	if policy != nil {
		policy.RatePlanID = plan.ID
		if err := tx.WithContext(ctx).Create(policy).Error; err != nil {
			return log.Err("failed to create cancellation policy", err, "planID", plan.ID)
		}
	}

	return nil
}

// Update saves every plan column and replaces the policy. A nil policy removes
// any stored one, reverting the plan to the default policy.
func (r *ratePlanRepository) Update(ctx context.Context, tx *gorm.DB, plan *RatePlan) error {
	log := r.log.Function("Update")

	policy := plan.CancellationPolicy
	if err := tx.WithContext(ctx).Omit("CancellationPolicy").Save(plan).Error; err != nil {
		if errors.Is(err, types.ErrValidation) {
			return err
		}
		return log.Err("failed to update rate plan", err, "planID", plan.ID)
	}

	if err := tx.WithContext(ctx).
		Where("rate_plan_id = ?", plan.ID).
		Delete(&CancellationPolicy{}).Error; err != nil {
		return log.Err("failed to clear cancellation policy", err, "planID", plan.ID)
	}

	if policy != nil {
		policy.ID = uuid.Nil
		policy.RatePlanID = plan.ID
		if err := tx.WithContext(ctx).Create(policy).Error; err != nil {
			return log.Err("failed to create cancellation policy", err, "planID", plan.ID)
		}
	}

	return nil
}

// Deactivate soft-disables a plan. Reservations referencing it keep their policy.
func (r *ratePlanRepository) Deactivate(
	ctx context.Context,
	tx *gorm.DB,
	propertyID uuid.UUID,
	planID uuid.UUID,
) error {
	log := r.log.Function("Deactivate")

	result := tx.WithContext(ctx).
		Model(&RatePlan{}).
		Where("id = ? AND property_id = ?", planID, propertyID).
		UpdateColumns(map[string]any{
			"is_active":  false,
			"updated_at": tx.NowFunc(),
		})
	if result.Error != nil {
		return log.Err("failed to deactivate rate plan", result.Error, "planID", planID)
	}

	if result.RowsAffected == 0 {
		return types.ErrRatePlanNotFound
	}

	return nil
}
