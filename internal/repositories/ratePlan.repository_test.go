package repositories_test

import (
	"testing"

	"staylane/internal/models"
	"staylane/internal/repositories"
	"staylane/internal/testhelpers"
	"staylane/internal/types"
	"staylane/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlan(propertyID uuid.UUID, name string, priority int, active bool) *models.RatePlan {
	return &models.RatePlan{
		PropertyID:    propertyID,
		Name:          name,
		IsActive:      active,
		Priority:      priority,
		ModifierType:  models.ModifierPercentage,
		ModifierValue: testhelpers.Money("-10"),
	}
}

func TestRatePlanRepository_GetActiveByProperty(t *testing.T) {
	h := testhelpers.NewTestHelper(t)
	repo := repositories.NewRatePlanRepository()
	owner := h.CreateTestUser(models.RoleOwner)
	property := h.CreateTestProperty(owner, models.PropertyStatusLive)

	h.CreateTestRatePlan(newPlan(property.ID, "low", 1, true), nil)
	h.CreateTestRatePlan(newPlan(property.ID, "high-first", 5, true), &models.CancellationPolicy{
		Type: models.PolicyNonRefundable,
	})
	h.CreateTestRatePlan(newPlan(property.ID, "high-second", 5, true), nil)
	h.CreateTestRatePlan(newPlan(property.ID, "inactive", 9, false), nil)

	plans, err := repo.GetActiveByProperty(h.Ctx, h.DB.SQL, property.ID)
	require.NoError(t, err)
	require.Len(t, plans, 3)

	assert.Equal(t, "high-first", plans[0].Name)
	assert.Equal(t, "high-second", plans[1].Name)
	assert.Equal(t, "low", plans[2].Name)

	require.NotNil(t, plans[0].CancellationPolicy)
	assert.Equal(t, models.PolicyNonRefundable, plans[0].CancellationPolicy.Type)
	assert.Nil(t, plans[1].CancellationPolicy)

	all, err := repo.ListByProperty(h.Ctx, h.DB.SQL, property.ID)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestRatePlanRepository_Lifecycle(t *testing.T) {
	h := testhelpers.NewTestHelper(t)
	repo := repositories.NewRatePlanRepository()
	owner := h.CreateTestUser(models.RoleOwner)
	property := h.CreateTestProperty(owner, models.PropertyStatusLive)

	plan := newPlan(property.ID, "early bird", 1, true)
	plan.MinAdvance = utils.Ptr(30)
	plan.Features = []string{"breakfast"}
	plan.CancellationPolicy = &models.CancellationPolicy{
		Type:                 models.PolicyModerate,
		FreeCancellationDays: utils.Ptr(14),
	}
	require.NoError(t, repo.Create(h.Ctx, h.DB.SQL, plan))

	loaded, err := repo.GetByID(h.Ctx, h.DB.SQL, property.ID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, *loaded.MinAdvance)
	assert.Equal(t, []string{"breakfast"}, []string(loaded.Features))
	require.NotNil(t, loaded.CancellationPolicy)
	assert.Equal(t, 14, *loaded.CancellationPolicy.FreeCancellationDays)

	_, err = repo.GetByID(h.Ctx, h.DB.SQL, uuid.New(), plan.ID)
	assert.ErrorIs(t, err, types.ErrRatePlanNotFound)

	loaded.Name = "earliest bird"
	loaded.CancellationPolicy = &models.CancellationPolicy{Type: models.PolicyNonRefundable}
	require.NoError(t, repo.Update(h.Ctx, h.DB.SQL, loaded))
	assert.Equal(t, int64(1), h.Count(&models.CancellationPolicy{}, "rate_plan_id = ?", plan.ID))

	policy, err := repo.GetPolicy(h.Ctx, h.DB.SQL, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyNonRefundable, policy.Type)

	require.NoError(t, repo.Deactivate(h.Ctx, h.DB.SQL, property.ID, plan.ID))
	active, err := repo.GetActiveByProperty(h.Ctx, h.DB.SQL, property.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	policy, err = repo.GetPolicy(h.Ctx, h.DB.SQL, plan.ID)
	require.NoError(t, err)
	assert.NotNil(t, policy, "deactivated plans keep their policy")

	assert.ErrorIs(t, repo.Deactivate(h.Ctx, h.DB.SQL, property.ID, uuid.New()), types.ErrRatePlanNotFound)
}
