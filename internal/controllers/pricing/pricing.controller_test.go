package pricingController

import (
	"strings"
	"testing"

	"staylane/config"
	"staylane/internal/models"
	"staylane/internal/repositories"
	"staylane/internal/services"
	"staylane/internal/testhelpers"
	"staylane/internal/types"
	"staylane/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pricingFixture struct {
	h          *testhelpers.TestHelper
	repos      repositories.Repository
	controller PricingControllerInterface
	owner      *models.User
	stranger   *models.User
	admin      *models.User
	property   *models.Property
}

func newPricingFixture(t *testing.T) *pricingFixture {
	h := testhelpers.NewTestHelper(t)
	repos := repositories.New(h.DB)
	svc := services.New(h.DB, repos, h.Clock)
	owner := h.CreateTestUser(models.RoleOwner)

	return &pricingFixture{
		h:          h,
		repos:      repos,
		controller: New(repos, svc, config.Config{}, h.DB),
		owner:      owner,
		stranger:   h.CreateTestUser(models.RoleOwner),
		admin:      h.CreateTestUser(models.RoleAdmin),
		property:   h.CreateTestProperty(owner, models.PropertyStatusLive),
	}
}

func uniformWeek(full, half string) WeeklyPricingRequest {
	var request WeeklyPricingRequest
	for day := range request.FullDayPrices {
		request.FullDayPrices[day] = testhelpers.Money(full)
		request.HalfDayPrices[day] = testhelpers.Money(half)
	}
	return request
}

func TestSetWeeklyPricing(t *testing.T) {
	f := newPricingFixture(t)

	request := uniformWeek("300", "200")
	request.FullDayPrices[5] = testhelpers.Money("450")

	pricing, err := f.controller.SetWeeklyPricing(f.h.Ctx, f.owner, f.property.ID, request)
	require.NoError(t, err)
	assert.True(t, pricing.FridayPrice.Equal(testhelpers.Money("450")))

	_, err = f.controller.SetWeeklyPricing(f.h.Ctx, f.admin, f.property.ID, uniformWeek("350", "250"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.h.Count(&models.WeeklyPricing{}, "property_id = ?", f.property.ID))

	stored, err := f.repos.Pricing.GetWeeklyPricing(f.h.Ctx, f.h.DB.SQL, f.property.ID)
	require.NoError(t, err)
	assert.True(t, stored.MondayPrice.Equal(testhelpers.Money("350")))

	halfAboveFull := uniformWeek("300", "200")
	halfAboveFull.HalfDayPrices[3] = testhelpers.Money("301")

	tests := []struct {
		name    string
		user    *models.User
		request WeeklyPricingRequest
		wantErr error
	}{
		{name: "not the owner", user: f.stranger, request: uniformWeek("300", "200"), wantErr: types.ErrPermissionDenied},
		{name: "half day above full day", user: f.owner, request: halfAboveFull, wantErr: types.ErrHalfDayExceedsFullDay},
		{name: "zero price", user: f.owner, request: uniformWeek("0", "0"), wantErr: types.ErrPriceOutOfRange},
		{name: "price above maximum", user: f.owner, request: uniformWeek("100000", "200"), wantErr: types.ErrPriceOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.controller.SetWeeklyPricing(f.h.Ctx, tt.user, f.property.ID, tt.request)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDateOverrides(t *testing.T) {
	f := newPricingFixture(t)
	future := f.h.Date(14)

	override, err := f.controller.UpsertDateOverride(f.h.Ctx, f.owner, f.property.ID, DateOverrideRequest{
		Date:         future,
		Price:        testhelpers.Money("1200"),
		HalfDayPrice: utils.Ptr(testhelpers.Money("800")),
		Reason:       utils.Ptr("  Festival weekend "),
	})
	require.NoError(t, err)
	require.NotNil(t, override.Reason)
	assert.Equal(t, "Festival weekend", *override.Reason)

	_, err = f.controller.UpsertDateOverride(f.h.Ctx, f.owner, f.property.ID, DateOverrideRequest{
		Date:  future,
		Price: testhelpers.Money("900"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.h.Count(&models.DateOverride{}, "property_id = ?", f.property.ID))

	_, err = f.controller.UpsertDateOverride(f.h.Ctx, f.owner, f.property.ID, DateOverrideRequest{
		Date:  f.h.Today(),
		Price: testhelpers.Money("500"),
	})
	require.NoError(t, err, "today is not in the past")

	f.h.CreateDateOverride(f.property.ID, f.h.Date(-3), "999", nil)

	overrides, err := f.controller.ListDateOverrides(f.h.Ctx, f.owner, f.property.ID)
	require.NoError(t, err)
	require.Len(t, overrides, 2)
	assert.Equal(t, utils.FormatDate(f.h.Today()), utils.FormatDate(overrides[0].Date))
	assert.True(t, overrides[1].Price.Equal(testhelpers.Money("900")))

	require.NoError(t, f.controller.DeleteDateOverride(f.h.Ctx, f.owner, f.property.ID, future))
	assert.ErrorIs(t, f.controller.DeleteDateOverride(f.h.Ctx, f.owner, f.property.ID, future), types.ErrOverrideNotFound)
	assert.ErrorIs(t, f.controller.DeleteDateOverride(f.h.Ctx, f.owner, f.property.ID, f.h.Date(-3)), types.ErrPastDate)

	_, err = f.controller.ListDateOverrides(f.h.Ctx, f.stranger, f.property.ID)
	assert.ErrorIs(t, err, types.ErrPermissionDenied)
}

func TestUpsertDateOverride_Rejections(t *testing.T) {
	f := newPricingFixture(t)

	tests := []struct {
		name    string
		user    *models.User
		request DateOverrideRequest
		wantErr error
	}{
		{
			name:    "past date",
			user:    f.owner,
			request: DateOverrideRequest{Date: f.h.Date(-1), Price: testhelpers.Money("300")},
			wantErr: types.ErrPastDate,
		},
		{
			name: "half day above full day",
			user: f.owner,
			request: DateOverrideRequest{
				Date:         f.h.Date(5),
				Price:        testhelpers.Money("300"),
				HalfDayPrice: utils.Ptr(testhelpers.Money("301")),
			},
			wantErr: types.ErrHalfDayExceedsFullDay,
		},
		{
			name:    "negative price",
			user:    f.owner,
			request: DateOverrideRequest{Date: f.h.Date(5), Price: testhelpers.Money("-1")},
			wantErr: types.ErrPriceOutOfRange,
		},
		{
			name: "reason too long",
			user: f.owner,
			request: DateOverrideRequest{
				Date:   f.h.Date(5),
				Price:  testhelpers.Money("300"),
				Reason: utils.Ptr(strings.Repeat("x", 256)),
			},
			wantErr: types.ErrValidation,
		},
		{
			name:    "not the owner",
			user:    f.stranger,
			request: DateOverrideRequest{Date: f.h.Date(5), Price: testhelpers.Money("300")},
			wantErr: types.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.controller.UpsertDateOverride(f.h.Ctx, tt.user, f.property.ID, tt.request)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Zero(t, f.h.Count(&models.DateOverride{}, "property_id = ?", f.property.ID))
}

func earlyBirdRequest() RatePlanRequest {
	return RatePlanRequest{
		Name:              "Early Bird",
		Description:       "Book a month ahead",
		Priority:          10,
		ModifierType:      models.ModifierPercentage,
		ModifierValue:     decimal.NewFromInt(-15),
		MinAdvanceBooking: utils.Ptr(30),
		Features:          []string{"Free parking"},
		CancellationPolicy: &CancellationPolicyRequest{
			Type:                 models.PolicyModerate,
			FreeCancellationDays: utils.Ptr(14),
			PartialRefundDays:    utils.Ptr(7),
		},
	}
}

func TestRatePlanLifecycle(t *testing.T) {
	f := newPricingFixture(t)

	plan, err := f.controller.CreateRatePlan(f.h.Ctx, f.owner, f.property.ID, earlyBirdRequest())
	require.NoError(t, err)
	assert.True(t, plan.IsActive)
	assert.Equal(t, f.property.ID, plan.PropertyID)

	policy, err := f.repos.RatePlan.GetPolicy(f.h.Ctx, f.h.DB.SQL, plan.ID)
	require.NoError(t, err)
	require.NotNil(t, policy)
	assert.Equal(t, models.PolicyModerate, policy.Type)

	update := earlyBirdRequest()
	update.Name = "Early Bird Plus"
	update.CancellationPolicy = &CancellationPolicyRequest{Type: models.PolicyNonRefundable}
	updated, err := f.controller.UpdateRatePlan(f.h.Ctx, f.owner, f.property.ID, plan.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Early Bird Plus", updated.Name)

	policy, err = f.repos.RatePlan.GetPolicy(f.h.Ctx, f.h.DB.SQL, plan.ID)
	require.NoError(t, err)
	require.NotNil(t, policy)
	assert.Equal(t, models.PolicyNonRefundable, policy.Type)
	assert.Equal(t, int64(1), f.h.Count(&models.CancellationPolicy{}, "rate_plan_id = ?", plan.ID))

	update.CancellationPolicy = nil
	_, err = f.controller.UpdateRatePlan(f.h.Ctx, f.owner, f.property.ID, plan.ID, update)
	require.NoError(t, err)
	assert.Zero(t, f.h.Count(&models.CancellationPolicy{}, "rate_plan_id = ?", plan.ID))

	require.NoError(t, f.controller.DeactivateRatePlan(f.h.Ctx, f.owner, f.property.ID, plan.ID))

	plans, err := f.controller.ListRatePlans(f.h.Ctx, f.owner, f.property.ID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.False(t, plans[0].IsActive)

	active, err := f.repos.RatePlan.GetActiveByProperty(f.h.Ctx, f.h.DB.SQL, f.property.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	missing := uuid.New()
	assert.ErrorIs(t, f.controller.DeactivateRatePlan(f.h.Ctx, f.owner, f.property.ID, missing), types.ErrRatePlanNotFound)
	_, err = f.controller.UpdateRatePlan(f.h.Ctx, f.owner, f.property.ID, missing, earlyBirdRequest())
	assert.ErrorIs(t, err, types.ErrRatePlanNotFound)
	assert.ErrorIs(t, f.controller.DeactivateRatePlan(f.h.Ctx, f.stranger, f.property.ID, plan.ID), types.ErrPermissionDenied)
}

func TestCreateRatePlan_Rejections(t *testing.T) {
	f := newPricingFixture(t)

	tests := []struct {
		name    string
		user    *models.User
		mutate  func(r *RatePlanRequest)
		wantErr error
	}{
		{name: "missing name", user: f.owner, mutate: func(r *RatePlanRequest) { r.Name = "  " }, wantErr: types.ErrValidation},
		{name: "unknown modifier", user: f.owner, mutate: func(r *RatePlanRequest) { r.ModifierType = "multiplier" }, wantErr: types.ErrValidation},
		{
			name:    "percentage below -100",
			user:    f.owner,
			mutate:  func(r *RatePlanRequest) { r.ModifierValue = decimal.NewFromInt(-150) },
			wantErr: types.ErrValidation,
		},
		{
			name: "min stay above max stay",
			user: f.owner,
			mutate: func(r *RatePlanRequest) {
				r.MinStay = utils.Ptr(5)
				r.MaxStay = utils.Ptr(2)
			},
			wantErr: types.ErrValidation,
		},
		{
			name: "min guests above max guests",
			user: f.owner,
			mutate: func(r *RatePlanRequest) {
				r.MinGuests = utils.Ptr(6)
				r.MaxGuests = utils.Ptr(4)
			},
			wantErr: types.ErrValidation,
		},
		{
			name: "partial refund window beyond free window",
			user: f.owner,
			mutate: func(r *RatePlanRequest) {
				r.CancellationPolicy.FreeCancellationDays = utils.Ptr(2)
				r.CancellationPolicy.PartialRefundDays = utils.Ptr(5)
			},
			wantErr: types.ErrValidation,
		},
		{
			name:    "unknown policy",
			user:    f.owner,
			mutate:  func(r *RatePlanRequest) { r.CancellationPolicy.Type = "strict" },
			wantErr: types.ErrValidation,
		},
		{name: "not the owner", user: f.stranger, mutate: func(r *RatePlanRequest) {}, wantErr: types.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := earlyBirdRequest()
			tt.mutate(&request)

			_, err := f.controller.CreateRatePlan(f.h.Ctx, tt.user, f.property.ID, request)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Zero(t, f.h.Count(&models.RatePlan{}, "property_id = ?", f.property.ID))
}
