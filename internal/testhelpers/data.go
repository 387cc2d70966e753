package testhelpers

import (
	"fmt"
	"time"

	"staylane/internal/models"
	"staylane/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// UniqueEmail generates a unique email for testing.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@staylane.test", prefix, uuid.NewString()[:8])
}

func Money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func (h *TestHelper) CreateTestUser(role models.UserRole) *models.User {
	h.T.Helper()

	user := &models.User{
		FirstName: "Test",
		LastName:  string(role),
		Email:     utils.Ptr(UniqueEmail(string(role))),
		Role:      role,
		IsActive:  true,
	}
	require.NoError(h.T, h.DB.SQL.WithContext(h.Ctx).Create(user).Error, "Failed to create test user")
	return user
}

// CreateTestProperty persists a property owned by owner in the given status.
func (h *TestHelper) CreateTestProperty(owner *models.User, status models.PropertyStatus) *models.Property {
	h.T.Helper()

	property := &models.Property{
		OwnerID: owner.ID,
		Name:    "Cabin " + uuid.NewString()[:6],
		Status:  status,
	}
	require.NoError(h.T, h.DB.SQL.WithContext(h.Ctx).Create(property).Error, "Failed to create test property")
	return property
}

// UniformWeeklyPricing prices every weekday at full with half-day at half.
func UniformWeeklyPricing(propertyID uuid.UUID, full, half string) *models.WeeklyPricing {
	f, hd := Money(full), Money(half)
	return &models.WeeklyPricing{
		PropertyID:            propertyID,
		SundayPrice:           f,
		MondayPrice:           f,
		TuesdayPrice:          f,
		WednesdayPrice:        f,
		ThursdayPrice:         f,
		FridayPrice:           f,
		SaturdayPrice:         f,
		SundayHalfDayPrice:    hd,
		MondayHalfDayPrice:    hd,
		TuesdayHalfDayPrice:   hd,
		WednesdayHalfDayPrice: hd,
		ThursdayHalfDayPrice:  hd,
		FridayHalfDayPrice:    hd,
		SaturdayHalfDayPrice:  hd,
	}
}

func (h *TestHelper) SetWeeklyPricing(pricing *models.WeeklyPricing) *models.WeeklyPricing {
	h.T.Helper()
	require.NoError(h.T, h.DB.SQL.WithContext(h.Ctx).Create(pricing).Error, "Failed to create weekly pricing")
	return pricing
}

func (h *TestHelper) CreateDateOverride(propertyID uuid.UUID, date time.Time, price string, halfDay *string) *models.DateOverride {
	h.T.Helper()

	override := &models.DateOverride{
		PropertyID: propertyID,
		Date:       utils.DateOnly(date),
		Price:      Money(price),
	}
	if halfDay != nil {
		override.HalfDayPrice = utils.Ptr(Money(*halfDay))
	}
	require.NoError(h.T, h.DB.SQL.WithContext(h.Ctx).Create(override).Error, "Failed to create date override")
	return override
}

// CreateTestRatePlan persists plan (PropertyID must be set) with an optional policy.
func (h *TestHelper) CreateTestRatePlan(plan *models.RatePlan, policy *models.CancellationPolicy) *models.RatePlan {
	h.T.Helper()

	if plan.Features == nil {
		plan.Features = []string{}
	}
	require.NoError(h.T, h.DB.SQL.WithContext(h.Ctx).Create(plan).Error, "Failed to create rate plan")

	if policy != nil {
		policy.RatePlanID = plan.ID
		require.NoError(h.T, h.DB.SQL.WithContext(h.Ctx).Create(policy).Error, "Failed to create cancellation policy")
		plan.CancellationPolicy = policy
	}
	return plan
}

// CreateTestReservation persists a confirmed reservation and marks its nights unavailable.
func (h *TestHelper) CreateTestReservation(
	property *models.Property,
	guest *models.User,
	checkIn, checkOut time.Time,
	total string,
	ratePlan *models.RatePlan,
) *models.Reservation {
	h.T.Helper()

	reservation := &models.Reservation{
		PropertyID: property.ID,
		GuestID:    guest.ID,
		CheckIn:    utils.DateOnly(checkIn),
		CheckOut:   utils.DateOnly(checkOut),
		GuestCount: 2,
		TotalPrice: Money(total),
		Status:     models.ReservationConfirmed,
	}
	if ratePlan != nil {
		reservation.RatePlanID = &ratePlan.ID
	}
	require.NoError(h.T, h.DB.SQL.WithContext(h.Ctx).Create(reservation).Error, "Failed to create reservation")

	for _, date := range reservation.StayDates() {
		row := &models.Availability{PropertyID: property.ID, Date: date, IsAvailable: false}
		require.NoError(h.T, h.DB.SQL.WithContext(h.Ctx).Create(row).Error)
	}
	return reservation
}

func (h *TestHelper) SetReservationStatus(reservation *models.Reservation, status models.ReservationStatus) {
	h.T.Helper()
	require.NoError(h.T, h.DB.SQL.WithContext(h.Ctx).
		Model(reservation).
		Update("status", status).Error)
	reservation.Status = status
}
