package cancellationController

import (
	"strings"
	"sync"
	"testing"
	"time"

	"staylane/config"
	"staylane/internal/events"
	"staylane/internal/models"
	"staylane/internal/repositories"
	"staylane/internal/services"
	"staylane/internal/testhelpers"
	"staylane/internal/types"
	"staylane/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cancellationFixture struct {
	h          *testhelpers.TestHelper
	controller CancellationControllerInterface
	bus        *events.EventBus
	guest      *models.User
	owner      *models.User
	property   *models.Property
	moderate   *models.RatePlan
}

func newCancellationFixture(t *testing.T) *cancellationFixture {
	h := testhelpers.NewTestHelper(t)
	repos := repositories.New(h.DB)
	svc := services.New(h.DB, repos, h.Clock)
	bus := events.New(nil, config.Config{})
	t.Cleanup(func() { _ = bus.Close() })

	owner := h.CreateTestUser(models.RoleOwner)
	guest := h.CreateTestUser(models.RoleGuest)
	property := h.CreateTestProperty(owner, models.PropertyStatusLive)

	moderate := h.CreateTestRatePlan(&models.RatePlan{
		PropertyID:    property.ID,
		Name:          "Moderate",
		IsActive:      true,
		ModifierType:  models.ModifierPercentage,
		ModifierValue: testhelpers.Money("0"),
	}, &models.CancellationPolicy{
		Type:                 models.PolicyModerate,
		FreeCancellationDays: utils.Ptr(7),
		PartialRefundDays:    utils.Ptr(3),
	})

	return &cancellationFixture{
		h:          h,
		controller: New(repos, svc, bus, config.Config{}, h.DB),
		bus:        bus,
		guest:      guest,
		owner:      owner,
		property:   property,
		moderate:   moderate,
	}
}

// reservation books three nights starting daysOut from today under plan, on a
// fresh property of the same owner so stays never share availability rows.
func (f *cancellationFixture) reservation(daysOut int, plan *models.RatePlan) *models.Reservation {
	property := f.h.CreateTestProperty(f.owner, models.PropertyStatusLive)
	checkIn := f.h.Date(daysOut)
	return f.h.CreateTestReservation(property, f.guest, checkIn, checkIn.AddDate(0, 0, 3), "1000", plan)
}

func (f *cancellationFixture) request(reservation *models.Reservation, user *models.User, initiatedBy string) CancellationRequest {
	return CancellationRequest{
		ReservationID:  reservation.ID,
		UserID:         user.ID,
		Reason:         "Plans changed",
		ReasonCategory: "change_of_plans",
		InitiatedBy:    initiatedBy,
	}
}

func TestGetCancellationPreview_RefundTiers(t *testing.T) {
	f := newCancellationFixture(t)

	// The helper clock reads 09:00, so a check-in N days out is ceil(N - 0.375) = N days away.
	tests := []struct {
		name        string
		daysOut     int
		wantDays    int
		wantPercent int
		wantRefund  string
	}{
		{name: "seven days is a full refund", daysOut: 7, wantDays: 7, wantPercent: 100, wantRefund: "1000"},
		{name: "five days is half", daysOut: 5, wantDays: 5, wantPercent: 50, wantRefund: "500"},
		{name: "three days is still half", daysOut: 3, wantDays: 3, wantPercent: 50, wantRefund: "500"},
		{name: "two days is nothing", daysOut: 2, wantDays: 2, wantPercent: 0, wantRefund: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reservation := f.reservation(tt.daysOut, f.moderate)

			preview, err := f.controller.GetCancellationPreview(f.h.Ctx, reservation.ID, f.guest.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, preview.DaysBeforeCheckIn)
			assert.Equal(t, tt.wantPercent, preview.RefundPercentage)
			assert.True(t, testhelpers.Money(tt.wantRefund).Equal(preview.RefundAmount), preview.RefundAmount.String())
			assert.True(t, preview.RefundAmount.Add(preview.CancellationFee).Equal(preview.TotalPrice))
			assert.Equal(t, models.PolicyModerate, preview.PolicyType)
			assert.False(t, preview.IsHostInitiated)
		})
	}
}

func TestGetCancellationPreview_DirectBookingUsesFlexibleDefault(t *testing.T) {
	f := newCancellationFixture(t)

	preview, err := f.controller.GetCancellationPreview(f.h.Ctx, f.reservation(1, nil).ID, f.guest.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyFullyFlexible, preview.PolicyType)
	assert.Equal(t, 100, preview.RefundPercentage)

	preview, err = f.controller.GetCancellationPreview(f.h.Ctx, f.reservation(0, nil).ID, f.guest.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, preview.DaysBeforeCheckIn)
	assert.Equal(t, 0, preview.RefundPercentage)
}

func TestGetCancellationPreview_HostAlwaysRefundsInFull(t *testing.T) {
	f := newCancellationFixture(t)

	nonRefundable := f.h.CreateTestRatePlan(&models.RatePlan{
		PropertyID:    f.property.ID,
		Name:          "Saver",
		IsActive:      true,
		ModifierType:  models.ModifierPercentage,
		ModifierValue: testhelpers.Money("-20"),
	}, &models.CancellationPolicy{Type: models.PolicyNonRefundable})

	for _, plan := range []*models.RatePlan{nil, f.moderate, nonRefundable} {
		preview, err := f.controller.GetCancellationPreview(f.h.Ctx, f.reservation(1, plan).ID, f.owner.ID)
		require.NoError(t, err)
		assert.True(t, preview.IsHostInitiated)
		assert.Equal(t, 100, preview.RefundPercentage)
		assert.True(t, preview.RefundAmount.Equal(preview.TotalPrice))
	}
}

func TestGetCancellationPreview_Rejections(t *testing.T) {
	f := newCancellationFixture(t)
	stranger := f.h.CreateTestUser(models.RoleGuest)

	cancelled := f.reservation(10, f.moderate)
	f.h.SetReservationStatus(cancelled, models.ReservationCancelled)

	noShow := f.reservation(10, f.moderate)
	f.h.SetReservationStatus(noShow, models.ReservationNoShow)

	tests := []struct {
		name          string
		reservationID uuid.UUID
		userID        uuid.UUID
		wantErr       error
	}{
		{name: "stranger", reservationID: f.reservation(10, nil).ID, userID: stranger.ID, wantErr: types.ErrPermissionDenied},
		{name: "already cancelled", reservationID: cancelled.ID, userID: f.guest.ID, wantErr: types.ErrAlreadyCancelled},
		{name: "no show", reservationID: noShow.ID, userID: f.guest.ID, wantErr: types.ErrCannotCancelNoShow},
		{name: "after check-in", reservationID: f.reservation(-2, nil).ID, userID: f.guest.ID, wantErr: types.ErrPastCheckIn},
		{name: "unknown reservation", reservationID: uuid.New(), userID: f.guest.ID, wantErr: types.ErrReservationNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.controller.GetCancellationPreview(f.h.Ctx, tt.reservationID, tt.userID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProcessCancellation_GuestWithPartialRefund(t *testing.T) {
	f := newCancellationFixture(t)
	reservation := f.reservation(5, f.moderate)

	received := make(chan events.Event, 1)
	require.NoError(t, f.bus.Subscribe(events.RESERVATION_CHANNEL, func(event events.Event) error {
		received <- event
		return nil
	}))

	result, err := f.controller.ProcessCancellation(f.h.Ctx, f.request(reservation, f.guest, InitiatedByGuest))
	require.NoError(t, err)

	details := result.CancellationDetails
	assert.Equal(t, 50, details.RefundPercentage)
	assert.True(t, details.RefundAmount.Equal(testhelpers.Money("500")))
	assert.True(t, details.CancellationFee.Equal(testhelpers.Money("500")))
	assert.Equal(t, f.guest.ID, details.CancelledBy)
	assert.Equal(t, testhelpers.DefaultNow, details.CancelledAt)
	require.NotNil(t, details.PayoutID)
	assert.Equal(t, models.ReservationCancelled, result.Reservation.Status)

	var stored models.Reservation
	require.NoError(t, f.h.DB.SQL.First(&stored, "id = ?", reservation.ID).Error)
	assert.Equal(t, models.ReservationCancelled, stored.Status)
	assert.Contains(t, stored.Notes, "Cancelled by guest")
	assert.Contains(t, stored.Notes, "Plans changed")
	require.NotNil(t, stored.CancellationCategory)
	assert.Equal(t, "change_of_plans", *stored.CancellationCategory)

	assert.Equal(t, int64(3), f.h.Count(&models.Availability{}, "property_id = ? AND is_available = ?", reservation.PropertyID, true))
	assert.Zero(t, f.h.Count(&models.Availability{}, "property_id = ? AND is_available = ?", reservation.PropertyID, false))

	var entries []models.AuditLogEntry
	require.NoError(t, f.h.DB.SQL.Where("reservation_id = ?", reservation.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionCancelled, entries[0].Action)
	assert.Equal(t, "confirmed", *entries[0].OldValue)
	assert.Equal(t, "cancelled", *entries[0].NewValue)
	assert.Equal(t, "500.00", entries[0].Metadata["refundAmount"])
	assert.Equal(t, "Reservation cancelled: Plans changed", entries[0].Description)

	var payouts []models.Payout
	require.NoError(t, f.h.DB.SQL.Where("reservation_id = ?", reservation.ID).Find(&payouts).Error)
	require.Len(t, payouts, 1)
	assert.True(t, payouts[0].Amount.Equal(testhelpers.Money("-500")))
	assert.True(t, payouts[0].IsRefund())
	assert.Equal(t, models.PayoutScheduled, payouts[0].Status)
	assert.Equal(t, f.guest.ID, payouts[0].RecipientID)

	select {
	case event := <-received:
		assert.Equal(t, events.RESERVATION_CANCELLED, event.Type)
		assert.Equal(t, reservation.ID.String(), event.Data["reservationId"])
	case <-time.After(time.Second):
		t.Fatal("cancellation event was not published")
	}
}

func TestProcessCancellation_NoRefundMeansNoPayout(t *testing.T) {
	f := newCancellationFixture(t)
	reservation := f.reservation(2, f.moderate)

	result, err := f.controller.ProcessCancellation(f.h.Ctx, f.request(reservation, f.guest, InitiatedByGuest))
	require.NoError(t, err)

	assert.Equal(t, 0, result.CancellationDetails.RefundPercentage)
	assert.Nil(t, result.CancellationDetails.PayoutID)
	assert.Zero(t, f.h.Count(&models.Payout{}, "reservation_id = ?", reservation.ID))
	assert.Equal(t, int64(1), f.h.Count(&models.AuditLogEntry{}, "reservation_id = ? AND action = ?", reservation.ID, models.AuditActionCancelled))
	assert.Equal(t, int64(3), f.h.Count(&models.Availability{}, "property_id = ? AND is_available = ?", reservation.PropertyID, true))
}

func TestProcessCancellation_HostInitiated(t *testing.T) {
	f := newCancellationFixture(t)
	reservation := f.reservation(2, f.moderate)

	_, err := f.controller.ProcessCancellation(f.h.Ctx, f.request(reservation, f.guest, InitiatedByHost))
	assert.ErrorIs(t, err, types.ErrPermissionDenied)

	_, err = f.controller.ProcessCancellation(f.h.Ctx, f.request(reservation, f.owner, InitiatedByGuest))
	assert.ErrorIs(t, err, types.ErrPermissionDenied)

	result, err := f.controller.ProcessCancellation(f.h.Ctx, f.request(reservation, f.owner, InitiatedByHost))
	require.NoError(t, err)
	assert.Equal(t, 100, result.CancellationDetails.RefundPercentage)
	assert.True(t, result.CancellationDetails.RefundAmount.Equal(testhelpers.Money("1000")))

	var entry models.AuditLogEntry
	require.NoError(t, f.h.DB.SQL.First(&entry, "reservation_id = ?", reservation.ID).Error)
	assert.Equal(t, models.RoleOwner, entry.UserRole)
	assert.Equal(t, f.owner.ID, entry.UserID)
}

func TestProcessCancellation_AlreadyCancelledChangesNothing(t *testing.T) {
	f := newCancellationFixture(t)
	reservation := f.reservation(10, f.moderate)

	_, err := f.controller.ProcessCancellation(f.h.Ctx, f.request(reservation, f.guest, InitiatedByGuest))
	require.NoError(t, err)

	_, err = f.controller.ProcessCancellation(f.h.Ctx, f.request(reservation, f.guest, InitiatedByGuest))
	assert.ErrorIs(t, err, types.ErrAlreadyCancelled)

	assert.Equal(t, int64(1), f.h.Count(&models.AuditLogEntry{}, "reservation_id = ?", reservation.ID))
	assert.Equal(t, int64(1), f.h.Count(&models.Payout{}, "reservation_id = ?", reservation.ID))
}

func TestProcessCancellation_ConcurrentAttemptsSerialize(t *testing.T) {
	f := newCancellationFixture(t)
	reservation := f.reservation(10, f.moderate)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.controller.ProcessCancellation(f.h.Ctx, f.request(reservation, f.guest, InitiatedByGuest))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, types.ErrAlreadyCancelled)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), f.h.Count(&models.AuditLogEntry{}, "reservation_id = ?", reservation.ID))
	assert.Equal(t, int64(1), f.h.Count(&models.Payout{}, "reservation_id = ?", reservation.ID))
}

func TestProcessCancellation_FailureRollsBackEverything(t *testing.T) {
	f := newCancellationFixture(t)
	reservation := f.reservation(10, f.moderate)

	require.NoError(t, f.h.DB.SQL.Migrator().DropTable(&models.Payout{}))

	_, err := f.controller.ProcessCancellation(f.h.Ctx, f.request(reservation, f.guest, InitiatedByGuest))
	require.Error(t, err)

	var stored models.Reservation
	require.NoError(t, f.h.DB.SQL.First(&stored, "id = ?", reservation.ID).Error)
	assert.Equal(t, models.ReservationConfirmed, stored.Status)
	assert.Nil(t, stored.CancelledAt)
	assert.Zero(t, f.h.Count(&models.AuditLogEntry{}, "reservation_id = ?", reservation.ID))
	assert.Equal(t, int64(3), f.h.Count(&models.Availability{}, "property_id = ? AND is_available = ?", reservation.PropertyID, false))
}

func TestProcessCancellation_Validation(t *testing.T) {
	f := newCancellationFixture(t)
	reservation := f.reservation(10, f.moderate)

	tests := []struct {
		name   string
		mutate func(r *CancellationRequest)
	}{
		{name: "blank reason", mutate: func(r *CancellationRequest) { r.Reason = "   " }},
		{name: "unknown category", mutate: func(r *CancellationRequest) { r.ReasonCategory = "bored" }},
		{name: "unknown initiator", mutate: func(r *CancellationRequest) { r.InitiatedBy = "admin" }},
		{name: "reason too long", mutate: func(r *CancellationRequest) { r.Reason = strings.Repeat("a", 1001) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := f.request(reservation, f.guest, InitiatedByGuest)
			tt.mutate(&request)

			_, err := f.controller.ProcessCancellation(f.h.Ctx, request)
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}

	assert.Zero(t, f.h.Count(&models.AuditLogEntry{}, "reservation_id = ?", reservation.ID))
}
