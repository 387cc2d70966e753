package services

import (
	"testing"

	"staylane/internal/models"
	"staylane/internal/types"
	"staylane/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRefund(t *testing.T) {
	total := money("1000")

	tests := []struct {
		name        string
		policy      models.CancellationPolicyType
		days        int
		free        *int
		partial     *int
		wantPercent int
		wantRefund  string
		wantFee     string
	}{
		{name: "non refundable far out", policy: models.PolicyNonRefundable, days: 90, wantPercent: 0, wantRefund: "0", wantFee: "1000"},
		{name: "flexible default at one day", policy: models.PolicyFullyFlexible, days: 1, wantPercent: 100, wantRefund: "1000", wantFee: "0"},
		{name: "flexible default same day", policy: models.PolicyFullyFlexible, days: 0, wantPercent: 0, wantRefund: "0", wantFee: "1000"},
		{name: "flexible custom threshold", policy: models.PolicyFullyFlexible, days: 2, free: utils.Ptr(3), wantPercent: 0, wantRefund: "0", wantFee: "1000"},
		{name: "moderate exactly seven", policy: models.PolicyModerate, days: 7, free: utils.Ptr(7), partial: utils.Ptr(3), wantPercent: 100, wantRefund: "1000", wantFee: "0"},
		{name: "moderate five", policy: models.PolicyModerate, days: 5, free: utils.Ptr(7), partial: utils.Ptr(3), wantPercent: 50, wantRefund: "500", wantFee: "500"},
		{name: "moderate exactly three", policy: models.PolicyModerate, days: 3, wantPercent: 50, wantRefund: "500", wantFee: "500"},
		{name: "moderate two", policy: models.PolicyModerate, days: 2, free: utils.Ptr(7), partial: utils.Ptr(3), wantPercent: 0, wantRefund: "0", wantFee: "1000"},
		{name: "moderate defaults", policy: models.PolicyModerate, days: 6, wantPercent: 50, wantRefund: "500", wantFee: "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeRefund(total, tt.policy, tt.days, tt.free, tt.partial)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPercent, got.RefundPercentage)
			assert.True(t, money(tt.wantRefund).Equal(got.RefundAmount), "refund %s", got.RefundAmount)
			assert.True(t, money(tt.wantFee).Equal(got.CancellationFee), "fee %s", got.CancellationFee)
			assert.True(t, got.RefundAmount.Add(got.CancellationFee).Equal(total))
		})
	}

	_, err := ComputeRefund(total, "strict", 10, nil, nil)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestComputeRefund_RoundsToCents(t *testing.T) {
	got, err := ComputeRefund(money("333.33"), models.PolicyModerate, 4, nil, nil)
	require.NoError(t, err)
	assert.True(t, got.RefundAmount.Equal(money("166.67")), got.RefundAmount.String())
	assert.True(t, got.CancellationFee.Equal(money("166.66")), got.CancellationFee.String())
}

func TestCancellationPolicyService_Refund(t *testing.T) {
	service := NewCancellationPolicyService()
	total := money("800")
	nonRefundable := &models.CancellationPolicy{Type: models.PolicyNonRefundable}

	t.Run("host override is always full", func(t *testing.T) {
		for _, policy := range []*models.CancellationPolicy{nil, nonRefundable, {Type: models.PolicyModerate}} {
			got, err := service.Refund(policy, total, 0, true)
			require.NoError(t, err)
			assert.Equal(t, 100, got.RefundPercentage)
			assert.True(t, got.RefundAmount.Equal(total))
		}
	})

	t.Run("nil policy is fully flexible", func(t *testing.T) {
		got, err := service.Refund(nil, total, 2, false)
		require.NoError(t, err)
		assert.Equal(t, 100, got.RefundPercentage)

		got, err = service.Refund(nil, total, 0, false)
		require.NoError(t, err)
		assert.Equal(t, 0, got.RefundPercentage)
	})

	t.Run("guest under non refundable", func(t *testing.T) {
		got, err := service.Refund(nonRefundable, total, 30, false)
		require.NoError(t, err)
		assert.Equal(t, 0, got.RefundPercentage)
		assert.True(t, got.CancellationFee.Equal(total))
	})
}

func TestDescribePolicy(t *testing.T) {
	service := NewCancellationPolicyService()

	assert.Equal(t, "Free cancellation until 1 day before check-in", service.DescribePolicy(nil))
	assert.Equal(t, "Non-refundable", service.DescribePolicy(&models.CancellationPolicy{Type: models.PolicyNonRefundable}))
	assert.Equal(
		t,
		"Full refund until 7 days before check-in, 50% refund until 3 days before check-in",
		service.DescribePolicy(&models.CancellationPolicy{Type: models.PolicyModerate}),
	)
	assert.Equal(
		t,
		"Free cancellation until 14 days before check-in",
		service.DescribePolicy(&models.CancellationPolicy{Type: models.PolicyFullyFlexible, FreeCancellationDays: utils.Ptr(14)}),
	)
}
