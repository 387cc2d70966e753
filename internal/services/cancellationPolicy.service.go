package services

import (
	"fmt"

	"staylane/internal/constants"
	"staylane/internal/models"
	"staylane/internal/types"

	"github.com/shopspring/decimal"
)

type RefundBreakdown struct {
	RefundAmount     decimal.Decimal `json:"refundAmount"`
	CancellationFee  decimal.Decimal `json:"cancellationFee"`
	RefundPercentage int             `json:"refundPercentage"`
}

type CancellationPolicyService struct{}

func NewCancellationPolicyService() *CancellationPolicyService {
	return &CancellationPolicyService{}
}

// ComputeRefund applies the policy tiers. Thresholds are inclusive: a
// cancellation exactly freeDays out still earns the full refund.
func ComputeRefund(
	totalPrice decimal.Decimal,
	policyType models.CancellationPolicyType,
	daysBeforeCheckIn int,
	freeDays *int,
	partialDays *int,
) (RefundBreakdown, error) {
	var percent int

	switch policyType {
	case models.PolicyNonRefundable:
		percent = 0
	case models.PolicyFullyFlexible:
		if daysBeforeCheckIn >= orDefault(freeDays, constants.DefaultFlexibleFreeCancellationDays) {
			percent = constants.FullRefundPercent
		}
	case models.PolicyModerate:
		switch {
		case daysBeforeCheckIn >= orDefault(freeDays, constants.DefaultModerateFreeCancellationDays):
			percent = constants.FullRefundPercent
		case daysBeforeCheckIn >= orDefault(partialDays, constants.DefaultModeratePartialRefundDays):
			percent = constants.ModeratePartialRefundPercent
		}
	default:
		return RefundBreakdown{}, fmt.Errorf("%w: unknown cancellation policy %q", types.ErrValidation, policyType)
	}

	return breakdown(totalPrice, percent), nil
}

// HostRefund is the breakdown for an owner-initiated cancellation: always a
// full refund, whatever the policy says.
func HostRefund(totalPrice decimal.Decimal) RefundBreakdown {
	return breakdown(totalPrice, constants.FullRefundPercent)
}

func breakdown(totalPrice decimal.Decimal, percent int) RefundBreakdown {
	refund := totalPrice.
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Round(constants.MoneyScale)

	return RefundBreakdown{
		RefundAmount:     refund,
		CancellationFee:  totalPrice.Sub(refund),
		RefundPercentage: percent,
	}
}

func orDefault(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

// Refund resolves the breakdown for a reservation under policy, where a nil
// policy means the default fully flexible one.
func (s *CancellationPolicyService) Refund(
	policy *models.CancellationPolicy,
	totalPrice decimal.Decimal,
	daysBeforeCheckIn int,
	hostInitiated bool,
) (RefundBreakdown, error) {
	if hostInitiated {
		return HostRefund(totalPrice), nil
	}

	if policy == nil {
		defaultPolicy := models.DefaultCancellationPolicy()
		policy = &defaultPolicy
	}

	return ComputeRefund(
		totalPrice,
		policy.Type,
		daysBeforeCheckIn,
		policy.FreeCancellationDays,
		policy.PartialRefundDays,
	)
}

// DescribePolicy renders a one-line summary suitable for booking screens.
func (s *CancellationPolicyService) DescribePolicy(policy *models.CancellationPolicy) string {
	if policy == nil {
		defaultPolicy := models.DefaultCancellationPolicy()
		policy = &defaultPolicy
	}

	switch policy.Type {
	case models.PolicyNonRefundable:
		return "Non-refundable"
	case models.PolicyFullyFlexible:
		free := orDefault(policy.FreeCancellationDays, constants.DefaultFlexibleFreeCancellationDays)
		return fmt.Sprintf("Free cancellation until %s before check-in", pluralDays(free))
	case models.PolicyModerate:
		free := orDefault(policy.FreeCancellationDays, constants.DefaultModerateFreeCancellationDays)
		partial := orDefault(policy.PartialRefundDays, constants.DefaultModeratePartialRefundDays)
		return fmt.Sprintf(
			"Full refund until %s before check-in, %d%% refund until %s before check-in",
			pluralDays(free),
			constants.ModeratePartialRefundPercent,
			pluralDays(partial),
		)
	}

	return "Cancellation terms set by the host"
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
