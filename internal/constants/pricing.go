package constants

import "github.com/shopspring/decimal"

// Monetary values are kept at cent precision everywhere. Nightly prices are
// rounded to MoneyScale right after a modifier is applied and only then summed.
const MoneyScale int32 = 2

var (
	// HalfDayFallbackRatio prices a half day from a full-day override when the
	// override carries no half-day price of its own.
	HalfDayFallbackRatio = decimal.RequireFromString("0.7")

	// MaxPrice is the upper bound for any stored nightly price. Lower bound is
	// exclusive zero.
	MaxPrice = decimal.RequireFromString("99999.99")
)

// Cancellation tier defaults applied when a policy leaves a threshold unset.
const (
	DefaultFlexibleFreeCancellationDays = 1
	DefaultModerateFreeCancellationDays = 7
	DefaultModeratePartialRefundDays    = 3
	ModeratePartialRefundPercent        = 50
	FullRefundPercent                   = 100
)

const (
	StandardRateName        = "Standard Rate"
	StandardRateDescription = "Book directly at the property's nightly rate"
	DefaultAuditPageSize    = 50
	MaxAuditPageSize        = 500
)
