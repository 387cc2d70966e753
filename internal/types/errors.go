package types

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to status codes with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidState        = errors.New("invalid state")
	ErrValidation          = errors.New("validation error")
	ErrRatePlanUnavailable = errors.New("rate plan unavailable")
)

var (
	ErrPropertyNotFound    = fmt.Errorf("%w: property not found", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("%w: reservation not found", ErrNotFound)
	ErrRatePlanNotFound    = fmt.Errorf("%w: rate plan not found", ErrNotFound)
	ErrOverrideNotFound    = fmt.Errorf("%w: date override not found", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrJobNotFound         = fmt.Errorf("%w: scheduled job not found", ErrNotFound)

	ErrPropertyNotBookable = fmt.Errorf("%w: property is not live", ErrInvalidState)
	ErrAlreadyCancelled    = fmt.Errorf("%w: reservation already cancelled", ErrInvalidState)
	ErrCannotCancelNoShow  = fmt.Errorf("%w: no-show reservations cannot be cancelled", ErrInvalidState)
	ErrPastCheckIn         = fmt.Errorf("%w: check-in date has passed", ErrInvalidState)

	ErrPricingNotConfigured  = fmt.Errorf("%w: weekly pricing not configured", ErrValidation)
	ErrInvalidDateRange      = fmt.Errorf("%w: check-out must be after check-in", ErrValidation)
	ErrHalfDayExceedsFullDay = fmt.Errorf("%w: half-day price exceeds full-day price", ErrValidation)
	ErrPriceOutOfRange       = fmt.Errorf("%w: price must be greater than 0 and at most 99999.99", ErrValidation)
	ErrPastDate              = fmt.Errorf("%w: date is in the past", ErrValidation)
)
