package services

import (
	"fmt"

	"staylane/internal/models"
)

// StayProfile is what a rate plan's constraints are checked against.
type StayProfile struct {
	Nights        int `json:"nights"`
	DaysInAdvance int `json:"daysInAdvance"`
	GuestCount    int `json:"guestCount"`
}

type ConstraintFailure struct {
	Constraint string `json:"constraint"`
	Limit      int    `json:"limit"`
	Actual     int    `json:"actual"`
}

func (f ConstraintFailure) String() string {
	return fmt.Sprintf("%s %d (got %d)", f.Constraint, f.Limit, f.Actual)
}

type RatePlanEligibilityService struct{}

func NewRatePlanEligibilityService() *RatePlanEligibilityService {
	return &RatePlanEligibilityService{}
}

func (s *RatePlanEligibilityService) IsEligible(plan *models.RatePlan, stay StayProfile) bool {
	return len(s.Evaluate(plan, stay)) == 0
}

// Evaluate lists every constraint the stay violates. Unset constraints never fail.
func (s *RatePlanEligibilityService) Evaluate(plan *models.RatePlan, stay StayProfile) []ConstraintFailure {
	checks := []struct {
		name   string
		limit  *int
		actual int
		isMin  bool
	}{
		{"minStay", plan.MinStay, stay.Nights, true},
		{"maxStay", plan.MaxStay, stay.Nights, false},
		{"minAdvanceBooking", plan.MinAdvance, stay.DaysInAdvance, true},
		{"maxAdvanceBooking", plan.MaxAdvance, stay.DaysInAdvance, false},
		{"minGuests", plan.MinGuests, stay.GuestCount, true},
		{"maxGuests", plan.MaxGuests, stay.GuestCount, false},
	}

	var failures []ConstraintFailure
	for _, check := range checks {
		if check.limit == nil {
			continue
		}
		if (check.isMin && check.actual < *check.limit) || (!check.isMin && check.actual > *check.limit) {
			failures = append(failures, ConstraintFailure{
				Constraint: check.name,
				Limit:      *check.limit,
				Actual:     check.actual,
			})
		}
	}

	return failures
}
