package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type DateFormat string

const (
	FormatISO8601Date DateFormat = "2006-01-02"
	FormatRFC3339     DateFormat = time.RFC3339
	FormatRFC3339Nano DateFormat = time.RFC3339Nano
)

var acceptedDateFormats = []DateFormat{
	FormatISO8601Date,
	FormatRFC3339,
	FormatRFC3339Nano,
}

const hoursPerDay = 24

// ParseDate accepts an ISO date or an RFC3339 timestamp and returns the UTC
// calendar date it falls on.
func ParseDate(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, format := range acceptedDateFormats {
		if parsed, err := time.Parse(string(format), input); err == nil {
			return DateOnly(parsed), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q, expected YYYY-MM-DD", input)
}

func FormatDate(t time.Time) string {
	return t.Format(string(FormatISO8601Date))
}

// DateOnly truncates t to midnight UTC of its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NightsBetween counts nights in [checkIn, checkOut). Calendar arithmetic, so
// DST never yields a fractional night.
func NightsBetween(checkIn, checkOut time.Time) int {
	return calendarDays(DateOnly(checkIn), DateOnly(checkOut))
}

// DatesInRange returns every calendar date in [start, end).
func DatesInRange(start, end time.Time) []time.Time {
	start, end = DateOnly(start), DateOnly(end)
	if !start.Before(end) {
		return nil
	}

	dates := make([]time.Time, 0, calendarDays(start, end))
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// DaysInAdvance is the number of calendar days from today to checkIn.
func DaysInAdvance(now, checkIn time.Time) int {
	return calendarDays(DateOnly(now), DateOnly(checkIn))
}

// DaysBeforeCheckIn is ceil((checkIn - now) / 24h). A check-in later today
// counts as one day out; a check-in that has already begun is zero or less.
func DaysBeforeCheckIn(now, checkIn time.Time) int {
	hours := checkIn.Sub(now).Hours()
	return int(math.Ceil(hours / hoursPerDay))
}

func calendarDays(from, to time.Time) int {
	fromNoon := time.Date(from.Year(), from.Month(), from.Day(), 12, 0, 0, 0, time.UTC)
	toNoon := time.Date(to.Year(), to.Month(), to.Day(), 12, 0, 0, 0, time.UTC)
	return int(toNoon.Sub(fromNoon).Hours() / hoursPerDay)
}
