package utils

import (
	"time"

	"github.com/vaughan-dsouza/certportal/internal/models"
)

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the calendar date as
// UTC midnight.
func ParseDate(field, s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, models.Invalid(field + " must be a date (YYYY-MM-DD)")
	}
	// keep the calendar date the client wrote, whatever its offset
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
