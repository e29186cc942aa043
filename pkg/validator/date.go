package validator

import (
	"errors"
	"strconv"
)

var (
	// ErrEmptyDate indicates the travel date is empty
	ErrEmptyDate = errors.New("travel date cannot be empty")

	// ErrInvalidDateFormat indicates the travel date is not MM/DD/YYYY
	ErrInvalidDateFormat = errors.New("travel date must be in MM/DD/YYYY format")

	// ErrInvalidDateRange indicates the month or day is out of range
	ErrInvalidDateRange = errors.New("travel date month must be 01-12 and day 01-31")
)

// DateValidator handles travel date validation
type DateValidator struct{}

// NewDateValidator creates a new date validator instance
func NewDateValidator() *DateValidator {
	return &DateValidator{}
}

// Validate validates a travel date literal.
// Accepted format is exactly 10 characters, MM/DD/YYYY, with month 1-12 and
// day 1-31. There is deliberately no month-length or leap-year check; the
// legacy record layout carries dates as opaque positional literals.
func (v *DateValidator) Validate(date string) error {
	if date == "" {
		return ErrEmptyDate
	}
	if len(date) != 10 || date[2] != '/' || date[5] != '/' {
		return ErrInvalidDateFormat
	}
	for _, i := range []int{0, 1, 3, 4, 6, 7, 8, 9} {
		if date[i] < '0' || date[i] > '9' {
			return ErrInvalidDateFormat
		}
	}

	month, err := strconv.Atoi(date[0:2])
	if err != nil {
		return ErrInvalidDateFormat
	}
	day, err := strconv.Atoi(date[3:5])
	if err != nil {
		return ErrInvalidDateFormat
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ErrInvalidDateRange
	}
	return nil
}

// IsValid reports whether date passes Validate.
func (v *DateValidator) IsValid(date string) bool {
	return v.Validate(date) == nil
}
