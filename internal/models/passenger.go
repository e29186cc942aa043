package models

import "errors"

// Passenger age bounds accepted at booking time.
const (
	MinPassengerAge = 1
	MaxPassengerAge = 119
)

var (
	ErrEmptyPassengerName  = errors.New("passenger name is required")
	ErrInvalidPassengerAge = errors.New("passenger age must be between 1 and 119")
)

// Passenger is a single traveller on a booking. Immutable once attached.
type Passenger struct {
	Name   string `json:"name" db:"name"`
	Age    int    `json:"age" db:"age"`
	Gender string `json:"gender" db:"gender"` // M/F/O
}

// Validate checks the passenger fields accepted at booking time.
func (p Passenger) Validate() error {
	if p.Name == "" {
		return ErrEmptyPassengerName
	}
	if p.Age < MinPassengerAge || p.Age > MaxPassengerAge {
		return ErrInvalidPassengerAge
	}
	return nil
}
