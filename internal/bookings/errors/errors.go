package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrDatesUnavailable means another non-cancelled booking holds at least one of the nights.
	ErrDatesUnavailable = errors.New("room is already booked for the selected dates")

	ErrAlreadyPaid = errors.New("booking is already paid with a different payment")

	ErrBookingCancelled = errors.New("booking is cancelled")

	ErrOrderMismatch = errors.New("order does not belong to booking")
)
