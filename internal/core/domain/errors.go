package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidDate        = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTime        = errors.New("time must be HH:MM or HH:MM:SS")
	ErrInvalidTimeRange   = errors.New("start time must be before end time")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminEmailReserved = errors.New("cannot use admin email for signup")
	ErrEmailTaken         = errors.New("email already registered")
	ErrForbidden          = errors.New("access forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrSlotTaken          = errors.New("room is already booked for this time slot")

	ErrIdempotencyKeyReused   = errors.New("idempotency key was already used for a different booking request")
	ErrIdempotencyKeyInFlight = errors.New("a request with this idempotency key is still being processed")
)

// ConflictError is returned when a requested window overlaps an active
// booking. It unwraps to ErrSlotTaken.
type ConflictError struct {
	Booking Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: booking %d (%s %s)", ErrSlotTaken, e.Booking.ID, e.Booking.Date, e.Booking.Range())
}

func (e *ConflictError) Unwrap() error { return ErrSlotTaken }
