package domain

import "time"

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions. No
// transition leads out of cancelled, so a status change never re-activates a
// slot and never needs a fresh conflict check.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled},
}

// ActiveStatuses are the statuses that occupy a room.
var ActiveStatuses = []BookingStatus{BookingPending, BookingConfirmed}

// ParseBookingStatus validates a raw status string.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch st := BookingStatus(s); st {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return st, true
	}
	return "", false
}

// IsActive reports whether the status participates in conflict detection.
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking reserves a room for [StartTime, EndTime) on Date.
type Booking struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"userId"`
	RoomID    int64         `json:"roomId"`
	Date      Date          `json:"date"`
	StartTime TimeOfDay     `json:"startTime"`
	EndTime   TimeOfDay     `json:"endTime"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Range returns the booking's occupied window.
func (b Booking) Range() TimeRange {
	return TimeRange{Start: b.StartTime, End: b.EndTime}
}

// BookingView is a booking joined with the room it occupies, as listed for
// a user.
type BookingView struct {
	Booking
	RoomName string `json:"roomName"`
	Space    string `json:"space"`
	Capacity int    `json:"capacity"`
}
