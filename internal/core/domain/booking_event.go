package domain

import "time"

// BookingAction names a lifecycle step recorded in the audit trail.
type BookingAction string

const (
	ActionCreated   BookingAction = "created"
	ActionConfirmed BookingAction = "confirmed"
	ActionCancelled BookingAction = "cancelled"
)

// ActionFor maps a target status to the action that produced it.
func ActionFor(status BookingStatus) BookingAction {
	switch status {
	case BookingConfirmed:
		return ActionConfirmed
	case BookingCancelled:
		return ActionCancelled
	default:
		return ActionCreated
	}
}

// BookingEvent is one entry of a booking's append-only history.
type BookingEvent struct {
	BookingID int64         `json:"bookingId"`
	Action    BookingAction `json:"action"`
	Status    BookingStatus `json:"status"`
	ActorID   int64         `json:"actorId"`
	ActorRole string        `json:"actorRole"`
	RoomID    int64         `json:"roomId"`
	Date      string        `json:"date"`
	Window    string        `json:"window"`
	Timestamp time.Time     `json:"timestamp"`
}
