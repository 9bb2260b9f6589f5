package ports

import (
	"context"

	"github.com/swahilipot/room-booking/internal/core/domain"
)

// BookingTx is the unit of work an admission runs in. Every method observes
// the same transaction, started by BookingRepository.WithRoomLock.
type BookingTx interface {
	// Room returns the locked room row.
	Room() *domain.Room
	// ListActive returns pending and confirmed bookings of the locked room on
	// date, ordered by start time then id.
	ListActive(ctx context.Context, date domain.Date) ([]domain.Booking, error)
	FindUser(ctx context.Context, id int64) (*domain.User, error)
	// Insert persists b and assigns its ID and CreatedAt.
	Insert(ctx context.Context, b *domain.Booking) error
}

// BookingRepository defines persistence operations for bookings.
type BookingRepository interface {
	// WithRoomLock runs fn while holding an exclusive lock on roomID. No
	// other WithRoomLock call for the same room makes progress until fn
	// returns. fn's error rolls back everything it wrote; a nil error
	// commits. A missing room yields domain.ErrRoomNotFound without calling fn.
	WithRoomLock(ctx context.Context, roomID int64, fn func(tx BookingTx) error) error
	FindByID(ctx context.Context, id int64) (*domain.Booking, error)
	// ListByUser returns the user's bookings, newest date and time first.
	ListByUser(ctx context.Context, userID int64) ([]domain.BookingView, error)
	// UpdateStatus moves a booking from one status to another and reports
	// domain.ErrInvalidTransition when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error
}

// BookingEventRepository stores the append-only booking audit trail.
type BookingEventRepository interface {
	Append(ctx context.Context, event *domain.BookingEvent) error
	// ListByBooking returns a booking's events, oldest first.
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.BookingEvent, error)
}

// IdempotencyRecord binds an Idempotency-Key to the request that claimed it.
// BookingID stays 0 while the claiming request is still being admitted.
type IdempotencyRecord struct {
	Fingerprint string
	BookingID   int64
}

// IdempotencyStore remembers which booking a client-supplied key produced.
// Keys are scoped to the requesting user.
type IdempotencyStore interface {
	// Reserve atomically claims key for fingerprint. When the key is already
	// held it returns the existing record and false.
	Reserve(ctx context.Context, userID int64, key, fingerprint string) (IdempotencyRecord, bool, error)
	// Complete binds a reserved key to the admitted booking.
	Complete(ctx context.Context, userID int64, key string, rec IdempotencyRecord) error
	// Release drops a reservation whose admission failed.
	Release(ctx context.Context, userID int64, key string) error
}

// CreateBookingInput carries the raw fields of a booking request.
type CreateBookingInput struct {
	UserID         int64
	RoomID         int64
	Date           string
	StartTime      string
	EndTime        string
	IdempotencyKey string
}

// BookingResult is returned by the lifecycle manager after admission.
type BookingResult struct {
	ID        int64
	RoomName  string
	Date      domain.Date
	StartTime domain.TimeOfDay
	EndTime   domain.TimeOfDay
	Status    domain.BookingStatus
	// AlreadyExisted is true when the Idempotency-Key matched an earlier booking.
	AlreadyExisted bool
}

// Actor identifies who performs a status transition.
type Actor struct {
	UserID int64
	Role   string
}

// UpdateStatusInput carries a status transition request.
type UpdateStatusInput struct {
	BookingID int64
	Status    string
	Actor     Actor
}

// BookingService defines the booking lifecycle use cases.
type BookingService interface {
	Book(ctx context.Context, in CreateBookingInput) (*BookingResult, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.BookingView, error)
	UpdateStatus(ctx context.Context, in UpdateStatusInput) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID int64, actor Actor) (*domain.Booking, error)
	History(ctx context.Context, bookingID int64, actor Actor) ([]domain.BookingEvent, error)
}
