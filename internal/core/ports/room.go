package ports

import (
	"context"

	"github.com/swahilipot/room-booking/internal/core/domain"
)

// RoomRepository reads the room catalog.
type RoomRepository interface {
	// List returns every room ordered by name.
	List(ctx context.Context) ([]domain.Room, error)
	// ListAvailable returns rooms with no active booking on date, ordered by name.
	ListAvailable(ctx context.Context, date domain.Date) ([]domain.Room, error)
	FindByID(ctx context.Context, id int64) (*domain.Room, error)
}

// RoomService exposes the availability query.
type RoomService interface {
	// ListRooms returns the full catalog when date is empty, otherwise the
	// rooms free of active bookings on that date.
	ListRooms(ctx context.Context, date string) ([]domain.Room, error)
	GetRoom(ctx context.Context, id int64) (*domain.Room, error)
}
