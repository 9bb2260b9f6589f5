package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/swahilipot/room-booking/internal/core/domain"
	"github.com/swahilipot/room-booking/internal/core/ports"
)

type RoomService struct {
	repo   ports.RoomRepository
	logger zerolog.Logger
}

func NewRoomService(repo ports.RoomRepository, logger zerolog.Logger) *RoomService {
	return &RoomService{repo: repo, logger: logger}
}

// ListRooms returns the whole catalog when date is blank. Otherwise it
// returns the rooms without a pending or confirmed booking on that date;
// cancelled bookings leave a room available.
func (s *RoomService) ListRooms(ctx context.Context, date string) ([]domain.Room, error) {
	if strings.TrimSpace(date) == "" {
		rooms, err := s.repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list rooms: %w", err)
		}
		return rooms, nil
	}

	d, err := domain.ParseDate(date)
	if err != nil {
		return nil, err
	}
	rooms, err := s.repo.ListAvailable(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("list available rooms: %w", err)
	}
	s.logger.Debug().Str("date", d.String()).Int("available", len(rooms)).Msg("availability query")
	return rooms, nil
}

func (s *RoomService) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	if id <= 0 {
		return nil, domain.ErrRoomNotFound
	}
	return s.repo.FindByID(ctx, id)
}
