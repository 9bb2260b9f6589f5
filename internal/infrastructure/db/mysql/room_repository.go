package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/swahilipot/room-booking/internal/core/domain"
)

// RoomRepository implements ports.RoomRepository using MySQL.
type RoomRepository struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	return r.query(ctx, `SELECT `+roomColumns+` FROM rooms r ORDER BY r.name`)
}

// ListAvailable excludes rooms holding a pending or confirmed booking on date.
func (r *RoomRepository) ListAvailable(ctx context.Context, date domain.Date) ([]domain.Room, error) {
	return r.query(ctx, `
		SELECT `+roomColumns+`
		FROM rooms r
		WHERE r.id NOT IN (
			SELECT room_id
			FROM bookings
			WHERE booking_date = ?
			AND status IN ('pending', 'confirmed')
		)
		ORDER BY r.name`, date.String())
}

func (r *RoomRepository) FindByID(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := scanRoom(r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms r WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find room: %w", err)
	}
	return room, nil
}

func (r *RoomRepository) query(ctx context.Context, q string, args ...any) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	rooms := []domain.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}
	return rooms, nil
}
