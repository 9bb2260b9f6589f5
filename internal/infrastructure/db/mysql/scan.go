package mysql

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/swahilipot/room-booking/internal/core/domain"
)

const (
	roomColumns    = `r.id, r.name, r.space, r.capacity, r.amenities, r.status`
	userColumns    = `id, email, password_hash, full_name, department, role`
	bookingColumns = `b.id, b.user_id, b.room_id, b.booking_date, b.start_time, b.end_time, b.status, b.created_at`
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*domain.Room, error) {
	var (
		room      domain.Room
		space     sql.NullString
		amenities []byte
		status    sql.NullString
	)
	if err := row.Scan(&room.ID, &room.Name, &space, &room.Capacity, &amenities, &status); err != nil {
		return nil, err
	}
	room.Space = space.String
	room.Status = status.String
	room.Amenities = domain.DecodeAmenities(amenities)
	return &room, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u          domain.User
		department sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &department, &u.Role); err != nil {
		return nil, err
	}
	u.Department = department.String
	return &u, nil
}

// TIME columns arrive as text even with parseTime enabled.
func scanBooking(row rowScanner, extra ...any) (*domain.Booking, error) {
	var (
		b          domain.Booking
		date       time.Time
		start, end string
		status     string
	)
	dest := append([]any{&b.ID, &b.UserID, &b.RoomID, &date, &start, &end, &status, &b.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	b.Date = domain.DateOf(date)
	if b.StartTime, err = domain.ParseTimeOfDay(start); err != nil {
		return nil, fmt.Errorf("booking %d start_time: %w", b.ID, err)
	}
	if b.EndTime, err = domain.ParseTimeOfDay(end); err != nil {
		return nil, fmt.Errorf("booking %d end_time: %w", b.ID, err)
	}
	st, ok := domain.ParseBookingStatus(status)
	if !ok {
		return nil, fmt.Errorf("booking %d: unknown status %q", b.ID, status)
	}
	b.Status = st
	return &b, nil
}
