package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/swahilipot/room-booking/internal/core/domain"
	"github.com/swahilipot/room-booking/internal/core/ports"
)

// BookingRepository implements ports.BookingRepository using MySQL.
type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// WithRoomLock opens a transaction and locks the room row with SELECT ... FOR
// UPDATE. Admissions for the same room queue on that lock until the holder
// commits or rolls back.
func (r *BookingRepository) WithRoomLock(ctx context.Context, roomID int64, fn func(tx ports.BookingTx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	room, err := scanRoom(tx.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms r WHERE r.id = ? FOR UPDATE`, roomID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRoomNotFound
	}
	if err != nil {
		return fmt.Errorf("lock room: %w", err)
	}

	if err = fn(&bookingTx{tx: tx, room: room}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking tx: %w", err)
	}
	return nil
}

type bookingTx struct {
	tx   *sql.Tx
	room *domain.Room
}

func (t *bookingTx) Room() *domain.Room { return t.room }

// ListActive uses a locking read so it observes rows committed by the
// previous lock holder rather than the transaction's snapshot.
func (t *bookingTx) ListActive(ctx context.Context, date domain.Date) ([]domain.Booking, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings b
		WHERE b.room_id = ?
		AND b.booking_date = ?
		AND b.status IN ('pending', 'confirmed')
		ORDER BY b.start_time, b.id
		FOR UPDATE`, t.room.ID, date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (t *bookingTx) FindUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(t.tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (t *bookingTx) Insert(ctx context.Context, b *domain.Booking) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, room_id, booking_date, start_time, end_time, status) VALUES (?, ?, ?, ?, ?, ?)`,
		b.UserID, b.RoomID, b.Date.String(), b.StartTime.SQL(), b.EndTime.SQL(), string(b.Status))
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("booking id: %w", err)
	}
	b.ID = id
	b.CreatedAt = time.Now().UTC()
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BookingView, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`, r.name, r.space, r.capacity
		FROM bookings b
		JOIN rooms r ON b.room_id = r.id
		WHERE b.user_id = ?
		ORDER BY b.booking_date DESC, b.start_time DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	views := []domain.BookingView{}
	for rows.Next() {
		var (
			v     domain.BookingView
			space sql.NullString
		)
		b, err := scanBooking(rows, &v.RoomName, &space, &v.Capacity)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		v.Booking = *b
		v.Space = space.String
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return views, nil
}

// UpdateStatus is a compare-and-set on the status column.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return domain.ErrInvalidTransition
}
