//go:build integration

package mysql

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/swahilipot/room-booking/internal/core/domain"
	"github.com/swahilipot/room-booking/internal/core/ports"
	"github.com/swahilipot/room-booking/internal/core/service"
)

// Run with: MYSQL_TEST_DSN='user:pass@tcp(localhost:3306)/roombooking_test' go test -tags integration ./internal/infrastructure/db/mysql/
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set")
	}
	dc, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	dc.ParseTime = true
	dc.Loc = time.UTC
	connector, err := mysql.NewConnector(dc)
	if err != nil {
		t.Fatalf("connector: %v", err)
	}
	db := sql.OpenDB(connector)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return db
}

func seedUserAndRoom(t *testing.T, db *sql.DB) (userID, roomID int64) {
	t.Helper()
	ctx := context.Background()

	user, err := NewUserRepository(db).Create(ctx, &domain.User{
		Email:        "it-" + uuid.NewString() + "@example.com",
		PasswordHash: "x",
		FullName:     "Integration",
		Role:         domain.RoleUser,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	res, err := db.ExecContext(ctx, `INSERT INTO rooms (name, capacity) VALUES (?, ?)`, "it-room-"+uuid.NewString(), 4)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	roomID, err = res.LastInsertId()
	if err != nil {
		t.Fatalf("room id: %v", err)
	}

	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM bookings WHERE room_id = ?`, roomID)
		_, _ = db.Exec(`DELETE FROM rooms WHERE id = ?`, roomID)
		_, _ = db.Exec(`DELETE FROM users WHERE id = ?`, user.ID)
	})
	return user.ID, roomID
}

func admit(ctx context.Context, repo *BookingRepository, userID, roomID int64, date domain.Date, window domain.TimeRange) error {
	return repo.WithRoomLock(ctx, roomID, func(tx ports.BookingTx) error {
		existing, err := tx.ListActive(ctx, date)
		if err != nil {
			return err
		}
		if c := service.FindConflict(existing, window); c != nil {
			return &domain.ConflictError{Booking: *c}
		}
		// Widens the window in which an unlocked competitor would also see no rows.
		time.Sleep(50 * time.Millisecond)
		return tx.Insert(ctx, &domain.Booking{
			UserID:    userID,
			RoomID:    roomID,
			Date:      date,
			StartTime: window.Start,
			EndTime:   window.End,
			Status:    domain.BookingPending,
		})
	})
}

func TestBookingRepository_WithRoomLock_ConcurrentAdmission(t *testing.T) {
	db := openTestDB(t)
	userID, roomID := seedUserAndRoom(t, db)
	repo := NewBookingRepository(db)

	date, err := domain.ParseDate("2030-06-15")
	if err != nil {
		t.Fatal(err)
	}
	window, err := domain.ParseTimeRange("10:00", "11:00")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const workers = 2
	start := make(chan struct{})
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = admit(ctx, repo, userID, roomID, date, window)
		}(i)
	}
	close(start)
	wg.Wait()

	var admitted, conflicts int
	for i, err := range errs {
		var ce *domain.ConflictError
		switch {
		case err == nil:
			admitted++
		case errors.As(err, &ce):
			conflicts++
		default:
			t.Fatalf("worker %d: unexpected error: %v", i, err)
		}
	}
	if admitted != 1 || conflicts != 1 {
		t.Fatalf("expected 1 admitted and 1 conflict, got %d and %d", admitted, conflicts)
	}

	var count int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE room_id = ? AND booking_date = ?`, roomID, date.String()).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stored booking, got %d", count)
	}
}

func TestBookingRepository_WithRoomLock_TouchingAdmitted(t *testing.T) {
	db := openTestDB(t)
	userID, roomID := seedUserAndRoom(t, db)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	date, _ := domain.ParseDate("2030-06-16")
	first, _ := domain.ParseTimeRange("09:00", "10:00")
	second, _ := domain.ParseTimeRange("10:00", "11:00")

	if err := admit(ctx, repo, userID, roomID, date, first); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := admit(ctx, repo, userID, roomID, date, second); err != nil {
		t.Fatalf("touching booking rejected: %v", err)
	}
}

func TestBookingRepository_WithRoomLock_MissingRoom(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)

	called := false
	err := repo.WithRoomLock(context.Background(), -1, func(ports.BookingTx) error {
		called = true
		return nil
	})
	if !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if called {
		t.Fatal("fn must not run for a missing room")
	}
}
