package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/swahilipot/room-booking/internal/core/domain"
)

func renderError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/book", nil)
	rec := httptest.NewRecorder()
	NewHTTPErrorHandler(zerolog.Nop())(err, e.NewContext(req, rec))
	return rec
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", fmt.Errorf("%w: roomId is required", domain.ErrInvalidInput), http.StatusBadRequest, "invalid input: roomId is required"},
		{"date", fmt.Errorf("%w: %q", domain.ErrInvalidDate, "tomorrow"), http.StatusBadRequest, ""},
		{"time", domain.ErrInvalidTime, http.StatusBadRequest, ""},
		{"inverted range", domain.ErrInvalidTimeRange, http.StatusBadRequest, ""},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
		{"admin email", domain.ErrAdminEmailReserved, http.StatusForbidden, "Cannot use admin email for signup"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"room", domain.ErrRoomNotFound, http.StatusNotFound, "Room not found"},
		{"user", fmt.Errorf("book: %w", domain.ErrUserNotFound), http.StatusNotFound, "User not found"},
		{"booking", domain.ErrBookingNotFound, http.StatusNotFound, "Booking not found"},
		{"email taken", domain.ErrEmailTaken, http.StatusConflict, "Email already registered"},
		{"transition", domain.ErrInvalidTransition, http.StatusUnprocessableEntity, "invalid status transition"},
		{"key reused", domain.ErrIdempotencyKeyReused, http.StatusUnprocessableEntity, "idempotency key was already used for a different booking request"},
		{"key in flight", domain.ErrIdempotencyKeyInFlight, http.StatusConflict, "a request with this idempotency key is still being processed"},
		{"echo error", echo.NewHTTPError(http.StatusUnauthorized, "invalid token"), http.StatusUnauthorized, "invalid token"},
		{"unexpected", errors.New("dial tcp 10.0.0.1:3306: i/o timeout"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := renderError(t, tc.err)
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error == "" {
				t.Fatalf("error message must not be empty")
			}
			if tc.msg != "" && body.Error != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_Conflict(t *testing.T) {
	d, _ := domain.ParseDate("2030-05-01")
	existing := domain.Booking{
		ID:        5,
		UserID:    10,
		RoomID:    1,
		Date:      d,
		StartTime: 9 * 3600,
		EndTime:   10 * 3600,
		Status:    domain.BookingPending,
	}

	rec := renderError(t, fmt.Errorf("book: %w", &domain.ConflictError{Booking: existing}))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var body struct {
		Error              string         `json:"error"`
		ConflictingBooking map[string]any `json:"conflictingBooking"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Error != "Room is already booked for this time slot" {
		t.Fatalf("unexpected error: %q", body.Error)
	}
	if body.ConflictingBooking["id"] != float64(5) ||
		body.ConflictingBooking["startTime"] != "09:00" ||
		body.ConflictingBooking["endTime"] != "10:00" {
		t.Fatalf("unexpected conflicting booking: %v", body.ConflictingBooking)
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrRoomNotFound, c)
	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response must not be rewritten: %d %s", rec.Code, rec.Body.String())
	}
}
