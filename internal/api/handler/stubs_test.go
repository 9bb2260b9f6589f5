package handler

import (
	"context"
	"io"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/swahilipot/room-booking/internal/core/domain"
	"github.com/swahilipot/room-booking/internal/core/ports"
)

type stubAuthService struct {
	signupFn func(ctx context.Context, in ports.SignupInput) (*domain.User, error)
	loginFn  func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	return s.signupFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

type stubRoomService struct {
	listFn func(ctx context.Context, date string) ([]domain.Room, error)
	getFn  func(ctx context.Context, id int64) (*domain.Room, error)
}

func (s *stubRoomService) ListRooms(ctx context.Context, date string) ([]domain.Room, error) {
	return s.listFn(ctx, date)
}

func (s *stubRoomService) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	return s.getFn(ctx, id)
}

type stubBookingService struct {
	bookFn    func(ctx context.Context, in ports.CreateBookingInput) (*ports.BookingResult, error)
	listFn    func(ctx context.Context, userID int64) ([]domain.BookingView, error)
	updateFn  func(ctx context.Context, in ports.UpdateStatusInput) (*domain.Booking, error)
	cancelFn  func(ctx context.Context, id int64, actor ports.Actor) (*domain.Booking, error)
	historyFn func(ctx context.Context, id int64, actor ports.Actor) ([]domain.BookingEvent, error)
}

func (s *stubBookingService) Book(ctx context.Context, in ports.CreateBookingInput) (*ports.BookingResult, error) {
	return s.bookFn(ctx, in)
}

func (s *stubBookingService) ListByUser(ctx context.Context, userID int64) ([]domain.BookingView, error) {
	return s.listFn(ctx, userID)
}

func (s *stubBookingService) UpdateStatus(ctx context.Context, in ports.UpdateStatusInput) (*domain.Booking, error) {
	return s.updateFn(ctx, in)
}

func (s *stubBookingService) Cancel(ctx context.Context, id int64, actor ports.Actor) (*domain.Booking, error) {
	return s.cancelFn(ctx, id, actor)
}

func (s *stubBookingService) History(ctx context.Context, id int64, actor ports.Actor) ([]domain.BookingEvent, error) {
	return s.historyFn(ctx, id, actor)
}

// newTestContext builds an echo context with the validator installed, the
// same way the router configures it.
func newTestContext(method, target string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
