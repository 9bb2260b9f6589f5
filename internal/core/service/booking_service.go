package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/swahilipot/room-booking/internal/core/domain"
	"github.com/swahilipot/room-booking/internal/core/ports"
	"github.com/swahilipot/room-booking/internal/pkg/metrics"
)

// BookingDeps wires the collaborators of BookingService. Events and
// Idempotency are optional.
type BookingDeps struct {
	Bookings    ports.BookingRepository
	Rooms       ports.RoomRepository
	Users       ports.UserRepository
	Events      ports.BookingEventRepository
	Idempotency ports.IdempotencyStore
	Queue       ports.NotificationQueue
	AdminEmail  string
}

type BookingService struct {
	bookings   ports.BookingRepository
	rooms      ports.RoomRepository
	users      ports.UserRepository
	events     ports.BookingEventRepository
	idem       ports.IdempotencyStore
	queue      ports.NotificationQueue
	adminEmail string
	logger     zerolog.Logger
	now        func() time.Time

	replayWait time.Duration
	replayPoll time.Duration
}

func NewBookingService(deps BookingDeps, logger zerolog.Logger) *BookingService {
	return &BookingService{
		bookings:   deps.Bookings,
		rooms:      deps.Rooms,
		users:      deps.Users,
		events:     deps.Events,
		idem:       deps.Idempotency,
		queue:      deps.Queue,
		adminEmail: deps.AdminEmail,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		replayWait: 2 * time.Second,
		replayPoll: 25 * time.Millisecond,
	}
}

// Book admits a booking request. The room check, conflict check, user check
// and insert run under one room lock, so two overlapping requests for the
// same room can never both be admitted. Notifications go out only after the
// insert has committed.
func (s *BookingService) Book(ctx context.Context, in ports.CreateBookingInput) (*ports.BookingResult, error) {
	if in.UserID <= 0 || in.RoomID <= 0 {
		metrics.BookingsRejectedTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: userId and roomId are required", domain.ErrInvalidInput)
	}
	date, err := domain.ParseDate(in.Date)
	if err != nil {
		metrics.BookingsRejectedTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	window, err := domain.ParseTimeRange(in.StartTime, in.EndTime)
	if err != nil {
		metrics.BookingsRejectedTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	fingerprint := bookingFingerprint(in.RoomID, date, window)
	claimed := false
	if in.IdempotencyKey != "" && s.idem != nil {
		res, ok, err := s.claimKey(ctx, in.UserID, in.IdempotencyKey, fingerprint)
		if err != nil || res != nil {
			return res, err
		}
		claimed = ok
	}

	var (
		room    domain.Room
		user    *domain.User
		booking domain.Booking
	)
	started := time.Now()
	err = s.bookings.WithRoomLock(ctx, in.RoomID, func(tx ports.BookingTx) error {
		room = *tx.Room()

		active, err := tx.ListActive(ctx, date)
		if err != nil {
			return fmt.Errorf("list active bookings: %w", err)
		}
		if c := FindConflict(active, window); c != nil {
			return &domain.ConflictError{Booking: *c}
		}

		user, err = tx.FindUser(ctx, in.UserID)
		if err != nil {
			return err
		}

		booking = domain.Booking{
			UserID:    user.ID,
			RoomID:    room.ID,
			Date:      date,
			StartTime: window.Start,
			EndTime:   window.End,
			Status:    domain.BookingPending,
		}
		return tx.Insert(ctx, &booking)
	})
	if err != nil {
		metrics.BookingAdmissionDuration.WithLabelValues("rejected").Observe(time.Since(started).Seconds())
		s.logRejection(in, err)
		if claimed {
			s.releaseKey(ctx, in.UserID, in.IdempotencyKey)
		}
		return nil, err
	}
	metrics.BookingAdmissionDuration.WithLabelValues("admitted").Observe(time.Since(started).Seconds())
	metrics.BookingsCreatedTotal.Inc()

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("room", room.Name).
		Str("user", user.Email).
		Str("date", date.String()).
		Str("window", window.String()).
		Msg("booking created")

	if claimed {
		rec := ports.IdempotencyRecord{Fingerprint: fingerprint, BookingID: booking.ID}
		if err := s.idem.Complete(ctx, in.UserID, in.IdempotencyKey, rec); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to store idempotency key")
		}
	}
	s.audit(ctx, &booking, domain.ActionCreated, ports.Actor{UserID: user.ID, Role: user.Role})

	if s.adminEmail != "" {
		s.enqueue(adminRequestMessage(s.adminEmail, &room, user, &booking))
	}
	s.enqueue(userRequestMessage(&room, user, &booking))

	return &ports.BookingResult{
		ID:        booking.ID,
		RoomName:  room.Name,
		Date:      booking.Date,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		Status:    booking.Status,
	}, nil
}

// claimKey reserves an Idempotency-Key for this request. It returns a
// replayed result when the key already produced a booking for the same
// request, and true when the caller now holds the reservation. A key held by
// a request still in flight is polled until that request finishes. Store
// failures fall through to a normal admission without idempotency.
func (s *BookingService) claimKey(ctx context.Context, userID int64, key, fingerprint string) (*ports.BookingResult, bool, error) {
	deadline := time.Now().Add(s.replayWait)
	for {
		rec, reserved, err := s.idem.Reserve(ctx, userID, key, fingerprint)
		if err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency reserve failed, processing anyway")
			return nil, false, nil
		}
		if reserved {
			return nil, true, nil
		}
		if rec.Fingerprint != fingerprint {
			metrics.BookingsRejectedTotal.WithLabelValues("idempotency_mismatch").Inc()
			s.logger.Info().Int64("user_id", userID).Str("idempotency_key", key).Msg("idempotency key reused for a different request")
			return nil, false, domain.ErrIdempotencyKeyReused
		}
		if rec.BookingID != 0 {
			res, err := s.replay(ctx, userID, key, rec.BookingID)
			return res, false, err
		}
		if !time.Now().Before(deadline) {
			return nil, false, domain.ErrIdempotencyKeyInFlight
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(s.replayPoll):
		}
	}
}

func (s *BookingService) releaseKey(ctx context.Context, userID int64, key string) {
	if err := s.idem.Release(ctx, userID, key); err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
	}
}

// replay answers a request whose Idempotency-Key already produced bookingID.
func (s *BookingService) replay(ctx context.Context, userID int64, key string, bookingID int64) (*ports.BookingResult, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load idempotent booking: %w", err)
	}
	if b.UserID != userID {
		return nil, domain.ErrIdempotencyKeyReused
	}
	roomName := ""
	if room, err := s.rooms.FindByID(ctx, b.RoomID); err == nil {
		roomName = room.Name
	}
	metrics.BookingsReplayedTotal.Inc()
	s.logger.Info().Str("idempotency_key", key).Int64("booking_id", bookingID).Msg("idempotent replay")
	return &ports.BookingResult{
		ID:             b.ID,
		RoomName:       roomName,
		Date:           b.Date,
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		Status:         b.Status,
		AlreadyExisted: true,
	}, nil
}

// bookingFingerprint identifies what a booking request asks for, so a reused
// key can be told apart from a retry. Times use their canonical form.
func bookingFingerprint(roomID int64, date domain.Date, window domain.TimeRange) string {
	return fmt.Sprintf("room=%d;date=%s;window=%s-%s", roomID, date, window.Start.SQL(), window.End.SQL())
}

func (s *BookingService) logRejection(in ports.CreateBookingInput, err error) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		metrics.BookingsRejectedTotal.WithLabelValues("conflict").Inc()
		s.logger.Info().
			Int64("room_id", in.RoomID).
			Str("date", in.Date).
			Int64("conflicting_booking_id", conflict.Booking.ID).
			Msg("booking rejected: slot taken")
	case errors.Is(err, domain.ErrRoomNotFound):
		metrics.BookingsRejectedTotal.WithLabelValues("room_not_found").Inc()
	case errors.Is(err, domain.ErrUserNotFound):
		metrics.BookingsRejectedTotal.WithLabelValues("user_not_found").Inc()
	default:
		metrics.BookingsRejectedTotal.WithLabelValues("store_error").Inc()
		s.logger.Error().Err(err).Int64("room_id", in.RoomID).Msg("failed to create booking")
	}
}

func (s *BookingService) ListByUser(ctx context.Context, userID int64) ([]domain.BookingView, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: userId must be positive", domain.ErrInvalidInput)
	}
	views, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return views, nil
}

// UpdateStatus performs an administrative confirm or cancel.
func (s *BookingService) UpdateStatus(ctx context.Context, in ports.UpdateStatusInput) (*domain.Booking, error) {
	if in.Actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	target, ok := domain.ParseBookingStatus(in.Status)
	if !ok || target == domain.BookingPending {
		return nil, fmt.Errorf("%w: status must be confirmed or cancelled", domain.ErrInvalidInput)
	}
	return s.transition(ctx, in.BookingID, target, in.Actor)
}

// Cancel lets the booking owner, or an admin, withdraw a booking.
func (s *BookingService) Cancel(ctx context.Context, bookingID int64, actor ports.Actor) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, domain.BookingCancelled, actor)
}

func (s *BookingService) transition(ctx context.Context, id int64, target domain.BookingStatus, actor ports.Actor) (*domain.Booking, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && b.UserID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	if !b.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, b.Status, target)
	}
	if err := s.bookings.UpdateStatus(ctx, id, b.Status, target); err != nil {
		return nil, err
	}
	b.Status = target
	metrics.BookingTransitionsTotal.WithLabelValues(string(target)).Inc()

	s.logger.Info().
		Int64("booking_id", id).
		Str("status", string(target)).
		Int64("actor_id", actor.UserID).
		Str("actor_role", actor.Role).
		Msg("booking status changed")

	s.audit(ctx, b, domain.ActionFor(target), actor)
	s.notifyOwner(ctx, b)
	return b, nil
}

// History returns the booking's audit trail to its owner or an admin.
func (s *BookingService) History(ctx context.Context, bookingID int64, actor ports.Actor) ([]domain.BookingEvent, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && b.UserID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	if s.events == nil {
		return []domain.BookingEvent{}, nil
	}
	events, err := s.events.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list booking events: %w", err)
	}
	return events, nil
}

// audit appends a lifecycle event. Failures never affect the caller.
func (s *BookingService) audit(ctx context.Context, b *domain.Booking, action domain.BookingAction, actor ports.Actor) {
	if s.events == nil {
		return
	}
	ev := &domain.BookingEvent{
		BookingID: b.ID,
		Action:    action,
		Status:    b.Status,
		ActorID:   actor.UserID,
		ActorRole: actor.Role,
		RoomID:    b.RoomID,
		Date:      b.Date.String(),
		Window:    b.Range().String(),
		Timestamp: s.now(),
	}
	if err := s.events.Append(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Int64("booking_id", b.ID).Str("action", string(action)).Msg("failed to append booking event")
	}
}

func (s *BookingService) notifyOwner(ctx context.Context, b *domain.Booking) {
	user, err := s.users.FindByID(ctx, b.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("booking_id", b.ID).Msg("owner lookup failed, skipping notification")
		return
	}
	room, err := s.rooms.FindByID(ctx, b.RoomID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("booking_id", b.ID).Msg("room lookup failed, skipping notification")
		return
	}
	s.enqueue(statusChangedMessage(room, user, b))
}

func (s *BookingService) enqueue(msg ports.Message) {
	if s.queue == nil || msg.To == "" {
		return
	}
	s.queue.Enqueue(msg)
}
