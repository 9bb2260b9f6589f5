package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/swahilipot/room-booking/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry POST /book safely.
const HeaderIdempotencyKey = "Idempotency-Key"

type BookingHandler struct {
	service ports.BookingService
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Book creates a pending booking when the window is free.
//
// @Summary      Book a room
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string       false  "Replays the original booking when reused"
// @Param        body             body      bookRequest  true   "Booking request"
// @Success      201              {object}  bookingResponse
// @Success      200              {object}  bookingResponse  "Idempotent replay"
// @Failure      400              {object}  map[string]string
// @Failure      404              {object}  map[string]string
// @Failure      409              {object}  map[string]any
// @Failure      500              {object}  map[string]string
// @Router       /book [post]
func (h *BookingHandler) Book(c echo.Context) error {
	var req bookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Book(c.Request().Context(), ports.CreateBookingInput{
		UserID:         req.UserID,
		RoomID:         req.RoomID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		IdempotencyKey: strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey)),
	})
	if err != nil {
		return err
	}

	if res.AlreadyExisted {
		return c.JSON(http.StatusOK, bookingResponse{Message: "Booking already exists", Booking: toBookingPayload(res)})
	}
	return c.JSON(http.StatusCreated, bookingResponse{Message: "Booking created successfully", Booking: toBookingPayload(res)})
}

// ListByUser returns a user's bookings, newest first.
//
// @Summary      List a user's bookings
// @Tags         bookings
// @Produce      json
// @Param        userId  path      int  true  "User ID"
// @Success      200     {array}   domain.BookingView
// @Failure      400     {object}  map[string]string
// @Router       /bookings/user/{userId} [get]
func (h *BookingHandler) ListByUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	views, err := h.service.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// UpdateStatus confirms or cancels a booking.
//
// @Summary      Confirm or cancel a booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Booking ID"
// @Param        body  body      updateStatusRequest  true  "Target status"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /bookings/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	b, err := h.service.UpdateStatus(c.Request().Context(), ports.UpdateStatusInput{
		BookingID: id,
		Status:    req.Status,
		Actor:     actor,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Message: "Booking " + string(b.Status), Booking: b})
}

// Cancel withdraws a booking on behalf of its owner.
//
// @Summary      Cancel a booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  statusResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	b, err := h.service.Cancel(c.Request().Context(), id, actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Message: "Booking cancelled", Booking: b})
}

// History lists the lifecycle events of a booking.
//
// @Summary      Booking history
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {array}   domain.BookingEvent
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /bookings/{id}/history [get]
func (h *BookingHandler) History(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	events, err := h.service.History(c.Request().Context(), id, actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}
