package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/swahilipot/room-booking/internal/core/ports"
)

type RoomHandler struct {
	service ports.RoomService
}

func NewRoomHandler(service ports.RoomService) *RoomHandler {
	return &RoomHandler{service: service}
}

// List returns the room catalog, or only the rooms free on ?date=.
//
// @Summary      List rooms
// @Tags         rooms
// @Produce      json
// @Param        date  query     string  false  "Only rooms without an active booking on this date (YYYY-MM-DD)"
// @Success      200   {array}   domain.Room
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /rooms [get]
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.service.ListRooms(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rooms)
}

// Get returns a single room.
//
// @Summary      Get a room
// @Tags         rooms
// @Produce      json
// @Param        id   path      int  true  "Room ID"
// @Success      200  {object}  domain.Room
// @Failure      404  {object}  map[string]string
// @Router       /rooms/{id} [get]
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	room, err := h.service.GetRoom(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, room)
}
