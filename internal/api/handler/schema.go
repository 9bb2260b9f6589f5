package handler

import (
	"github.com/swahilipot/room-booking/internal/core/domain"
	"github.com/swahilipot/room-booking/internal/core/ports"
)

// --- Request types ---

type signupRequest struct {
	Email      string `json:"email"      validate:"required,email"`
	Password   string `json:"password"   validate:"required,min=6"`
	FullName   string `json:"fullName"   validate:"required"`
	Department string `json:"department"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type bookRequest struct {
	UserID    int64  `json:"userId"    validate:"required,gt=0"`
	RoomID    int64  `json:"roomId"    validate:"required,gt=0"`
	Date      string `json:"date"      validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime"   validate:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled"`
}

// --- Response types ---

type signupResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

type loginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

type bookingPayload struct {
	ID             int64                `json:"id"`
	RoomName       string               `json:"roomName"`
	Date           domain.Date          `json:"date"`
	StartTime      domain.TimeOfDay     `json:"startTime"`
	EndTime        domain.TimeOfDay     `json:"endTime"`
	Status         domain.BookingStatus `json:"status"`
	AlreadyExisted bool                 `json:"alreadyExisted,omitempty"`
}

type bookingResponse struct {
	Message string         `json:"message"`
	Booking bookingPayload `json:"booking"`
}

type statusResponse struct {
	Message string          `json:"message"`
	Booking *domain.Booking `json:"booking"`
}

func toBookingPayload(r *ports.BookingResult) bookingPayload {
	return bookingPayload{
		ID:             r.ID,
		RoomName:       r.RoomName,
		Date:           r.Date,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Status:         r.Status,
		AlreadyExisted: r.AlreadyExisted,
	}
}
