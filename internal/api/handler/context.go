package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/swahilipot/room-booking/internal/api/middleware"
	"github.com/swahilipot/room-booking/internal/core/ports"
)

// ctxActor extracts the caller identity injected by the Auth middleware and
// fails fast when it is missing.
func ctxActor(c echo.Context) (ports.Actor, error) {
	id, _ := c.Get(middleware.CtxUserID).(int64)
	role, _ := c.Get(middleware.CtxRole).(string)
	if id <= 0 || role == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Actor{UserID: id, Role: role}, nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	return id, nil
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
