package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/swahilipot/room-booking/docs"
	"github.com/swahilipot/room-booking/internal/api/handler"
	"github.com/swahilipot/room-booking/internal/api/middleware"
	"github.com/swahilipot/room-booking/internal/core/domain"
	"github.com/swahilipot/room-booking/internal/core/ports"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Auth     ports.AuthService
	Rooms    ports.RoomService
	Bookings ports.BookingService
	Health   *handler.HealthHandler

	JWTSecret   string
	FrontendURL string
	Logger      zerolog.Logger

	// Registerer receives the HTTP request metrics. Nil uses the default
	// Prometheus registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	if d.FrontendURL != "" {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     []string{d.FrontendURL},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, handler.HeaderIdempotencyKey},
			AllowCredentials: true,
		}))
	}
	reg := d.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "roombooking",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))

	authHandler := handler.NewAuthHandler(d.Auth)
	roomHandler := handler.NewRoomHandler(d.Rooms)
	bookingHandler := handler.NewBookingHandler(d.Bookings)
	requireAuth := middleware.Auth(d.JWTSecret)

	// --- Auth routes ---
	e.POST("/signup", authHandler.Signup)
	e.POST("/login", authHandler.Login)

	// --- Rooms ---
	e.GET("/rooms", roomHandler.List)
	e.GET("/rooms/:id", roomHandler.Get)

	// --- Bookings ---
	e.POST("/book", bookingHandler.Book)
	e.GET("/bookings/user/:userId", bookingHandler.ListByUser)

	bookings := e.Group("/bookings", requireAuth)
	bookings.PATCH("/:id/status", bookingHandler.UpdateStatus, middleware.RBAC(domain.RoleAdmin))
	bookings.POST("/:id/cancel", bookingHandler.Cancel)
	bookings.GET("/:id/history", bookingHandler.History)

	// --- Operations (no auth required) ---
	if d.Health != nil {
		e.GET("/health", d.Health.Liveness)
		e.GET("/health/ready", d.Health.Readiness)
	}
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
