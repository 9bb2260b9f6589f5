// Command api serves the SwahiliPot Hub room booking HTTP API.
//
// @title                       SwahiliPot Hub Room Booking API
// @version                     1.0
// @description                 Meeting room catalog, booking admission with conflict detection, and booking lifecycle.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/swahilipot/room-booking/internal/api"
	"github.com/swahilipot/room-booking/internal/api/handler"
	"github.com/swahilipot/room-booking/internal/core/ports"
	"github.com/swahilipot/room-booking/internal/core/service"
	mongodb "github.com/swahilipot/room-booking/internal/infrastructure/db/mongo"
	"github.com/swahilipot/room-booking/internal/infrastructure/db/mysql"
	redisdb "github.com/swahilipot/room-booking/internal/infrastructure/db/redis"
	"github.com/swahilipot/room-booking/internal/infrastructure/notify"
	"github.com/swahilipot/room-booking/internal/infrastructure/queue"
	"github.com/swahilipot/room-booking/internal/pkg/config"
	"github.com/swahilipot/room-booking/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "room-booking",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	db, err := mysql.Open(ctx, mysql.Config{
		Host:            cfg.MySQL.Host,
		Port:            cfg.MySQL.Port,
		User:            cfg.MySQL.User,
		Password:        cfg.MySQL.Password,
		Database:        cfg.MySQL.Name,
		MaxOpenConns:    cfg.MySQL.MaxOpenConns,
		MaxIdleConns:    cfg.MySQL.MaxIdleConns,
		ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	if err := mysql.EnsureSchema(ctx, db); err != nil {
		return err
	}
	log.Info().Str("host", cfg.MySQL.Host).Str("database", cfg.MySQL.Name).Msg("mysql connected")

	mongoClient, mongoDB, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	events := mongodb.NewBookingEventRepository(mongoDB)
	if err := events.EnsureIndexes(ctx); err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")

	redisClient, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

	// --- Notifications ---
	notifier, closeNotifier, err := buildNotifier(cfg, log)
	if err != nil {
		return err
	}
	defer closeNotifier()

	dispatchCtx, cancelDispatch := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(notifier, queue.Options{
		Workers:     cfg.Notify.Workers,
		Buffer:      cfg.Notify.Buffer,
		SendTimeout: cfg.Notify.SendTimeout,
	}, logger.With("notifications"))
	dispatcher.Start(dispatchCtx)

	// --- Services ---
	users := mysql.NewUserRepository(db)
	rooms := mysql.NewRoomRepository(db)

	authService := service.NewAuthService(users, dispatcher, service.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
		AdminEmail: cfg.Admin.Email,
	}, logger.With("auth"))
	if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}

	bookingService := service.NewBookingService(service.BookingDeps{
		Bookings:    mysql.NewBookingRepository(db),
		Rooms:       rooms,
		Users:       users,
		Events:      events,
		Idempotency: redisdb.NewIdempotencyStore(redisClient, cfg.Redis.IdempotencyTTL),
		Queue:       dispatcher,
		AdminEmail:  cfg.Admin.Email,
	}, logger.With("bookings"))

	e := api.NewRouter(api.Deps{
		Auth:     authService,
		Rooms:    service.NewRoomService(rooms, logger.With("rooms")),
		Bookings: bookingService,
		Health: handler.NewHealthHandler(handler.PingerFunc(db.PingContext), map[string]handler.Pinger{
			"mysql":   handler.PingerFunc(db.PingContext),
			"mongodb": mongodb.Pinger{Client: mongoClient},
			"redis":   redisdb.Pinger{Client: redisClient},
		}, logger.With("health")),
		JWTSecret:   cfg.JWTSecret,
		FrontendURL: cfg.FrontendURL,
		Logger:      logger.With("http"),
	})

	// --- Serve ---
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			cancelDispatch()
			dispatcher.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	cancelDispatch()
	dispatcher.Wait()
	log.Info().Msg("server stopped cleanly")
	return nil
}

// buildNotifier selects the delivery backend from NOTIFY_DRIVER. The returned
// close func is safe to call for every driver.
func buildNotifier(cfg *config.Config, log zerolog.Logger) (ports.Notifier, func(), error) {
	switch cfg.Notify.Driver {
	case "", "log":
		return notify.NewLogNotifier(logger.With("mail")), func() {}, nil
	case "smtp":
		n, err := notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.Notify.From,
			Timeout:  cfg.Notify.SendTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return n, func() {}, nil
	case "amqp":
		n, err := notify.NewAMQPNotifier(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("queue", cfg.AMQP.Queue).Msg("publishing notifications to rabbitmq")
		return n, func() { _ = n.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown NOTIFY_DRIVER %q", cfg.Notify.Driver)
	}
}
