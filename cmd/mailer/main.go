// Command mailer drains queued booking emails from RabbitMQ and relays them
// over SMTP. Run it alongside the API when NOTIFY_DRIVER=amqp.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/swahilipot/room-booking/internal/infrastructure/notify"
	"github.com/swahilipot/room-booking/internal/pkg/config"
	"github.com/swahilipot/room-booking/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "room-booking-mailer",
	})

	smtp, err := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.Notify.From,
		Timeout:  cfg.Notify.SendTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("smtp notifier")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := notify.NewConsumer(notify.ConsumerConfig{
		URL:         cfg.AMQP.URL,
		Queue:       cfg.AMQP.Queue,
		SendTimeout: cfg.Notify.SendTimeout,
	}, smtp, logger.With("mailer"))

	log.Info().Str("queue", cfg.AMQP.Queue).Str("smtp_host", cfg.SMTP.Host).Msg("mailer started")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
	log.Info().Msg("mailer stopped")
}
