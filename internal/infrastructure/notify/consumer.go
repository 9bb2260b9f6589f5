package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/swahilipot/room-booking/internal/core/ports"
)

const defaultPrefetch = 10

// ConsumerConfig configures the mailer side of the email queue.
type ConsumerConfig struct {
	URL         string
	Queue       string
	Prefetch    int
	SendTimeout time.Duration
}

// Consumer drains email jobs from RabbitMQ into a Notifier. Every job gets
// one delivery attempt; failed or malformed jobs are rejected without
// requeue.
type Consumer struct {
	cfg      ConsumerConfig
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewConsumer(cfg ConsumerConfig, notifier ports.Notifier, log zerolog.Logger) *Consumer {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = defaultPrefetch
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	return &Consumer{cfg: cfg, notifier: notifier, log: log}
}

// Run consumes until ctx is cancelled or the broker closes the channel.
func (c *Consumer) Run(ctx context.Context) error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	if err := declareQueue(ch, c.cfg.Queue); err != nil {
		return err
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}

	c.log.Info().Str("queue", c.cfg.Queue).Msg("mailer consuming")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var msg ports.Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.log.Error().Err(err).Str("message_id", d.MessageId).Msg("malformed email job")
		_ = d.Nack(false, false)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, c.cfg.SendTimeout)
	defer cancel()

	if err := c.notifier.Send(sendCtx, msg); err != nil {
		c.log.Error().Err(err).
			Str("message_id", msg.ID).
			Str("kind", msg.Kind).
			Str("to", msg.To).
			Msg("email delivery failed")
		_ = d.Nack(false, false)
		return
	}
	c.log.Info().Str("message_id", msg.ID).Str("kind", msg.Kind).Msg("email delivered")
	_ = d.Ack(false)
}
