package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/swahilipot/room-booking/internal/core/ports"
)

// LogNotifier writes messages to the log instead of delivering them. It is
// the development default.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, msg ports.Message) error {
	n.log.Info().
		Str("message_id", msg.ID).
		Str("kind", msg.Kind).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("email")
	return nil
}
