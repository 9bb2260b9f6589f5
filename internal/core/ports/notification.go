package ports

import "context"

// Message is a single email.
type Message struct {
	ID      string `json:"id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
	// Kind labels the message for logs and metrics (e.g. "welcome").
	Kind string `json:"kind"`
}

// Notifier delivers a message. Implementations make one attempt.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// NotificationQueue accepts messages for detached delivery. Enqueue never
// blocks and never reports delivery failures.
type NotificationQueue interface {
	Enqueue(msg Message)
}
