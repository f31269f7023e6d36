// Package email delivers the courtesy notices the attendance sweep
// produces when it force-closes a visit. The Sender port keeps the
// orchestrators ignorant of the provider; wiring picks Resend when an
// API key is configured and the noop sender otherwise.
package email

import (
	"context"
	"time"
)

// SendRequest is one outbound message.
type SendRequest struct {
	To      []string
	From    string // falls back to the sender's default when empty
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult reports what the provider accepted.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers messages. SendBatch returns results in request order.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
