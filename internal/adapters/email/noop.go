package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender logs instead of delivering. It is the default when no
// Resend key is configured, so development setups never email members.
type NoopSender struct{}

// NewNoopSender returns a sender that only logs.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the message and fabricates a result.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	slog.Info("email_event", "event", "noop_send", "to", req.To, "subject", req.Subject)
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}

// SendBatch logs each message individually.
func (s *NoopSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	for _, req := range reqs {
		res, err := s.Send(ctx, req)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
