package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// resendBatchLimit is the maximum number of messages Resend accepts in
// one batch call.
const resendBatchLimit = 100

// ResendSender delivers through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender returns a sender that delivers through Resend.
// Messages with an empty From use the given default address.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) params(req SendRequest) *resend.SendEmailRequest {
	p := &resend.SendEmailRequest{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		ReplyTo: req.ReplyTo,
	}
	if p.From == "" {
		p.From = s.from
	}
	return p
}

// Send delivers one message and returns the provider's message ID.
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, s.params(req))
	if err != nil {
		slog.Error("email_event", "event", "send_failed", "to", req.To, "error", err)
		return SendResult{}, fmt.Errorf("resend send: %w", err)
	}
	slog.Info("email_event", "event", "sent", "message_id", sent.Id, "to", req.To)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// SendBatch delivers the requests in provider-sized chunks. On a chunk
// failure it returns the results accepted so far together with the error.
func (s *ResendSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	var results []SendResult
	for len(reqs) > 0 {
		n := len(reqs)
		if n > resendBatchLimit {
			n = resendBatchLimit
		}
		chunk := make([]*resend.SendEmailRequest, n)
		for i, req := range reqs[:n] {
			chunk[i] = s.params(req)
		}
		reqs = reqs[n:]

		resp, err := s.client.Batch.SendWithContext(ctx, chunk)
		if err != nil {
			slog.Error("email_event", "event", "batch_failed", "size", n, "error", err)
			return results, fmt.Errorf("resend batch send: %w", err)
		}
		for _, item := range resp.Data {
			results = append(results, SendResult{MessageID: item.Id, SentAt: time.Now()})
		}
		slog.Info("email_event", "event", "batch_sent", "size", n)
	}
	return results, nil
}
