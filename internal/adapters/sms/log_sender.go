package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrEmptyRecipient is returned when a send has no destination number.
var ErrEmptyRecipient = errors.New("sms recipient is required")

// LogSender logs text messages instead of delivering them.
type LogSender struct{}

// NewLogSender creates a new LogSender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send logs the message but does not deliver it.
// PRE: req.To is non-empty
// POST: Returns a synthetic message ID without actual delivery
func (s *LogSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	if req.To == "" {
		return SendResult{}, ErrEmptyRecipient
	}
	slog.Info("log_sms_send", "to", req.To, "body_len", len(req.Body))
	return SendResult{
		MessageID: fmt.Sprintf("log-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
