package sms

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send a text message.
type SendRequest struct {
	To   string // E.164 phone number
	Body string
}

// SendResult contains the response from the SMS provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender is the interface for sending text messages via an external
// provider. Production deployments plug in a gateway implementation;
// development uses LogSender.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
