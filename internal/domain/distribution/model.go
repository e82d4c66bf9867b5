// Package distribution models the delivery queue for check-run magic
// links. Deliveries are queued, attempted, and retried with exponential
// backoff until they succeed, exhaust their attempts, or are abandoned.
package distribution

import (
	"errors"
	"time"
)

// Status constants for delivery lifecycle.
const (
	StatusPending   = "pending"
	StatusRetrying  = "retrying"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// Channel constants for how a delivery goes out.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Domain errors.
var (
	ErrEmptyChannel   = errors.New("delivery channel is required")
	ErrEmptyRecipient = errors.New("delivery recipient is required")
	ErrEmptyRunID     = errors.New("delivery run id is required")
)

// Delivery represents one magic-link send in the queue.
type Delivery struct {
	ID              string
	RunID           string
	Channel         string // email, sms
	Recipient       string // email address or phone number
	Link            string // magic link URL to deliver
	Status          string // pending, retrying, done, failed, abandoned
	Attempts        int
	MaxAttempts     int
	LastAttemptedAt time.Time
	CreatedAt       time.Time
	ExternalID      string // provider message id on success
	ErrorMessage    string // last error if failed
}

// Validate checks that the Delivery has valid data.
// PRE: Delivery struct is populated
// POST: Returns nil if valid, error otherwise; MaxAttempts defaulted
func (d *Delivery) Validate() error {
	if d.Channel != ChannelEmail && d.Channel != ChannelSMS {
		return ErrEmptyChannel
	}
	if d.Recipient == "" {
		return ErrEmptyRecipient
	}
	if d.RunID == "" {
		return ErrEmptyRunID
	}
	if d.MaxAttempts <= 0 {
		d.MaxAttempts = 5
	}
	return nil
}

// CanRetry returns true if the delivery can be attempted again.
// PRE: Status and Attempts fields are set
// POST: Returns true for pending/retrying/failed with attempts < max
func (d *Delivery) CanRetry() bool {
	return (d.Status == StatusPending || d.Status == StatusRetrying || d.Status == StatusFailed) &&
		d.Attempts < d.MaxAttempts
}

// IsTerminal returns true if the delivery has reached a terminal state.
// PRE: Status field is set
// POST: Returns true for done, failed (max attempts), or abandoned
func (d *Delivery) IsTerminal() bool {
	if d.Status == StatusDone || d.Status == StatusAbandoned {
		return true
	}
	if d.Status == StatusFailed && d.Attempts >= d.MaxAttempts {
		return true
	}
	return false
}

// MarkAttempt records a delivery attempt.
// PRE: Delivery is in a retryable state
// POST: Attempts incremented, LastAttemptedAt updated, status retrying
func (d *Delivery) MarkAttempt() {
	d.Attempts++
	d.LastAttemptedAt = time.Now()
	d.Status = StatusRetrying
}

// MarkSuccess marks the delivery as sent.
// PRE: Provider accepted the send
// POST: Status done, ExternalID set, error cleared
func (d *Delivery) MarkSuccess(externalID string) {
	d.Status = StatusDone
	d.ExternalID = externalID
	d.ErrorMessage = ""
}

// MarkFailed records a failed attempt.
// PRE: Provider rejected the send
// POST: ErrorMessage set; status failed once attempts are exhausted
func (d *Delivery) MarkFailed(err error) {
	d.ErrorMessage = err.Error()
	if d.Attempts >= d.MaxAttempts {
		d.Status = StatusFailed
	}
}

// MarkAbandoned marks the delivery as abandoned by an admin.
// POST: Status abandoned
func (d *Delivery) MarkAbandoned() {
	d.Status = StatusAbandoned
}

// NextRetryDelay calculates the delay before the next attempt.
// Uses exponential backoff: 2^attempts * baseDelay, capped at maxDelay.
// PRE: Attempts is set
// POST: Returns duration for next retry
func (d *Delivery) NextRetryDelay(baseDelay time.Duration, maxDelay time.Duration) time.Duration {
	delay := baseDelay * (1 << d.Attempts)
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}
