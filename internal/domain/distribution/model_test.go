package distribution

import (
	"errors"
	"testing"
	"time"
)

func pendingDelivery() Delivery {
	return Delivery{
		ID:          "d1",
		RunID:       "run1",
		Channel:     ChannelEmail,
		Recipient:   "gm@diner.example",
		Link:        "https://app.example/check/tok",
		Status:      StatusPending,
		MaxAttempts: 3,
		CreatedAt:   time.Now(),
	}
}

// TestDelivery_Validate verifies required fields and default attempts.
func TestDelivery_Validate(t *testing.T) {
	d := pendingDelivery()
	d.MaxAttempts = 0
	if err := d.Validate(); err != nil {
		t.Fatalf("expected valid delivery, got %v", err)
	}
	if d.MaxAttempts != 5 {
		t.Fatalf("MaxAttempts = %d, want default 5", d.MaxAttempts)
	}

	noRun := pendingDelivery()
	noRun.RunID = ""
	if err := noRun.Validate(); err != ErrEmptyRunID {
		t.Fatalf("expected ErrEmptyRunID, got %v", err)
	}
}

// TestDelivery_RetryLifecycle verifies attempt accounting and terminal
// detection.
func TestDelivery_RetryLifecycle(t *testing.T) {
	d := pendingDelivery()

	if !d.CanRetry() {
		t.Fatalf("pending delivery should be retryable")
	}

	d.MarkAttempt()
	d.MarkFailed(errors.New("smtp timeout"))
	if d.IsTerminal() {
		t.Fatalf("one failure of three should not be terminal")
	}

	d.MarkAttempt()
	d.MarkAttempt()
	d.MarkFailed(errors.New("smtp timeout"))
	if !d.IsTerminal() {
		t.Fatalf("exhausted delivery should be terminal")
	}
	if d.CanRetry() {
		t.Fatalf("exhausted delivery should not retry")
	}
}

// TestDelivery_MarkSuccess verifies success clears the error state.
func TestDelivery_MarkSuccess(t *testing.T) {
	d := pendingDelivery()
	d.MarkAttempt()
	d.MarkFailed(errors.New("transient"))
	d.MarkSuccess("msg_123")
	if d.Status != StatusDone || d.ExternalID != "msg_123" || d.ErrorMessage != "" {
		t.Fatalf("unexpected state after success: %+v", d)
	}
	if !d.IsTerminal() {
		t.Fatalf("done delivery should be terminal")
	}
}

// TestDelivery_NextRetryDelay verifies exponential backoff with cap.
func TestDelivery_NextRetryDelay(t *testing.T) {
	d := pendingDelivery()
	base := time.Minute
	max := time.Hour

	d.Attempts = 1
	if got := d.NextRetryDelay(base, max); got != 2*time.Minute {
		t.Fatalf("delay after 1 attempt = %v, want 2m", got)
	}
	d.Attempts = 10
	if got := d.NextRetryDelay(base, max); got != max {
		t.Fatalf("delay should cap at %v, got %v", max, got)
	}
}
