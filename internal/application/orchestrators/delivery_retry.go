package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"linecheck/internal/adapters/email"
	"linecheck/internal/adapters/sms"
	"linecheck/internal/domain/distribution"
)

// DeliveryStoreForRetry defines the store interface needed by DeliveryRetry.
type DeliveryStoreForRetry interface {
	ListPending(ctx context.Context, limit int) ([]distribution.Delivery, error)
	Save(ctx context.Context, d distribution.Delivery) error
}

// DeliveryRetryDeps provides the dependencies for processing the delivery queue.
type DeliveryRetryDeps struct {
	DeliveryStore DeliveryStoreForRetry
	EmailSender   email.Sender
	SMSSender     sms.Sender
	EmailFrom     string
}

// ExecuteDeliveryRetry processes pending and retryable failed deliveries.
// It implements exponential backoff and respects max attempts.
// PRE: Deps are valid and store is connected
// POST: All eligible deliveries are attempted, results logged
func ExecuteDeliveryRetry(ctx context.Context, deps DeliveryRetryDeps) error {
	deliveries, err := deps.DeliveryStore.ListPending(ctx, 100)
	if err != nil {
		return fmt.Errorf("failed to list retryable deliveries: %w", err)
	}

	if len(deliveries) == 0 {
		return nil
	}

	slog.Info("delivery_retry_start", "count", len(deliveries))

	var processed, succeeded, failed int
	baseDelay := 1 * time.Minute
	maxDelay := 1 * time.Hour

	for _, d := range deliveries {
		processed++

		// Check if enough time has passed since last attempt
		if !d.LastAttemptedAt.IsZero() {
			nextRetry := d.LastAttemptedAt.Add(d.NextRetryDelay(baseDelay, maxDelay))
			if time.Now().Before(nextRetry) {
				slog.Debug("delivery_retry_skipped_backoff", "delivery_id", d.ID, "next_retry", nextRetry)
				continue
			}
		}

		d.MarkAttempt()

		var externalID string
		var sendErr error
		switch d.Channel {
		case distribution.ChannelEmail:
			externalID, sendErr = sendDeliveryEmail(ctx, d, deps)
		case distribution.ChannelSMS:
			externalID, sendErr = sendDeliverySMS(ctx, d, deps)
		default:
			sendErr = fmt.Errorf("unknown delivery channel: %s", d.Channel)
		}

		if sendErr != nil {
			d.MarkFailed(sendErr)
			failed++
			slog.Error("delivery_retry_failed", "delivery_id", d.ID, "channel", d.Channel, "attempt", d.Attempts, "error", sendErr)
		} else {
			d.MarkSuccess(externalID)
			succeeded++
			slog.Info("delivery_retry_succeeded", "delivery_id", d.ID, "channel", d.Channel, "attempt", d.Attempts)
		}

		if saveErr := deps.DeliveryStore.Save(ctx, d); saveErr != nil {
			slog.Error("delivery_retry_save_failed", "delivery_id", d.ID, "error", saveErr)
		}
	}

	slog.Info("delivery_retry_complete", "processed", processed, "succeeded", succeeded, "failed", failed)
	return nil
}

func sendDeliveryEmail(ctx context.Context, d distribution.Delivery, deps DeliveryRetryDeps) (string, error) {
	if deps.EmailSender == nil {
		return "", fmt.Errorf("no email sender configured")
	}
	result, err := deps.EmailSender.Send(ctx, email.SendRequest{
		To:      []string{d.Recipient},
		From:    deps.EmailFrom,
		Subject: "Your line check is ready",
		HTML: fmt.Sprintf(`<p>A line check is waiting for you. It takes about two minutes:</p><p><a href="%s">%s</a></p><p>The link expires in 48 hours.</p>`,
			d.Link, d.Link),
	})
	if err != nil {
		return "", err
	}
	return result.MessageID, nil
}

func sendDeliverySMS(ctx context.Context, d distribution.Delivery, deps DeliveryRetryDeps) (string, error) {
	if deps.SMSSender == nil {
		return "", fmt.Errorf("no sms sender configured")
	}
	result, err := deps.SMSSender.Send(ctx, sms.SendRequest{
		To:   d.Recipient,
		Body: "Your line check is ready (takes ~2 min): " + d.Link,
	})
	if err != nil {
		return "", err
	}
	return result.MessageID, nil
}

// DeliveryRetryConfig holds configuration for the retry scheduler.
type DeliveryRetryConfig struct {
	Interval time.Duration // How often to run retries
	Enabled  bool
}

// DefaultDeliveryRetryConfig returns sensible defaults.
func DefaultDeliveryRetryConfig() DeliveryRetryConfig {
	return DeliveryRetryConfig{
		Interval: 1 * time.Minute,
		Enabled:  true,
	}
}

// StartDeliveryRetryScheduler starts a background goroutine that periodically
// processes the delivery queue.
// PRE: Context is valid, deps are initialized
// POST: Goroutine started, returns cancel function
func StartDeliveryRetryScheduler(ctx context.Context, deps DeliveryRetryDeps, cfg DeliveryRetryConfig) func() {
	if !cfg.Enabled {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := ExecuteDeliveryRetry(ctx, deps); err != nil {
					slog.Error("delivery_retry_scheduler_error", "error", err)
				}
			}
		}
	}()

	return cancel
}
