package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"linecheck/internal/domain/distribution"
	"linecheck/internal/domain/microcheck"
)

// RunStoreForDistribution defines the run store interface needed by TriggerDistribution.
type RunStoreForDistribution interface {
	ListByStatus(ctx context.Context, status string, limit int) ([]microcheck.Run, error)
	Save(ctx context.Context, r microcheck.Run) error
}

// TriggerDistributionInput carries input for TriggerDistribution.
type TriggerDistributionInput struct {
	BaseURL string
	Limit   int // max runs to dispatch in one pass (defaults to 50)
	DryRun  bool
}

// TriggerDistributionResult summarizes one distribution pass.
type TriggerDistributionResult struct {
	Dispatched int
	Skipped    int
	Runs       []string // dispatched run IDs
}

// TriggerDistributionDeps holds dependencies for TriggerDistribution.
type TriggerDistributionDeps struct {
	RunStore      RunStoreForDistribution
	TokenStore    MagicTokenStoreForWrite
	DeliveryStore DeliveryStoreForWrite
}

// ExecuteTriggerDistribution dispatches due scheduled runs: each gets a
// magic token and a queued delivery, then moves to sent. With DryRun set
// it only reports what would go out.
// PRE: Deps are valid
// POST: Every due run is sent exactly once per pass; failures are logged
// and left scheduled for the next pass
func ExecuteTriggerDistribution(ctx context.Context, input TriggerDistributionInput, deps TriggerDistributionDeps) (TriggerDistributionResult, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	runs, err := deps.RunStore.ListByStatus(ctx, microcheck.RunStatusScheduled, limit)
	if err != nil {
		return TriggerDistributionResult{}, err
	}

	now := time.Now()
	var result TriggerDistributionResult
	for _, run := range runs {
		// Runs scheduled for the future wait for a later pass.
		if !run.ScheduledAt.IsZero() && run.ScheduledAt.After(now) {
			result.Skipped++
			continue
		}
		if input.DryRun {
			result.Dispatched++
			result.Runs = append(result.Runs, run.ID)
			continue
		}

		tokenValue, err := generateMagicToken()
		if err != nil {
			slog.Error("distribution_token_failed", "run_id", run.ID, "error", err)
			result.Skipped++
			continue
		}
		token := microcheck.MagicToken{
			ID:        uuid.New().String(),
			RunID:     run.ID,
			Token:     tokenValue,
			ExpiresAt: now.Add(microcheck.MagicTokenTTL),
			CreatedAt: now,
		}
		if err := deps.TokenStore.Save(ctx, token); err != nil {
			slog.Error("distribution_token_save_failed", "run_id", run.ID, "error", err)
			result.Skipped++
			continue
		}

		recipient := run.AssigneeEmail
		if run.Channel == microcheck.ChannelSMS {
			recipient = run.AssigneePhone
		}
		delivery := distribution.Delivery{
			ID:        uuid.New().String(),
			RunID:     run.ID,
			Channel:   run.Channel,
			Recipient: recipient,
			Link:      input.BaseURL + "/check/" + tokenValue,
			Status:    distribution.StatusPending,
			CreatedAt: now,
		}
		if err := delivery.Validate(); err != nil {
			slog.Error("distribution_delivery_invalid", "run_id", run.ID, "error", err)
			result.Skipped++
			continue
		}
		if err := deps.DeliveryStore.Save(ctx, delivery); err != nil {
			slog.Error("distribution_delivery_save_failed", "run_id", run.ID, "error", err)
			result.Skipped++
			continue
		}

		run.MarkSent(now)
		if err := deps.RunStore.Save(ctx, run); err != nil {
			slog.Error("distribution_run_save_failed", "run_id", run.ID, "error", err)
			result.Skipped++
			continue
		}

		result.Dispatched++
		result.Runs = append(result.Runs, run.ID)
	}

	slog.Info("distribution_pass_complete", "dispatched", result.Dispatched, "skipped", result.Skipped, "dry_run", input.DryRun)
	return result, nil
}
