package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"linecheck/internal/domain/account"
	"linecheck/internal/domain/billing"
)

// SubscriptionStoreForWrite defines the store interface needed by the billing orchestrators.
type SubscriptionStoreForWrite interface {
	GetByAccountID(ctx context.Context, accountID string) (billing.Subscription, error)
	Save(ctx context.Context, s billing.Subscription) error
}

// AccountStoreForBilling defines the account store interface needed by the billing orchestrators.
type AccountStoreForBilling interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePlanInput carries input for ChangePlan.
type ChangePlanInput struct {
	AccountID string
	Plan      string // starter, growth, enterprise
}

// ChangePlanDeps holds dependencies for ChangePlan.
type ChangePlanDeps struct {
	SubscriptionStore SubscriptionStoreForWrite
	AccountStore      AccountStoreForBilling
}

// ExecuteChangePlan moves an account onto a plan. Changing plan ends any
// trial: the account's trial flag is cleared so gate decisions flip on
// the next request.
// PRE: Plan is valid; account exists
// POST: Subscription active on the new plan; account trial flag cleared
func ExecuteChangePlan(ctx context.Context, input ChangePlanInput, deps ChangePlanDeps) error {
	sub, err := deps.SubscriptionStore.GetByAccountID(ctx, input.AccountID)
	if err != nil {
		sub = billing.Subscription{
			ID:        uuid.New().String(),
			AccountID: input.AccountID,
			CreatedAt: time.Now(),
		}
	}
	sub.Plan = input.Plan
	sub.Status = billing.StatusActive
	sub.TrialEndsAt = time.Time{}
	sub.CurrentPeriodEnd = time.Now().AddDate(0, 1, 0)
	if err := sub.Validate(); err != nil {
		return err
	}
	if err := deps.SubscriptionStore.Save(ctx, sub); err != nil {
		return err
	}

	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}
	if acct.IsTrial {
		acct.IsTrial = false
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return err
		}
	}

	slog.Info("billing_event", "event", "plan_changed", "account_id", input.AccountID, "plan", input.Plan)
	return nil
}

// TrialLength is the default trial window.
const TrialLength = 14 * 24 * time.Hour

// ExecuteStartTrial puts an account on a starter-plan trial.
// PRE: Account exists
// POST: Trialing subscription persisted; account trial flag set
func ExecuteStartTrial(ctx context.Context, accountID string, deps ChangePlanDeps) error {
	now := time.Now()
	sub := billing.Subscription{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		Plan:        billing.PlanStarter,
		Status:      billing.StatusTrialing,
		TrialEndsAt: now.Add(TrialLength),
		CreatedAt:   now,
	}
	if existing, err := deps.SubscriptionStore.GetByAccountID(ctx, accountID); err == nil {
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
	}
	if err := sub.Validate(); err != nil {
		return err
	}
	if err := deps.SubscriptionStore.Save(ctx, sub); err != nil {
		return err
	}

	acct, err := deps.AccountStore.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !acct.IsTrial {
		acct.IsTrial = true
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return err
		}
	}

	slog.Info("billing_event", "event", "trial_started", "account_id", accountID, "ends_at", sub.TrialEndsAt)
	return nil
}
