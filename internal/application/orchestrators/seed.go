package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"linecheck/internal/domain/account"
	"linecheck/internal/domain/billing"
	"linecheck/internal/domain/location"
	"linecheck/internal/domain/microcheck"
)

// AccountStoreForSeed defines the store interface needed by the seed orchestrators.
type AccountStoreForSeed interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	List(ctx context.Context) ([]account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// LocationStoreForSeed defines the location store interface needed by seeding.
type LocationStoreForSeed interface {
	List(ctx context.Context) ([]location.Location, error)
	Save(ctx context.Context, l location.Location) error
}

// SeedDeps holds dependencies for seeding.
type SeedDeps struct {
	AccountStore      AccountStoreForSeed
	LocationStore     LocationStoreForSeed
	TemplateStore     TemplateStoreForSeed
	SubscriptionStore SubscriptionStoreForWrite
}

// TemplateStoreForSeed defines the template store interface needed by seeding.
type TemplateStoreForSeed interface {
	List(ctx context.Context) ([]microcheck.Template, error)
	Save(ctx context.Context, t microcheck.Template) error
}

// ExecuteSeedAdmin creates a default admin account if no accounts exist.
// PRE: Database is initialized; password >= 12 chars
// POST: Active admin account created if the store was empty
func ExecuteSeedAdmin(ctx context.Context, deps SeedDeps, email, password string) error {
	accounts, err := deps.AccountStore.List(ctx)
	if err != nil {
		return err
	}
	if len(accounts) > 0 {
		return nil // Accounts already exist, skip seeding
	}

	acct := account.Account{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      "Admin",
		Role:      account.RoleAdmin,
		Status:    account.StatusActive,
		CreatedAt: time.Now(),
	}
	if err := acct.Validate(); err != nil {
		return err
	}
	if err := acct.SetPassword(password); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}

// demoAccounts covers one account per role so every gating path can be
// exercised from the login screen during development.
var demoAccounts = []struct {
	email   string
	name    string
	role    string
	isTrial bool
}{
	{"super@linecheck.test", "Sam Super", account.RoleSuperAdmin, false},
	{"admin@linecheck.test", "Ana Admin", account.RoleAdmin, false},
	{"owner@linecheck.test", "Olivia Owner", account.RoleOwner, false},
	{"gm@linecheck.test", "Gus Manager", account.RoleGM, true},
	{"inspector@linecheck.test", "Iris Inspector", account.RoleInspector, false},
}

// ExecuteSeedDemo creates demo accounts, a location, a starter check
// template, and subscriptions. Safe to run repeatedly; existing rows are
// left alone.
// PRE: Non-production environment
// POST: Demo fixtures exist
func ExecuteSeedDemo(ctx context.Context, deps SeedDeps, password string) error {
	now := time.Now()

	for _, d := range demoAccounts {
		if _, err := deps.AccountStore.GetByEmail(ctx, d.email); err == nil {
			continue
		}
		acct := account.Account{
			ID:        uuid.New().String(),
			Email:     d.email,
			Name:      d.name,
			Role:      d.role,
			Status:    account.StatusActive,
			IsTrial:   d.isTrial,
			CreatedAt: now,
		}
		if err := acct.SetPassword(password); err != nil {
			return err
		}
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return err
		}

		plan := billing.PlanGrowth
		status := billing.StatusActive
		trialEndsAt := time.Time{}
		if d.isTrial {
			plan = billing.PlanStarter
			status = billing.StatusTrialing
			trialEndsAt = now.Add(TrialLength)
		}
		sub := billing.Subscription{
			ID:          uuid.New().String(),
			AccountID:   acct.ID,
			Plan:        plan,
			Status:      status,
			TrialEndsAt: trialEndsAt,
			CreatedAt:   now,
		}
		if err := deps.SubscriptionStore.Save(ctx, sub); err != nil {
			return err
		}
	}

	locations, err := deps.LocationStore.List(ctx)
	if err != nil {
		return err
	}
	if len(locations) == 0 {
		loc := location.Location{
			ID:        uuid.New().String(),
			Name:      "Main Street",
			Address:   "42 Main St",
			Timezone:  "America/Chicago",
			Status:    location.StatusActive,
			CreatedAt: now,
		}
		if err := deps.LocationStore.Save(ctx, loc); err != nil {
			return err
		}
	}

	templates, err := deps.TemplateStore.List(ctx)
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		tpl := microcheck.Template{
			ID:   uuid.New().String(),
			Name: "Opening line check",
			Items: []microcheck.TemplateItem{
				{ID: uuid.New().String(), Prompt: "Walk-in cooler at or below 41F", Position: 1},
				{ID: uuid.New().String(), Prompt: "Sanitizer buckets mixed and labeled", Position: 2},
				{ID: uuid.New().String(), Prompt: "Line stocked to par", Position: 3, RequiresPhoto: true},
			},
			CreatedBy: "seed",
			CreatedAt: now,
		}
		if err := deps.TemplateStore.Save(ctx, tpl); err != nil {
			return err
		}
	}

	slog.Info("seed_event", "event", "demo_seeded")
	return nil
}
