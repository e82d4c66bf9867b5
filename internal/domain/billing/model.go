// Package billing holds the subscription snapshot feature gating reads.
// There is no payment-provider integration here; the snapshot is the
// read-only view the rest of the app derives tiers from.
package billing

import (
	"errors"
	"time"
)

// Plan constants.
const (
	PlanStarter    = "starter"
	PlanGrowth     = "growth"
	PlanEnterprise = "enterprise"
)

// Subscription status constants.
const (
	StatusTrialing = "trialing"
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

// Domain errors
var (
	ErrEmptyAccount = errors.New("subscription account is required")
	ErrInvalidPlan  = errors.New("plan must be starter, growth or enterprise")
)

// Subscription is the billing state for one account.
type Subscription struct {
	ID               string
	AccountID        string
	Plan             string
	Status           string
	TrialEndsAt      time.Time
	CurrentPeriodEnd time.Time
	CreatedAt        time.Time
}

// Validate checks required fields for a Subscription.
// PRE: Subscription struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (s *Subscription) Validate() error {
	if s.AccountID == "" {
		return ErrEmptyAccount
	}
	switch s.Plan {
	case PlanStarter, PlanGrowth, PlanEnterprise:
	default:
		return ErrInvalidPlan
	}
	return nil
}

// IsTrialing returns true while the subscription is in its trial window.
// INVARIANT: Subscription fields are not mutated
func (s *Subscription) IsTrialing(now time.Time) bool {
	if s.Status == StatusTrialing {
		return true
	}
	return !s.TrialEndsAt.IsZero() && now.Before(s.TrialEndsAt)
}

// IsDelinquent returns true when access should degrade to read-only.
// INVARIANT: Subscription fields are not mutated
func (s *Subscription) IsDelinquent() bool {
	return s.Status == StatusPastDue || s.Status == StatusCanceled
}
