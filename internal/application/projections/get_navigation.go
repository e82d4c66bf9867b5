package projections

import (
	"context"

	"linecheck/internal/domain/account"
	"linecheck/internal/domain/billing"
	"linecheck/internal/domain/featuregate"
	"linecheck/internal/domain/navigation"
)

// NavigationAccountStore defines the account store interface needed by the navigation projection.
type NavigationAccountStore interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// NavigationSubscriptionStore defines the subscription store interface needed by the navigation projection.
type NavigationSubscriptionStore interface {
	GetByAccountID(ctx context.Context, accountID string) (billing.Subscription, error)
}

// NavigationLocationStore defines the location store interface needed by the navigation projection.
type NavigationLocationStore interface {
	CountActive(ctx context.Context) (int, error)
}

// GetNavigationQuery carries input for the navigation projection.
type GetNavigationQuery struct {
	AccountID string
	Role      string // session role wins over the stored one (role preview)
}

// GetNavigationDeps holds dependencies for the navigation projection.
type GetNavigationDeps struct {
	AccountStore      NavigationAccountStore
	SubscriptionStore NavigationSubscriptionStore // optional: nil means no plan
	LocationStore     NavigationLocationStore
}

// NavigationResult carries the derived sidebar and footer for one render.
type NavigationResult struct {
	Sections   []navigation.SectionState
	FooterMode navigation.FooterMode
	Tier       featuregate.Tier
	Profile    featuregate.ProfileSnapshot
}

// QueryGetNavigation builds the profile snapshot for the session and
// derives the full progressive sidebar from it. Everything downstream of
// the snapshot is pure: same account state, same sidebar.
// PRE: Account exists
// POST: Hidden items and empty sections are already filtered out
func QueryGetNavigation(ctx context.Context, query GetNavigationQuery, deps GetNavigationDeps) (NavigationResult, error) {
	acct, err := deps.AccountStore.GetByID(ctx, query.AccountID)
	if err != nil {
		return NavigationResult{}, err
	}

	role := query.Role
	if role == "" {
		role = acct.Role
	}

	plan := ""
	if deps.SubscriptionStore != nil {
		if sub, err := deps.SubscriptionStore.GetByAccountID(ctx, query.AccountID); err == nil {
			plan = sub.Plan
		}
	}

	locations := 0
	if deps.LocationStore != nil {
		if n, err := deps.LocationStore.CountActive(ctx); err == nil {
			locations = n
		}
	}

	profile := featuregate.ProfileSnapshot{
		Role:            role,
		IsTrial:         acct.IsTrial,
		Plan:            plan,
		ChecksCompleted: acct.ChecksCompleted,
		VideosWatched:   acct.VideosWatched,
		LocationsUsed:   locations,
	}
	evaluator := featuregate.NewEvaluator(profile)

	navCtx := navigation.Context{
		Role:        role,
		HasLocation: locations > 0,
		Evaluator:   evaluator,
	}

	return NavigationResult{
		Sections:   navigation.DeriveSections(navigation.DefaultSidebar(), navCtx),
		FooterMode: navigation.DeriveFooterMode(role, evaluator.Tier()),
		Tier:       evaluator.Tier(),
		Profile:    profile,
	}, nil
}
