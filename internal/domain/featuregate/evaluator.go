package featuregate

import (
	"fmt"

	"linecheck/internal/domain/account"
)

// Plan constants mirrored from billing to keep this package free of
// storage-layer imports.
const (
	PlanStarter    = "starter"
	PlanGrowth     = "growth"
	PlanEnterprise = "enterprise"
)

// Tier is the derived subscription classification driving gate
// decisions. It is computed, never stored.
type Tier string

const (
	TierEnterprise Tier = "enterprise"
	TierTrial      Tier = "trial"
	TierPaid       Tier = "paid"
)

// ProfileSnapshot is the read-only slice of session state the evaluator
// needs. Callers build it from the authenticated account and its usage
// counters; the evaluator never reads ambient/global state.
type ProfileSnapshot struct {
	Role            string
	IsTrial         bool
	Plan            string
	ChecksCompleted int
	VideosWatched   int
	LocationsUsed   int
}

// DeriveTier computes the tier from the snapshot.
// INVARIANT: s is not mutated
func DeriveTier(s ProfileSnapshot) Tier {
	if s.Plan == PlanEnterprise {
		return TierEnterprise
	}
	if s.IsTrial {
		return TierTrial
	}
	return TierPaid
}

// Evaluator answers unlock questions for one profile snapshot. It holds
// no mutable state and is safe to rebuild on every request.
type Evaluator struct {
	profile ProfileSnapshot
	tier    Tier
}

// NewEvaluator builds an evaluator over an explicit snapshot.
// POST: the returned evaluator is pure; repeated calls with the same
// snapshot always produce the same answers
func NewEvaluator(profile ProfileSnapshot) *Evaluator {
	return &Evaluator{profile: profile, tier: DeriveTier(profile)}
}

// Tier returns the derived subscription tier.
func (e *Evaluator) Tier() Tier {
	return e.tier
}

// IsUnlocked reports whether the feature is available to this profile.
//
// Checks run in priority order: administrative override, inspector
// scoping, then the registry rule. Unknown keys panic — the registry is
// static and a missing key is a programming bug.
// INVARIANT: no side effects; deterministic per snapshot
func (e *Evaluator) IsUnlocked(key FeatureKey) bool {
	desc := MustDescriptor(key)

	switch e.profile.Role {
	case account.RoleSuperAdmin, account.RoleAdmin:
		return true
	case account.RoleInspector:
		return key == FeatureInspections
	}

	switch rule := desc.Unlock.(type) {
	case UpgradeRule:
		if rule.Plan == PlanEnterprise {
			return e.tier == TierEnterprise
		}
		if rule.LiteInTrial {
			return true
		}
		return e.tier != TierTrial
	case ActionRule:
		return e.counterValue(rule.Counter) >= e.threshold(rule)
	default:
		return false
	}
}

// Progress returns a human-readable hint for a locked feature.
// POST: returns "" whenever IsUnlocked(key) is true
func (e *Evaluator) Progress(key FeatureKey) string {
	if e.IsUnlocked(key) {
		return ""
	}
	desc := MustDescriptor(key)
	switch rule := desc.Unlock.(type) {
	case ActionRule:
		threshold := e.threshold(rule)
		value := e.counterValue(rule.Counter)
		if value > threshold {
			value = threshold
		}
		return fmt.Sprintf("%d/%d", value, threshold)
	default:
		return desc.Hint
	}
}

// LockedRoute returns the upsell route for a feature.
func (e *Evaluator) LockedRoute(key FeatureKey) string {
	return MustDescriptor(key).LockedRoute
}

func (e *Evaluator) counterValue(counter CounterKind) int {
	var v int
	switch counter {
	case CounterChecksCompleted:
		v = e.profile.ChecksCompleted
	case CounterVideosWatched:
		v = e.profile.VideosWatched
	}
	if v < 0 {
		return 0
	}
	return v
}

func (e *Evaluator) threshold(rule ActionRule) int {
	if rule.Threshold <= 0 {
		return DefaultActionThreshold
	}
	return rule.Threshold
}
