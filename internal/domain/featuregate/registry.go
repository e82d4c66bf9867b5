package featuregate

import "fmt"

// FeatureKey identifies a gated product feature. Keys are stable and
// referenced by code (routes, navigation items, templates).
type FeatureKey string

const (
	FeatureAICoach         FeatureKey = "ai-coach"
	FeatureInspections     FeatureKey = "inspections"
	FeatureInsights        FeatureKey = "insights"
	FeatureInsightsPremium FeatureKey = "insights-premium"
	FeaturePulse           FeatureKey = "pulse"
	FeatureReviews         FeatureKey = "reviews"
	FeatureMultiLocation   FeatureKey = "multi-location"
)

// CounterKind names a usage counter an ActionRule reads.
type CounterKind string

const (
	CounterChecksCompleted CounterKind = "checks_completed"
	CounterVideosWatched   CounterKind = "videos_watched"
)

// DefaultActionThreshold is the unlock threshold used when a registry
// entry does not set one explicitly.
const DefaultActionThreshold = 3

// UnlockRule decides how a feature is earned. Exactly one concrete rule
// type backs each registry entry.
type UnlockRule interface {
	isUnlockRule()
}

// UpgradeRule gates a feature behind the subscription tier.
//
// Plan, when set, names the minimum plan ("enterprise"); an empty Plan
// means any paid tier qualifies. LiteInTrial exposes the feature's lite
// surface even to trial accounts — deeper sections carry their own key.
type UpgradeRule struct {
	Plan        string
	LiteInTrial bool
}

// ActionRule gates a feature behind a usage counter reaching Threshold.
type ActionRule struct {
	Counter   CounterKind
	Threshold int
}

func (UpgradeRule) isUnlockRule() {}
func (ActionRule) isUnlockRule()  {}

// Descriptor is one registry entry: how a feature unlocks, where a
// locked click lands, and the static hint shown on upgrade-gated items.
type Descriptor struct {
	Key         FeatureKey
	Unlock      UnlockRule
	LockedRoute string
	Hint        string
}

// registry is the static source of truth for gated features.
// No runtime mutation; every entry has exactly one rule variant.
var registry = map[FeatureKey]Descriptor{
	FeatureAICoach: {
		Key:         FeatureAICoach,
		Unlock:      ActionRule{Counter: CounterChecksCompleted, Threshold: DefaultActionThreshold},
		LockedRoute: "/upgrade/ai-coach",
		Hint:        "Complete line checks to unlock your AI coach",
	},
	FeatureInspections: {
		Key:         FeatureInspections,
		Unlock:      UpgradeRule{},
		LockedRoute: "/upgrade/inspections",
		Hint:        "Available on all paid plans",
	},
	FeatureInsights: {
		Key:         FeatureInsights,
		Unlock:      UpgradeRule{LiteInTrial: true},
		LockedRoute: "/upgrade/insights",
		Hint:        "Included with your plan",
	},
	FeatureInsightsPremium: {
		Key:         FeatureInsightsPremium,
		Unlock:      UpgradeRule{},
		LockedRoute: "/upgrade/insights",
		Hint:        "Upgrade to unlock deep-dive insights",
	},
	FeaturePulse: {
		Key:         FeaturePulse,
		Unlock:      UpgradeRule{},
		LockedRoute: "/upgrade/pulse",
		Hint:        "Upgrade to run employee pulse surveys",
	},
	FeatureReviews: {
		Key:         FeatureReviews,
		Unlock:      UpgradeRule{},
		LockedRoute: "/upgrade/reviews",
		Hint:        "Upgrade to analyse customer reviews",
	},
	FeatureMultiLocation: {
		Key:         FeatureMultiLocation,
		Unlock:      UpgradeRule{Plan: PlanEnterprise},
		LockedRoute: "/upgrade/enterprise",
		Hint:        "Enterprise plan required",
	},
}

// Lookup returns the descriptor for a feature key.
// INVARIANT: the registry is never mutated
func Lookup(key FeatureKey) (Descriptor, bool) {
	d, ok := registry[key]
	return d, ok
}

// MustDescriptor returns the descriptor for a known key.
// An unknown key is a programmer error, not a runtime condition.
func MustDescriptor(key FeatureKey) Descriptor {
	d, ok := registry[key]
	if !ok {
		panic(fmt.Sprintf("featuregate: unknown feature key %q", key))
	}
	return d
}

// Keys returns every registered feature key.
func Keys() []FeatureKey {
	out := make([]FeatureKey, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}
