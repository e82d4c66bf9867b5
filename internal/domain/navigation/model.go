// Package navigation derives the progressive sidebar: which items a
// session sees, how each behaves, and which footer variant is mounted.
// Everything here is recomputed per request from the session snapshot —
// nothing is persisted.
package navigation

import (
	"linecheck/internal/domain/account"
	"linecheck/internal/domain/featuregate"
)

// ItemMode is the interaction mode of one sidebar item for one render.
type ItemMode string

const (
	// ModeHidden removes the item entirely (role not allowlisted).
	ModeHidden ItemMode = "hidden"
	// ModeDisabled shows the item greyed out and unclickable (a strict
	// prerequisite, such as having a location, is incomplete).
	ModeDisabled ItemMode = "visible-disabled"
	// ModeTeaser shows the item with a lock and progress hint; clicks
	// land on the feature's upsell route, never the real one.
	ModeTeaser ItemMode = "teaser"
	// ModeVisible is a fully interactive item.
	ModeVisible ItemMode = "visible"
)

// FooterMode selects the single footer variant for the whole layout.
type FooterMode string

const (
	FooterSuperAdmin FooterMode = "super_admin"
	FooterEnterprise FooterMode = "enterprise"
	FooterMultiStore FooterMode = "multi_store"
	FooterTrial      FooterMode = "trial"
)

// Item is a declarative sidebar entry. Feature is empty for ungated
// items; RequiresLocation marks items useless before the first location
// is set up.
type Item struct {
	Key              string
	Label            string
	Route            string
	Roles            []string
	Feature          featuregate.FeatureKey
	RequiresLocation bool
}

// Section groups items under a sidebar heading.
type Section struct {
	Title string
	Items []Item
}

// ItemState is the derived, per-render state of one item.
type ItemState struct {
	Key      string
	Label    string
	Mode     ItemMode
	Route    string // real route, or the locked route in teaser mode
	Progress string // teaser only: "2/3" or a static upgrade hint
}

// Context carries the per-request inputs the derivation needs.
type Context struct {
	Role        string
	HasLocation bool
	Evaluator   *featuregate.Evaluator
}

// DeriveState computes the interaction mode for a single item.
//
// Precedence is total and explicit: role allowlist first (an item whose
// allowlist excludes the role is hidden regardless of gate state), then
// the location prerequisite, then the feature gate, then visible.
// INVARIANT: no side effects; same inputs always yield the same state
func DeriveState(item Item, nav Context) ItemState {
	state := ItemState{Key: item.Key, Label: item.Label, Route: item.Route}

	if !roleAllowed(item.Roles, nav.Role) {
		state.Mode = ModeHidden
		return state
	}
	if item.RequiresLocation && !nav.HasLocation {
		state.Mode = ModeDisabled
		return state
	}
	if item.Feature != "" && nav.Evaluator != nil && !nav.Evaluator.IsUnlocked(item.Feature) {
		state.Mode = ModeTeaser
		state.Route = nav.Evaluator.LockedRoute(item.Feature)
		state.Progress = nav.Evaluator.Progress(item.Feature)
		return state
	}
	state.Mode = ModeVisible
	return state
}

// DeriveSections applies DeriveState across the sidebar, dropping hidden
// items and empty sections.
// INVARIANT: the input sections are not mutated
func DeriveSections(sections []Section, nav Context) []SectionState {
	out := make([]SectionState, 0, len(sections))
	for _, sec := range sections {
		ss := SectionState{Title: sec.Title}
		for _, item := range sec.Items {
			st := DeriveState(item, nav)
			if st.Mode == ModeHidden {
				continue
			}
			ss.Items = append(ss.Items, st)
		}
		if len(ss.Items) > 0 {
			out = append(out, ss)
		}
	}
	return out
}

// SectionState is a rendered sidebar section.
type SectionState struct {
	Title string
	Items []ItemState
}

// DeriveFooterMode picks exactly one footer variant.
//
// Precedence: super admin > enterprise > trial > multi-store. Trial
// accounts always see the trial footer; every other paid non-enterprise
// account gets the multi-store footer (which doubles as the
// add-more-locations upsell for single-location accounts).
func DeriveFooterMode(role string, tier featuregate.Tier) FooterMode {
	switch {
	case role == account.RoleSuperAdmin:
		return FooterSuperAdmin
	case tier == featuregate.TierEnterprise:
		return FooterEnterprise
	case tier == featuregate.TierTrial:
		return FooterTrial
	default:
		return FooterMultiStore
	}
}

func roleAllowed(roles []string, role string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
