package navigation

import (
	"linecheck/internal/domain/account"
	"linecheck/internal/domain/featuregate"
)

// operatorRoles is the allowlist shared by most app items.
var operatorRoles = []string{
	account.RoleSuperAdmin, account.RoleAdmin, account.RoleOwner, account.RoleGM,
}

// DefaultSidebar returns the declarative sidebar definition. Items are
// filtered and decorated per session by DeriveSections.
func DefaultSidebar() []Section {
	return []Section{
		{
			Title: "Operate",
			Items: []Item{
				{
					Key:   "dashboard",
					Label: "Dashboard",
					Route: "/app/dashboard",
					Roles: operatorRoles,
				},
				{
					Key:              "checks",
					Label:            "Line Checks",
					Route:            "/app/checks",
					Roles:            operatorRoles,
					RequiresLocation: true,
				},
				{
					Key:     "inspections",
					Label:   "Inspections",
					Route:   "/app/inspections",
					Roles:   append(operatorRoles, account.RoleInspector),
					Feature: featuregate.FeatureInspections,
				},
				{
					Key:              "ai-coach",
					Label:            "AI Coach",
					Route:            "/app/coach",
					Roles:            operatorRoles,
					Feature:          featuregate.FeatureAICoach,
					RequiresLocation: true,
				},
			},
		},
		{
			Title: "Understand",
			Items: []Item{
				{
					Key:     "insights",
					Label:   "Insights",
					Route:   "/app/insights",
					Roles:   operatorRoles,
					Feature: featuregate.FeatureInsights,
				},
				{
					Key:     "pulse",
					Label:   "Employee Pulse",
					Route:   "/app/pulse",
					Roles:   []string{account.RoleSuperAdmin, account.RoleAdmin, account.RoleOwner},
					Feature: featuregate.FeaturePulse,
				},
				{
					Key:     "reviews",
					Label:   "Reviews",
					Route:   "/app/reviews",
					Roles:   operatorRoles,
					Feature: featuregate.FeatureReviews,
				},
			},
		},
		{
			Title: "Manage",
			Items: []Item{
				{
					Key:   "locations",
					Label: "Locations",
					Route: "/app/locations",
					Roles: []string{account.RoleSuperAdmin, account.RoleAdmin, account.RoleOwner},
				},
				{
					Key:     "multi-location",
					Label:   "Multi-Location Reports",
					Route:   "/app/reports",
					Roles:   []string{account.RoleSuperAdmin, account.RoleAdmin, account.RoleOwner},
					Feature: featuregate.FeatureMultiLocation,
				},
				{
					Key:   "admin",
					Label: "Admin",
					Route: "/app/admin",
					Roles: []string{account.RoleSuperAdmin, account.RoleAdmin},
				},
			},
		},
	}
}
