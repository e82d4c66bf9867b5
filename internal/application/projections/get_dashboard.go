package projections

import (
	"context"
	"time"

	"linecheck/internal/domain/distribution"
	"linecheck/internal/domain/location"
	"linecheck/internal/domain/microcheck"
	"linecheck/internal/domain/pulsesurvey"
	"linecheck/internal/domain/review"
)

// DashboardRunStore defines the run store interface needed by the dashboard projection.
type DashboardRunStore interface {
	ListByStatus(ctx context.Context, status string, limit int) ([]microcheck.Run, error)
	CountCompletedSince(ctx context.Context, since time.Time) (int, error)
}

// DashboardLocationStore defines the location store interface needed by the dashboard projection.
type DashboardLocationStore interface {
	List(ctx context.Context) ([]location.Location, error)
}

// DashboardSurveyStore defines the survey store interface needed by the dashboard projection.
type DashboardSurveyStore interface {
	List(ctx context.Context) ([]pulsesurvey.Survey, error)
}

// DashboardDeliveryStore defines the delivery store interface needed by the dashboard projection.
type DashboardDeliveryStore interface {
	ListRecentFailures(ctx context.Context, limit int) ([]distribution.Delivery, error)
}

// DashboardReviewStore defines the review store interface needed by the dashboard projection.
type DashboardReviewStore interface {
	ListByLocation(ctx context.Context, locationID string, limit int) ([]review.Review, error)
}

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	Role string
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	RunStore      DashboardRunStore
	LocationStore DashboardLocationStore
	SurveyStore   DashboardSurveyStore   // optional: nil skips pulse stats
	DeliveryStore DashboardDeliveryStore // optional: admin only
	ReviewStore   DashboardReviewStore   // optional: nil skips sentiment
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	Role string

	// Shared
	OpenRuns           []microcheck.Run
	CompletedThisWeek  int
	ActiveLocations    int
	ArchivedLocations  int
	OpenSurveys        int
	RecentSentiment    map[string]int // positive / neutral / negative

	// Admin
	RecentFailedDeliveries []distribution.Delivery
}

// QueryGetDashboard aggregates dashboard data based on the user's role.
// Individual lookups degrade gracefully: a failing slice is left empty
// rather than failing the whole page.
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps, now time.Time) (DashboardResult, error) {
	result := DashboardResult{Role: query.Role}

	if open, err := deps.RunStore.ListByStatus(ctx, microcheck.RunStatusSent, 20); err == nil {
		result.OpenRuns = open
	}
	if started, err := deps.RunStore.ListByStatus(ctx, microcheck.RunStatusStarted, 20); err == nil {
		result.OpenRuns = append(result.OpenRuns, started...)
	}

	weekAgo := now.AddDate(0, 0, -7)
	if n, err := deps.RunStore.CountCompletedSince(ctx, weekAgo); err == nil {
		result.CompletedThisWeek = n
	}

	if locations, err := deps.LocationStore.List(ctx); err == nil {
		for _, loc := range locations {
			if loc.IsArchived() {
				result.ArchivedLocations++
				continue
			}
			result.ActiveLocations++
			if deps.ReviewStore == nil {
				continue
			}
			reviews, err := deps.ReviewStore.ListByLocation(ctx, loc.ID, 5)
			if err != nil {
				continue
			}
			for _, rv := range reviews {
				if !rv.Analyzed {
					continue
				}
				if result.RecentSentiment == nil {
					result.RecentSentiment = make(map[string]int)
				}
				result.RecentSentiment[rv.SentimentBucket()]++
			}
		}
	}

	if deps.SurveyStore != nil {
		if surveys, err := deps.SurveyStore.List(ctx); err == nil {
			for _, s := range surveys {
				if s.IsOpen() {
					result.OpenSurveys++
				}
			}
		}
	}

	if deps.DeliveryStore != nil {
		if failures, err := deps.DeliveryStore.ListRecentFailures(ctx, 10); err == nil {
			result.RecentFailedDeliveries = failures
		}
	}

	return result, nil
}
