package projections

import (
	"context"
	"sort"

	"linecheck/internal/domain/featuregate"
	"linecheck/internal/domain/review"
)

// ReviewInsightsStore defines the review store interface needed by the insights projection.
type ReviewInsightsStore interface {
	ListByLocation(ctx context.Context, locationID string, limit int) ([]review.Review, error)
}

// GetReviewInsightsQuery carries input for the review insights projection.
type GetReviewInsightsQuery struct {
	LocationID string
	Limit      int
}

// GetReviewInsightsDeps holds dependencies for the review insights projection.
type GetReviewInsightsDeps struct {
	ReviewStore ReviewInsightsStore
	Evaluator   *featuregate.Evaluator // gates the premium slice
}

// ThemeCount is one theme with its mention count.
type ThemeCount struct {
	Theme string
	Count int
}

// ReviewInsightsResult carries the insights projection output. The
// premium slice (sentiment distribution and themes) is populated only
// when the profile has insights-premium unlocked; the lite slice is
// available to everyone who can see the page at all.
type ReviewInsightsResult struct {
	LocationID    string
	ReviewCount   int
	AverageRating float64
	Recent        []review.Review

	// Premium slice.
	PremiumUnlocked   bool
	SentimentCounts   map[string]int // positive / neutral / negative
	TopThemes         []ThemeCount
	UnanalyzedPending int
}

// QueryGetReviewInsights aggregates review data for a location,
// populating the premium slice only for unlocked profiles.
// INVARIANT: premium fields stay zeroed when the gate is locked
func QueryGetReviewInsights(ctx context.Context, query GetReviewInsightsQuery, deps GetReviewInsightsDeps) (ReviewInsightsResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}

	reviews, err := deps.ReviewStore.ListByLocation(ctx, query.LocationID, limit)
	if err != nil {
		return ReviewInsightsResult{}, err
	}

	result := ReviewInsightsResult{
		LocationID:  query.LocationID,
		ReviewCount: len(reviews),
	}

	var ratingSum int
	for _, r := range reviews {
		ratingSum += r.Rating
	}
	if len(reviews) > 0 {
		result.AverageRating = float64(ratingSum) / float64(len(reviews))
	}
	if len(reviews) > 10 {
		result.Recent = reviews[:10]
	} else {
		result.Recent = reviews
	}

	if deps.Evaluator == nil || !deps.Evaluator.IsUnlocked(featuregate.FeatureInsightsPremium) {
		return result, nil
	}
	result.PremiumUnlocked = true
	result.SentimentCounts = map[string]int{}

	themeCounts := map[string]int{}
	for _, r := range reviews {
		if !r.Analyzed {
			result.UnanalyzedPending++
			continue
		}
		result.SentimentCounts[r.SentimentBucket()]++
		for _, theme := range r.Themes {
			themeCounts[theme]++
		}
	}

	for theme, count := range themeCounts {
		result.TopThemes = append(result.TopThemes, ThemeCount{Theme: theme, Count: count})
	}
	sort.Slice(result.TopThemes, func(i, j int) bool {
		if result.TopThemes[i].Count != result.TopThemes[j].Count {
			return result.TopThemes[i].Count > result.TopThemes[j].Count
		}
		return result.TopThemes[i].Theme < result.TopThemes[j].Theme
	})
	if len(result.TopThemes) > 5 {
		result.TopThemes = result.TopThemes[:5]
	}
	return result, nil
}
