package orchestrators

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"linecheck/internal/domain/review"
)

// ReviewStoreForAnalysis defines the store interface needed by the review orchestrators.
type ReviewStoreForAnalysis interface {
	ListUnanalyzed(ctx context.Context, limit int) ([]review.Review, error)
	Save(ctx context.Context, r review.Review) error
}

// IngestReviewInput carries one review pulled from an external source.
type IngestReviewInput struct {
	LocationID string
	Source     string // google, yelp, internal
	Rating     int
	Text       string
	ReviewedAt time.Time
}

// IngestReviewDeps holds dependencies for IngestReview.
type IngestReviewDeps struct {
	ReviewStore ReviewStoreForAnalysis
}

// ExecuteIngestReview stores a raw review for later analysis.
// PRE: Rating is 1-5 and the location exists
// POST: Review persisted unanalyzed
func ExecuteIngestReview(ctx context.Context, input IngestReviewInput, deps IngestReviewDeps) (string, error) {
	r := review.Review{
		ID:         uuid.New().String(),
		LocationID: input.LocationID,
		Source:     input.Source,
		Rating:     input.Rating,
		Text:       input.Text,
		ReviewedAt: input.ReviewedAt,
		CreatedAt:  time.Now(),
	}
	if err := r.Validate(); err != nil {
		return "", err
	}
	if err := deps.ReviewStore.Save(ctx, r); err != nil {
		return "", err
	}

	slog.Info("review_event", "event", "review_ingested", "review_id", r.ID, "source", r.Source)
	return r.ID, nil
}

// themeKeywords maps a display theme to the words that signal it.
var themeKeywords = map[string][]string{
	"service":     {"service", "server", "waiter", "waitress", "staff", "rude", "friendly"},
	"food":        {"food", "dish", "meal", "taste", "flavor", "delicious", "bland", "cold food"},
	"wait time":   {"wait", "slow", "waited", "forever", "quick", "fast"},
	"cleanliness": {"clean", "dirty", "filthy", "spotless", "bathroom"},
	"price":       {"price", "expensive", "cheap", "overpriced", "value"},
}

var positiveWords = []string{"great", "amazing", "excellent", "love", "best", "friendly", "delicious", "perfect", "wonderful", "spotless", "quick"}

var negativeWords = []string{"bad", "terrible", "awful", "worst", "rude", "dirty", "slow", "cold", "bland", "overpriced", "disappointing", "filthy"}

// ExecuteAnalyzeReviews processes the unanalyzed backlog: each review
// gets a keyword-derived sentiment score and a set of themes. The score
// blends word sentiment with the star rating so short reviews still get
// a usable signal.
// PRE: Deps are valid
// POST: Every processed review is marked analyzed
func ExecuteAnalyzeReviews(ctx context.Context, deps IngestReviewDeps) (int, error) {
	reviews, err := deps.ReviewStore.ListUnanalyzed(ctx, 100)
	if err != nil {
		return 0, err
	}
	if len(reviews) == 0 {
		return 0, nil
	}

	analyzed := 0
	for _, r := range reviews {
		sentiment, themes := analyzeText(r.Text, r.Rating)
		if err := r.SetAnalysis(sentiment, themes); err != nil {
			slog.Error("review_analysis_invalid", "review_id", r.ID, "error", err)
			continue
		}
		if err := deps.ReviewStore.Save(ctx, r); err != nil {
			slog.Error("review_analysis_save_failed", "review_id", r.ID, "error", err)
			continue
		}
		analyzed++
	}

	slog.Info("review_event", "event", "analysis_pass_complete", "analyzed", analyzed)
	return analyzed, nil
}

func analyzeText(text string, rating int) (float64, []string) {
	lower := strings.ToLower(text)

	score := 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			score++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score--
		}
	}

	// Word sentiment in [-1, 1], then averaged with the rating signal
	// ((rating-3)/2 maps 1..5 stars onto -1..1).
	wordSentiment := float64(score) / 5.0
	if wordSentiment > 1 {
		wordSentiment = 1
	}
	if wordSentiment < -1 {
		wordSentiment = -1
	}
	ratingSentiment := (float64(rating) - 3) / 2
	sentiment := (wordSentiment + ratingSentiment) / 2

	var themes []string
	for theme, words := range themeKeywords {
		for _, w := range words {
			if strings.Contains(lower, w) {
				themes = append(themes, theme)
				break
			}
		}
	}
	sort.Strings(themes)
	return sentiment, themes
}
