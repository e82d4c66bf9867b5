package review

import (
	"errors"
	"strings"
	"time"
)

// Review source constants.
const (
	SourceGoogle   = "google"
	SourceYelp     = "yelp"
	SourceInternal = "internal"
)

// Sentiment bucket constants derived from the analysis score.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Domain errors
var (
	ErrEmptyLocation    = errors.New("review location is required")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrInvalidSentiment = errors.New("sentiment must be between -1 and 1")
)

// Review is one customer review plus its analysis fields. Sentiment and
// Themes are filled by the analysis step; a zero-value Sentiment with
// Analyzed=false means the review has not been processed yet.
type Review struct {
	ID         string
	LocationID string
	Source     string
	Rating     int
	Text       string
	ReviewedAt time.Time
	Analyzed   bool
	Sentiment  float64 // -1..1
	Themes     []string
	CreatedAt  time.Time
}

// Validate checks required fields for a Review.
// PRE: Review struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (r *Review) Validate() error {
	if strings.TrimSpace(r.LocationID) == "" {
		return ErrEmptyLocation
	}
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	if r.Analyzed && (r.Sentiment < -1 || r.Sentiment > 1) {
		return ErrInvalidSentiment
	}
	return nil
}

// SentimentBucket maps the analysis score to a display bucket.
// INVARIANT: Review fields are not mutated
func (r *Review) SentimentBucket() string {
	switch {
	case r.Sentiment > 0.2:
		return SentimentPositive
	case r.Sentiment < -0.2:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// SetAnalysis records the analysis result for the review.
// PRE: sentiment is within [-1, 1]
// POST: Analyzed is true, Sentiment and Themes set
func (r *Review) SetAnalysis(sentiment float64, themes []string) error {
	if sentiment < -1 || sentiment > 1 {
		return ErrInvalidSentiment
	}
	r.Analyzed = true
	r.Sentiment = sentiment
	r.Themes = themes
	return nil
}
