package review

import "testing"

// TestReview_SentimentBucket verifies bucket boundaries.
func TestReview_SentimentBucket(t *testing.T) {
	cases := []struct {
		sentiment float64
		want      string
	}{
		{0.8, SentimentPositive},
		{0.21, SentimentPositive},
		{0.2, SentimentNeutral},
		{0.0, SentimentNeutral},
		{-0.2, SentimentNeutral},
		{-0.5, SentimentNegative},
	}
	for _, c := range cases {
		r := Review{Sentiment: c.sentiment}
		if got := r.SentimentBucket(); got != c.want {
			t.Fatalf("sentiment %.2f: bucket %s, want %s", c.sentiment, got, c.want)
		}
	}
}

// TestReview_SetAnalysis verifies bounds checking on analysis results.
func TestReview_SetAnalysis(t *testing.T) {
	r := Review{LocationID: "loc1", Rating: 4}
	if err := r.SetAnalysis(1.5, nil); err != ErrInvalidSentiment {
		t.Fatalf("expected ErrInvalidSentiment, got %v", err)
	}
	if err := r.SetAnalysis(0.6, []string{"service", "wait time"}); err != nil {
		t.Fatalf("set analysis: %v", err)
	}
	if !r.Analyzed || len(r.Themes) != 2 {
		t.Fatalf("analysis not recorded: %+v", r)
	}
}

// TestReview_Validate verifies rating bounds.
func TestReview_Validate(t *testing.T) {
	bad := Review{LocationID: "loc1", Rating: 0}
	if err := bad.Validate(); err != ErrInvalidRating {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	ok := Review{LocationID: "loc1", Rating: 5}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid review, got %v", err)
	}
}
