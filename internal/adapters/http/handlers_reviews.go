package web

import (
	"net/http"
	"time"

	"linecheck/internal/application/orchestrators"
	"linecheck/internal/application/projections"
	"linecheck/internal/domain/featuregate"
)

// handleReviews handles POST /api/reviews (ingest one review).
func handleReviews(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireOperator(w, r); !ok {
		return
	}

	var req struct {
		LocationID string `json:"location_id"`
		Source     string `json:"source"`
		Rating     int    `json:"rating"`
		Text       string `json:"text"`
		ReviewedAt string `json:"reviewed_at"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	reviewedAt := timeNow()
	if req.ReviewedAt != "" {
		t, err := time.Parse(time.RFC3339, req.ReviewedAt)
		if err != nil {
			http.Error(w, "reviewed_at must be RFC3339", http.StatusBadRequest)
			return
		}
		reviewedAt = t
	}

	id, err := orchestrators.ExecuteIngestReview(r.Context(),
		orchestrators.IngestReviewInput{
			LocationID: req.LocationID,
			Source:     req.Source,
			Rating:     req.Rating,
			Text:       req.Text,
			ReviewedAt: reviewedAt,
		},
		orchestrators.IngestReviewDeps{ReviewStore: stores.ReviewStore})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleReviewsAnalyze handles POST /api/reviews/analyze.
// Runs the sentiment/theme pass over unanalyzed reviews.
func handleReviewsAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	analyzed, err := orchestrators.ExecuteAnalyzeReviews(r.Context(),
		orchestrators.IngestReviewDeps{ReviewStore: stores.ReviewStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"analyzed": analyzed})
}

// handleReviewInsights handles GET /api/reviews/insights?location_id=...
// The lite slice (counts, average rating) is always populated; the
// premium slice follows the caller's gate state.
func handleReviewInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireOperator(w, r)
	if !ok {
		return
	}

	locationID := r.URL.Query().Get("location_id")
	if locationID == "" {
		http.Error(w, "location_id is required", http.StatusBadRequest)
		return
	}

	evaluator, err := evaluatorForSession(r, sess.AccountID, sess.Role)
	if err != nil {
		internalError(w, err)
		return
	}

	result, err := projections.QueryGetReviewInsights(r.Context(),
		projections.GetReviewInsightsQuery{LocationID: locationID},
		projections.GetReviewInsightsDeps{ReviewStore: stores.ReviewStore, Evaluator: evaluator})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// evaluatorForSession rebuilds the feature evaluator from current
// account state. Cheap enough to do per request, and it means gate
// decisions can never go stale within a session.
func evaluatorForSession(r *http.Request, accountID, role string) (*featuregate.Evaluator, error) {
	acct, err := stores.AccountStore.GetByID(r.Context(), accountID)
	if err != nil {
		return nil, err
	}

	plan := ""
	if sub, err := stores.SubscriptionStore.GetByAccountID(r.Context(), accountID); err == nil {
		plan = sub.Plan
	}
	locations := 0
	if n, err := stores.LocationStore.CountActive(r.Context()); err == nil {
		locations = n
	}

	return featuregate.NewEvaluator(featuregate.ProfileSnapshot{
		Role:            role,
		IsTrial:         acct.IsTrial,
		Plan:            plan,
		ChecksCompleted: acct.ChecksCompleted,
		VideosWatched:   acct.VideosWatched,
		LocationsUsed:   locations,
	}), nil
}
