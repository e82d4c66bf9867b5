package web

import "net/http"

// registerRoutes attaches every application route to the mux. The root
// pattern (static marketing site) is registered by NewMux.
func registerRoutes(mux *http.ServeMux) {
	// Auth
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)
	mux.HandleFunc("/activate/", handleActivate)

	// Unauthenticated magic-link and anonymous-response routes
	mux.HandleFunc("/check/", handleCheck)
	mux.HandleFunc("/pulse/", handlePulseRespond)

	// Marketing site
	mux.HandleFunc("/blog", handleBlog)
	mux.HandleFunc("/blog/", handleBlog)
	mux.HandleFunc("/api/leads", handleLeads)

	// App pages
	mux.HandleFunc("/app/dashboard", handleDashboard)
	mux.HandleFunc("/upgrade/", handleUpgrade)

	// App API
	mux.HandleFunc("/api/navigation", handleNavigation)
	mux.HandleFunc("/api/dashboard", handleDashboard)
	mux.HandleFunc("/api/locations", handleLocations)
	mux.HandleFunc("/api/locations/", handleLocationArchive)
	mux.HandleFunc("/api/templates", handleTemplates)
	mux.HandleFunc("/api/checks/runs", handleCheckRuns)
	mux.HandleFunc("/api/checks/stats", handleCheckStats)
	mux.HandleFunc("/api/checks/distribute", handleDistribute)
	mux.HandleFunc("/api/pulse/surveys", handlePulseSurveys)
	mux.HandleFunc("/api/pulse/surveys/", handlePulseSurveyAction)
	mux.HandleFunc("/api/reviews", handleReviews)
	mux.HandleFunc("/api/reviews/analyze", handleReviewsAnalyze)
	mux.HandleFunc("/api/reviews/insights", handleReviewInsights)
	mux.HandleFunc("/api/videos/watched", handleVideoWatched)
	mux.HandleFunc("/api/preview", handlePreview)
	mux.HandleFunc("/api/preview/restore", handlePreviewRestore)
	mux.HandleFunc("/api/billing/plan", handleBillingPlan)
	mux.HandleFunc("/api/billing/trial", handleBillingTrial)

	// Admin
	mux.HandleFunc("/admin/accounts", handleAdminAccounts)
	mux.HandleFunc("/admin/deliveries", handleAdminDeliveries)
	mux.HandleFunc("/admin/deliveries/", handleAdminDeliveries)
	mux.HandleFunc("/admin/perf", handleAdminPerf)
	mux.HandleFunc("/admin/blog", handleAdminBlogPosts)
	mux.HandleFunc("/admin/blog/", handleAdminBlogPublish)
}
