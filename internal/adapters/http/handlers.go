package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"linecheck/internal/adapters/http/middleware"
	"linecheck/internal/application/orchestrators"
	"linecheck/internal/application/projections"
	accountDomain "linecheck/internal/domain/account"
	"linecheck/internal/domain/featuregate"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

const templatesDir = "internal/adapters/http/templates"

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	role := ""
	email := ""
	if ok {
		role = sess.Role
		email = sess.Email
	}

	previewing := false
	realRole := ""
	isRealAdmin := false
	if ok && sess.IsPreviewing() {
		previewing = true
		realRole = sess.RealRole
		isRealAdmin = sess.RealRole == accountDomain.RoleAdmin || sess.RealRole == accountDomain.RoleSuperAdmin
	} else if ok {
		isRealAdmin = sess.Role == accountDomain.RoleAdmin || sess.Role == accountDomain.RoleSuperAdmin
	}

	funcMap := template.FuncMap{
		"currentRole":  func() string { return role },
		"currentEmail": func() string { return email },
		"isLoggedIn":   func() bool { return role != "" },
		"csrfToken":    func() string { return csrf.Token(r) },
		"isPreviewing": func() bool { return previewing },
		"realRole":     func() string { return realRole },
		"isRealAdmin":  func() bool { return isRealAdmin },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// requireAdmin blocks requests from non-admin sessions and returns the session.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	if sess.Role != accountDomain.RoleAdmin && sess.Role != accountDomain.RoleSuperAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// requireOperator blocks requests from roles below gm.
func requireOperator(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	if !middleware.IsOperator(r.Context()) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// baseURL reconstructs the external URL for links embedded in emails.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// handleLogin handles GET (form) and POST (authenticate) for /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// If already logged in, redirect to dashboard
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/app/dashboard", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.LoginInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}
		deps := orchestrators.LoginDeps{
			AccountStore: stores.AccountStore,
		}

		result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
		if err != nil {
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		token, err := sessions.Create(result.AccountID, result.Email, result.Role)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		middleware.SetSessionCookie(w, token)
		http.Redirect(w, r, "/app/dashboard", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie("linecheck_session")
	if err == nil {
		sessions.Delete(cookie.Value)
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleActivate handles GET /activate/{token} (form) and POST (set password).
// The route is unauthenticated: the activation token is the credential.
func handleActivate(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != "activate" || parts[1] == "" {
		http.NotFound(w, r)
		return
	}
	token := parts[1]

	if r.Method == "GET" {
		renderTemplate(w, r, "activate.html", map[string]any{
			"CSRFToken": csrf.Token(r),
			"Token":     token,
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.ActivateAccountInput{
			Token:    token,
			Password: r.FormValue("Password"),
		}
		deps := orchestrators.ActivateAccountDeps{
			AccountStore: stores.AccountStore,
			TokenStore:   stores.ActivationTokenStore,
		}
		if err := orchestrators.ExecuteActivateAccount(r.Context(), input, deps); err != nil {
			renderTemplate(w, r, "activate.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Token":     token,
				"Error":     err.Error(),
			})
			return
		}

		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleNavigation handles GET /api/navigation.
// Returns the derived sidebar and footer for the current session — the
// client renders exactly what this endpoint says, nothing more.
func handleNavigation(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	result, err := projections.QueryGetNavigation(r.Context(),
		projections.GetNavigationQuery{AccountID: sess.AccountID, Role: sess.Role},
		projections.GetNavigationDeps{
			AccountStore:      stores.AccountStore,
			SubscriptionStore: stores.SubscriptionStore,
			LocationStore:     stores.LocationStore,
		})
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sections":    result.Sections,
		"footer_mode": result.FooterMode,
		"tier":        result.Tier,
	})
}

// handleDashboard handles GET /app/dashboard (HTML) and GET /api/dashboard (JSON).
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireOperator(w, r)
	if !ok {
		return
	}

	deps := projections.GetDashboardDeps{
		RunStore:      stores.RunStore,
		LocationStore: stores.LocationStore,
		SurveyStore:   stores.SurveyStore,
		ReviewStore:   stores.ReviewStore,
	}
	if middleware.IsAdmin(r.Context()) {
		deps.DeliveryStore = stores.DeliveryStore
	}

	result, err := projections.QueryGetDashboard(r.Context(),
		projections.GetDashboardQuery{Role: sess.Role}, deps, timeNow())
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "dashboard.html", map[string]any{
			"Dashboard": result,
			"CSRFToken": csrf.Token(r),
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleUpgrade handles GET /upgrade/{feature}.
// Locked navigation items route here instead of the real feature.
func handleUpgrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != "upgrade" {
		http.NotFound(w, r)
		return
	}

	// The enterprise upsell page is shared by plan-gated features.
	key := featuregate.FeatureKey(parts[1])
	if parts[1] == "enterprise" {
		key = featuregate.FeatureMultiLocation
	}
	desc, ok := featuregate.Lookup(key)
	if !ok {
		http.NotFound(w, r)
		return
	}

	renderTemplate(w, r, "upgrade.html", map[string]any{
		"Feature":   string(desc.Key),
		"Hint":      desc.Hint,
		"CSRFToken": csrf.Token(r),
	})
}

// handleVideoWatched handles POST /api/videos/watched.
// Bumps the onboarding counter that action-gated features read.
func handleVideoWatched(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	count, err := orchestrators.ExecuteRecordVideoWatched(r.Context(), sess.AccountID,
		orchestrators.RecordVideoWatchedDeps{AccountStore: stores.AccountStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"videos_watched": count})
}

// handlePreview handles POST /api/preview.
// An admin switches the session to another role to inspect what that
// role's gated navigation looks like. The real identity is kept on the
// session so the switch is reversible.
func handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if !middleware.IsRealAdmin(r.Context()) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	targetRole := r.FormValue("role")
	switch targetRole {
	case accountDomain.RoleOwner, accountDomain.RoleGM, accountDomain.RoleInspector:
	default:
		http.Error(w, "role must be owner, gm or inspector", http.StatusBadRequest)
		return
	}

	cookie, err := r.Cookie("linecheck_session")
	if err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}

	if !sess.IsPreviewing() {
		sess.RealAccountID = sess.AccountID
		sess.RealEmail = sess.Email
		sess.RealRole = sess.Role
	}
	sess.Role = targetRole
	sessions.Update(cookie.Value, sess)

	slog.Info("preview_event",
		"event", "start",
		"admin_account_id", sess.RealAccountID,
		"target_role", targetRole,
	)

	http.Redirect(w, r, "/app/dashboard", http.StatusSeeOther)
}

// handlePreviewRestore handles POST /api/preview/restore
func handlePreviewRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if !sess.IsPreviewing() {
		http.Error(w, "not previewing", http.StatusBadRequest)
		return
	}

	cookie, err := r.Cookie("linecheck_session")
	if err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}

	sess.AccountID = sess.RealAccountID
	sess.Email = sess.RealEmail
	sess.Role = sess.RealRole
	sess.RealAccountID = ""
	sess.RealEmail = ""
	sess.RealRole = ""
	sessions.Update(cookie.Value, sess)

	slog.Info("preview_event",
		"event", "restore",
		"admin_account_id", sess.AccountID,
	)

	http.Redirect(w, r, "/app/dashboard", http.StatusSeeOther)
}
