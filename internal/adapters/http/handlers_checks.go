package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/csrf"

	"linecheck/internal/adapters/http/middleware"
	"linecheck/internal/application/orchestrators"
	"linecheck/internal/application/projections"
	accountDomain "linecheck/internal/domain/account"
	microcheckDomain "linecheck/internal/domain/microcheck"
)

// handleLocations handles GET (list) and POST (create) for /api/locations.
func handleLocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		if _, ok := requireOperator(w, r); !ok {
			return
		}
		locations, err := stores.LocationStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, locations)

	case "POST":
		if !middleware.IsRole(ctx, accountDomain.RoleOwner, accountDomain.RoleAdmin, accountDomain.RoleSuperAdmin) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		var req struct {
			Name     string `json:"name"`
			Address  string `json:"address"`
			Timezone string `json:"timezone"`
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		id, err := orchestrators.ExecuteCreateLocation(ctx,
			orchestrators.CreateLocationInput{Name: req.Name, Address: req.Address, Timezone: req.Timezone},
			orchestrators.CreateLocationDeps{LocationStore: stores.LocationStore})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleLocationArchive handles POST /api/locations/{id}/archive.
func handleLocationArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !middleware.IsRole(r.Context(), accountDomain.RoleOwner, accountDomain.RoleAdmin, accountDomain.RoleSuperAdmin) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[3] != "archive" {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	locationID := parts[2]

	err := orchestrators.ExecuteArchiveLocation(r.Context(), locationID,
		orchestrators.ArchiveLocationDeps{LocationStore: stores.LocationStore})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

// handleTemplates handles GET /api/templates.
func handleTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireOperator(w, r); !ok {
		return
	}

	templates, err := stores.TemplateStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// handleCheckRuns handles POST /api/checks/runs (create an instant run).
// The run's magic link is queued for delivery and also returned so the
// UI can show it immediately.
func handleCheckRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireOperator(w, r); !ok {
		return
	}

	var req struct {
		TemplateID    string `json:"template_id"`
		LocationID    string `json:"location_id"`
		Channel       string `json:"channel"`
		AssigneeEmail string `json:"assignee_email"`
		AssigneePhone string `json:"assignee_phone"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteCreateInstantRun(r.Context(),
		orchestrators.CreateInstantRunInput{
			TemplateID:    req.TemplateID,
			LocationID:    req.LocationID,
			Channel:       req.Channel,
			AssigneeEmail: req.AssigneeEmail,
			AssigneePhone: req.AssigneePhone,
			BaseURL:       baseURL(r),
		},
		orchestrators.CreateInstantRunDeps{
			TemplateStore: stores.TemplateStore,
			RunStore:      stores.RunStore,
			TokenStore:    stores.MagicTokenStore,
			DeliveryStore: stores.DeliveryStore,
		})
	if err != nil {
		if errors.Is(err, orchestrators.ErrTemplateNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"run_id": result.RunID, "link": result.Link})
}

// handleCheckStats handles GET /api/checks/stats?location_id=...
func handleCheckStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireOperator(w, r); !ok {
		return
	}

	locationID := r.URL.Query().Get("location_id")
	if locationID == "" {
		http.Error(w, "location_id is required", http.StatusBadRequest)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	result, err := projections.QueryGetCheckStats(r.Context(),
		projections.GetCheckStatsQuery{LocationID: locationID, Limit: limit},
		projections.GetCheckStatsDeps{RunStore: stores.RunStore, ResponseStore: stores.ResponseStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDistribute handles POST /api/checks/distribute.
// Dispatches every due scheduled run. Admin only; normally driven by cron.
func handleDistribute(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	dryRun := r.URL.Query().Get("dry_run") == "true"
	result, err := orchestrators.ExecuteTriggerDistribution(r.Context(),
		orchestrators.TriggerDistributionInput{BaseURL: baseURL(r), DryRun: dryRun},
		orchestrators.TriggerDistributionDeps{
			RunStore:      stores.RunStore,
			TokenStore:    stores.MagicTokenStore,
			DeliveryStore: stores.DeliveryStore,
		})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCheck handles the unauthenticated magic-link route /check/{token}:
// GET opens the check (idempotent — reloads are fine), POST submits it.
// The token is the credential; no session is involved.
func handleCheck(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != "check" || parts[1] == "" {
		http.NotFound(w, r)
		return
	}
	token := parts[1]

	switch r.Method {
	case "GET":
		result, err := orchestrators.ExecuteOpenCheck(r.Context(),
			orchestrators.OpenCheckInput{Token: token},
			orchestrators.OpenCheckDeps{
				TokenStore:    stores.MagicTokenStore,
				RunStore:      stores.RunStore,
				TemplateStore: stores.TemplateStore,
			})
		if err != nil {
			if isHTMLRequest(r) {
				renderTemplate(w, r, "check_invalid.html", map[string]any{"Error": err.Error()})
				return
			}
			http.Error(w, err.Error(), http.StatusGone)
			return
		}
		if isHTMLRequest(r) {
			renderTemplate(w, r, "check.html", map[string]any{
				"Run":       result.Run,
				"Template":  result.Template,
				"Token":     token,
				"CSRFToken": csrf.Token(r),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"run": result.Run, "template": result.Template})

	case "POST":
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		// Each item posts as result_{itemID} with an optional note_{itemID}.
		var answers []orchestrators.ItemAnswer
		for key, values := range r.PostForm {
			if !strings.HasPrefix(key, "result_") || len(values) == 0 {
				continue
			}
			itemID := strings.TrimPrefix(key, "result_")
			answers = append(answers, orchestrators.ItemAnswer{
				ItemID: itemID,
				Result: values[0],
				Note:   r.PostForm.Get("note_" + itemID),
			})
		}

		err := orchestrators.ExecuteSubmitCheck(r.Context(),
			orchestrators.SubmitCheckInput{Token: token, Answers: answers},
			orchestrators.SubmitCheckDeps{
				TokenStore:    stores.MagicTokenStore,
				RunStore:      stores.RunStore,
				TemplateStore: stores.TemplateStore,
				ResponseStore: stores.ResponseStore,
				AccountStore:  stores.AccountStore,
			})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, orchestrators.ErrCheckLinkInvalid) ||
				errors.Is(err, microcheckDomain.ErrTokenExpired) ||
				errors.Is(err, microcheckDomain.ErrTokenUsed) {
				status = http.StatusGone
			}
			http.Error(w, err.Error(), status)
			return
		}
		if isHTMLRequest(r) {
			renderTemplate(w, r, "check_done.html", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "submitted"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
