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
)

// pulseManagerRoles can create, close and delete surveys and see results.
func isPulseManager(r *http.Request) bool {
	return middleware.IsRole(r.Context(),
		accountDomain.RoleOwner, accountDomain.RoleAdmin, accountDomain.RoleSuperAdmin)
}

// handlePulseSurveys handles GET (list) and POST (create) for /api/pulse/surveys.
func handlePulseSurveys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if !isPulseManager(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	switch r.Method {
	case "GET":
		surveys, err := stores.SurveyStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, surveys)

	case "POST":
		var req struct {
			Question       string `json:"question"`
			Cadence        string `json:"cadence"`
			MinRespondents int    `json:"min_respondents"`
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		id, err := orchestrators.ExecuteCreatePulseSurvey(ctx,
			orchestrators.CreatePulseSurveyInput{
				Question:       req.Question,
				Cadence:        req.Cadence,
				MinRespondents: req.MinRespondents,
				CreatedBy:      sess.AccountID,
			},
			orchestrators.CreatePulseSurveyDeps{SurveyStore: stores.SurveyStore})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handlePulseSurveyAction handles POST /api/pulse/surveys/{id}/{action}
// and GET /api/pulse/surveys/{id}/results.
func handlePulseSurveyAction(w http.ResponseWriter, r *http.Request) {
	if !isPulseManager(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 5 || parts[1] != "pulse" || parts[2] != "surveys" {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	surveyID := parts[3]
	action := parts[4]

	deps := orchestrators.CreatePulseSurveyDeps{SurveyStore: stores.SurveyStore}

	switch {
	case r.Method == "GET" && action == "results":
		result, err := projections.QueryGetPulseResults(r.Context(),
			projections.GetPulseResultsQuery{SurveyID: surveyID},
			projections.GetPulseResultsDeps{
				SurveyStore:   stores.SurveyStore,
				ResponseStore: stores.PulseResponseStore,
			})
		if err != nil {
			if errors.Is(err, projections.ErrPulseSurveyNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case r.Method == "POST" && action == "close":
		if err := orchestrators.ExecuteClosePulseSurvey(r.Context(), surveyID, deps); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})

	case r.Method == "POST" && action == "delete":
		if err := orchestrators.ExecuteDeletePulseSurvey(r.Context(), surveyID, deps); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

// handlePulseRespond handles the anonymous response route /pulse/{surveyID}:
// GET renders the form, POST records a response. No session, no identity —
// responses carry nothing that could name the respondent.
func handlePulseRespond(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != "pulse" || parts[1] == "" {
		http.NotFound(w, r)
		return
	}
	surveyID := parts[1]

	switch r.Method {
	case "GET":
		survey, err := stores.SurveyStore.GetByID(r.Context(), surveyID)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		renderTemplate(w, r, "pulse_respond.html", map[string]any{
			"Survey":    survey,
			"CSRFToken": csrf.Token(r),
		})

	case "POST":
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		score, err := strconv.Atoi(r.FormValue("Score"))
		if err != nil {
			http.Error(w, "score must be a number", http.StatusBadRequest)
			return
		}

		err = orchestrators.ExecuteSubmitPulseResponse(r.Context(),
			orchestrators.SubmitPulseResponseInput{
				SurveyID: surveyID,
				Score:    score,
				Comment:  r.FormValue("Comment"),
			},
			orchestrators.SubmitPulseResponseDeps{
				SurveyStore:   stores.SurveyStore,
				ResponseStore: stores.PulseResponseStore,
			})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if isHTMLRequest(r) {
			renderTemplate(w, r, "pulse_done.html", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
