package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"linecheck/internal/adapters/http/perf"
	"linecheck/internal/application/orchestrators"
	accountDomain "linecheck/internal/domain/account"
	"linecheck/internal/domain/distribution"
)

// handleAdminAccounts handles GET (list) and POST (invite) for /admin/accounts.
func handleAdminAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case "GET":
		accounts, err := stores.AccountStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		// Password hashes never leave the server.
		type accountView struct {
			ID              string `json:"id"`
			Email           string `json:"email"`
			Name            string `json:"name"`
			Role            string `json:"role"`
			Status          string `json:"status"`
			IsTrial         bool   `json:"is_trial"`
			ChecksCompleted int    `json:"checks_completed"`
		}
		views := make([]accountView, 0, len(accounts))
		for _, a := range accounts {
			views = append(views, accountView{
				ID:              a.ID,
				Email:           a.Email,
				Name:            a.Name,
				Role:            a.Role,
				Status:          a.Status,
				IsTrial:         a.IsTrial,
				ChecksCompleted: a.ChecksCompleted,
			})
		}
		writeJSON(w, http.StatusOK, views)

	case "POST":
		var req struct {
			Email   string `json:"email"`
			Name    string `json:"name"`
			Role    string `json:"role"`
			IsTrial bool   `json:"is_trial"`
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		id, err := orchestrators.ExecuteCreateAccount(ctx,
			orchestrators.CreateAccountInput{
				Email:   req.Email,
				Name:    req.Name,
				Role:    req.Role,
				IsTrial: req.IsTrial,
				BaseURL: baseURL(r),
			},
			orchestrators.CreateAccountDeps{
				AccountStore: stores.AccountStore,
				TokenStore:   stores.ActivationTokenStore,
				EmailSender:  emailSender,
				EmailFrom:    emailFromAddress,
			})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, orchestrators.ErrEmailAlreadyExists) {
				status = http.StatusConflict
			}
			http.Error(w, err.Error(), status)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminDeliveries handles admin endpoints for the delivery queue.
// Routes: GET /admin/deliveries (recent failures), POST /admin/deliveries/{id}/{action}
func handleAdminDeliveries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case "GET":
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		var deliveries []distribution.Delivery
		var err error
		if r.URL.Query().Get("status") == "pending" {
			deliveries, err = stores.DeliveryStore.ListPending(ctx, limit)
		} else {
			deliveries, err = stores.DeliveryStore.ListRecentFailures(ctx, limit)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deliveries)

	case "POST":
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 4 || parts[0] != "admin" || parts[1] != "deliveries" {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		deliveryID := parts[2]
		action := parts[3]

		delivery, err := stores.DeliveryStore.GetByID(ctx, deliveryID)
		if err != nil {
			http.Error(w, "delivery not found", http.StatusNotFound)
			return
		}

		switch action {
		case "retry":
			if delivery.IsTerminal() && delivery.Status != distribution.StatusFailed {
				http.Error(w, "delivery cannot be retried", http.StatusBadRequest)
				return
			}
			// Reset to pending; the background worker picks it up.
			delivery.Status = distribution.StatusPending
			delivery.Attempts = 0
			delivery.ErrorMessage = ""
			if err := stores.DeliveryStore.Save(ctx, delivery); err != nil {
				internalError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "retry queued"})

		case "abandon":
			delivery.MarkAbandoned()
			if err := stores.DeliveryStore.Save(ctx, delivery); err != nil {
				internalError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})

		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
		}

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminPerf handles GET /admin/perf.
// Returns per-path request and query timings from the in-memory collector.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if perfCollector == nil {
		http.Error(w, "perf collection disabled", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"requests": perfCollector.Snapshot(perf.KindRequest),
		"queries":  perfCollector.Snapshot(perf.KindQuery),
	})
}

// handleBillingPlan handles POST /api/billing/plan.
// Owners change their own plan; admins can change any account's.
func handleBillingPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireOperator(w, r)
	if !ok {
		return
	}

	var req struct {
		AccountID string `json:"account_id"`
		Plan      string `json:"plan"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	accountID := sess.AccountID
	if req.AccountID != "" && req.AccountID != sess.AccountID {
		if sess.Role != accountDomain.RoleAdmin && sess.Role != accountDomain.RoleSuperAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		accountID = req.AccountID
	}

	err := orchestrators.ExecuteChangePlan(r.Context(),
		orchestrators.ChangePlanInput{AccountID: accountID, Plan: req.Plan},
		orchestrators.ChangePlanDeps{
			SubscriptionStore: stores.SubscriptionStore,
			AccountStore:      stores.AccountStore,
		})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "plan changed", "plan": req.Plan})
}

// handleBillingTrial handles POST /api/billing/trial (start a trial).
func handleBillingTrial(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireOperator(w, r)
	if !ok {
		return
	}

	err := orchestrators.ExecuteStartTrial(r.Context(), sess.AccountID,
		orchestrators.ChangePlanDeps{
			SubscriptionStore: stores.SubscriptionStore,
			AccountStore:      stores.AccountStore,
		})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "trial started"})
}
