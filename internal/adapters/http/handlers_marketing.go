package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"linecheck/internal/application/orchestrators"
)

// handleBlog handles GET /blog (published list) and GET /blog/{slug}
// (post detail, markdown rendered server-side). Public routes.
func handleBlog(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	if len(parts) == 1 {
		posts, err := stores.PostStore.ListPublished(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		if isHTMLRequest(r) {
			renderTemplate(w, r, "blog.html", map[string]any{"Posts": posts})
			return
		}
		writeJSON(w, http.StatusOK, posts)
		return
	}

	if len(parts) == 2 && parts[1] != "" {
		post, err := stores.PostStore.GetBySlug(r.Context(), parts[1])
		if err != nil || !post.IsPublished() {
			http.NotFound(w, r)
			return
		}
		if isHTMLRequest(r) {
			renderTemplate(w, r, "blog_post.html", map[string]any{"Post": post})
			return
		}
		writeJSON(w, http.StatusOK, post)
		return
	}

	http.NotFound(w, r)
}

// handleAdminBlogPosts handles GET (all posts incl. drafts) and POST
// (create) for /admin/blog.
func handleAdminBlogPosts(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case "GET":
		posts, err := stores.PostStore.List(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, posts)

	case "POST":
		var req struct {
			Slug       string `json:"slug"`
			Title      string `json:"title"`
			Summary    string `json:"summary"`
			Body       string `json:"body"`
			AuthorName string `json:"author_name"`
			Publish    bool   `json:"publish"`
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		id, err := orchestrators.ExecuteCreateBlogPost(r.Context(),
			orchestrators.CreateBlogPostInput{
				Slug:       req.Slug,
				Title:      req.Title,
				Summary:    req.Summary,
				Body:       req.Body,
				AuthorName: req.AuthorName,
				Publish:    req.Publish,
			},
			orchestrators.CreateBlogPostDeps{PostStore: stores.PostStore})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, orchestrators.ErrSlugTaken) {
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

// handleAdminBlogPublish handles POST /admin/blog/{slug}/publish.
func handleAdminBlogPublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[3] != "publish" {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecutePublishBlogPost(r.Context(), parts[2],
		orchestrators.CreateBlogPostDeps{PostStore: stores.PostStore})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "published"})
}

// handleLeads handles POST /api/leads (public contact form) and
// GET /api/leads (admin list).
func handleLeads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST":
		// Public: accepts both the landing-page form and JSON.
		var input orchestrators.CaptureLeadInput
		if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
			var req struct {
				Name           string `json:"name"`
				Email          string `json:"email"`
				RestaurantName string `json:"restaurant_name"`
				LocationCount  int    `json:"location_count"`
				Message        string `json:"message"`
				Source         string `json:"source"`
			}
			if err := strictDecode(r, &req); err != nil {
				http.Error(w, "invalid JSON body", http.StatusBadRequest)
				return
			}
			input = orchestrators.CaptureLeadInput{
				Name:           req.Name,
				Email:          req.Email,
				RestaurantName: req.RestaurantName,
				LocationCount:  req.LocationCount,
				Message:        req.Message,
				Source:         req.Source,
			}
		} else {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input = orchestrators.CaptureLeadInput{
				Name:           r.FormValue("Name"),
				Email:          r.FormValue("Email"),
				RestaurantName: r.FormValue("RestaurantName"),
				Message:        r.FormValue("Message"),
				Source:         r.FormValue("Source"),
			}
		}

		id, err := orchestrators.ExecuteCaptureLead(r.Context(), input,
			orchestrators.CaptureLeadDeps{
				LeadStore:   stores.LeadStore,
				EmailSender: emailSender,
				EmailFrom:   emailFromAddress,
				NotifyEmail: emailReplyTo,
			})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if isHTMLRequest(r) {
			renderTemplate(w, r, "lead_thanks.html", map[string]any{
				"CSRFToken": csrf.Token(r),
			})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})

	case "GET":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		leads, err := stores.LeadStore.List(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, leads)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
