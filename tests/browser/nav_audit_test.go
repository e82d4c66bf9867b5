package browser_test

import (
	"encoding/json"
	"testing"
)

// navPayload mirrors the /api/navigation response shape.
type navPayload struct {
	Sections []struct {
		Title string
		Items []struct {
			Key      string
			Label    string
			Mode     string
			Route    string
			Progress string
		}
	} `json:"sections"`
	FooterMode string `json:"footer_mode"`
	Tier       string `json:"tier"`
}

func (p navPayload) find(key string) (mode, route, progress string, ok bool) {
	for _, sec := range p.Sections {
		for _, item := range sec.Items {
			if item.Key == key {
				return item.Mode, item.Route, item.Progress, true
			}
		}
	}
	return "", "", "", false
}

// TestNavAudit_TrialGM verifies the gated sidebar a trial GM sees:
// the AI coach is teased with counter progress and owner-only items are gone.
func TestNavAudit_TrialGM(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newTestApp(t)
	page := app.newPage(t)
	app.login(t, page, "gm@linecheck.test")

	var nav navPayload
	if err := json.Unmarshal([]byte(app.fetchJSON(t, page, "/api/navigation")), &nav); err != nil {
		t.Fatalf("decode navigation: %v", err)
	}

	if nav.FooterMode != "trial" {
		t.Errorf("footer_mode = %q, want trial", nav.FooterMode)
	}

	mode, route, progress, ok := nav.find("ai-coach")
	if !ok {
		t.Fatal("ai-coach missing from gm sidebar")
	}
	if mode != "teaser" {
		t.Errorf("ai-coach mode = %q, want teaser", mode)
	}
	if route != "/upgrade/ai-coach" {
		t.Errorf("ai-coach route = %q", route)
	}
	if progress != "0/3" {
		t.Errorf("ai-coach progress = %q, want 0/3", progress)
	}

	if _, _, _, ok := nav.find("pulse"); ok {
		t.Error("pulse visible to gm; it is owner-and-up")
	}
	if _, _, _, ok := nav.find("admin"); ok {
		t.Error("admin item visible to gm")
	}
}

// TestNavAudit_Inspector verifies the inspector sidebar collapses to
// inspections only.
func TestNavAudit_Inspector(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newTestApp(t)
	page := app.newPage(t)
	app.login(t, page, "inspector@linecheck.test")

	var nav navPayload
	if err := json.Unmarshal([]byte(app.fetchJSON(t, page, "/api/navigation")), &nav); err != nil {
		t.Fatalf("decode navigation: %v", err)
	}

	if len(nav.Sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(nav.Sections))
	}
	if len(nav.Sections[0].Items) != 1 || nav.Sections[0].Items[0].Key != "inspections" {
		t.Fatalf("inspector items = %+v, want only inspections", nav.Sections[0].Items)
	}
}

// TestNavAudit_AdminSeesEverything verifies the role shortcut: admins get
// every feature unlocked regardless of plan or counters.
func TestNavAudit_AdminSeesEverything(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newTestApp(t)
	page := app.newPage(t)
	app.login(t, page, "admin@linecheck.test")

	var nav navPayload
	if err := json.Unmarshal([]byte(app.fetchJSON(t, page, "/api/navigation")), &nav); err != nil {
		t.Fatalf("decode navigation: %v", err)
	}

	for _, key := range []string{"dashboard", "insights", "pulse", "reviews", "admin"} {
		mode, _, _, ok := nav.find(key)
		if !ok {
			t.Errorf("admin sidebar missing %s", key)
			continue
		}
		if mode == "teaser" {
			t.Errorf("%s teased for admin; role shortcut should unlock it", key)
		}
	}
}
