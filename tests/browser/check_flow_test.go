package browser_test

import (
	"context"
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"

	"linecheck/internal/application/orchestrators"
	"linecheck/internal/domain/microcheck"
)

// createInstantRun wires up a run against the seeded demo template and
// location, returning the magic link.
func createInstantRun(t *testing.T, app *testApp, assigneeEmail string) string {
	t.Helper()
	ctx := context.Background()

	templates, err := app.Stores.TemplateStore.List(ctx)
	if err != nil || len(templates) == 0 {
		t.Fatalf("no seeded templates: %v", err)
	}
	locations, err := app.Stores.LocationStore.List(ctx)
	if err != nil || len(locations) == 0 {
		t.Fatalf("no seeded locations: %v", err)
	}

	result, err := orchestrators.ExecuteCreateInstantRun(ctx,
		orchestrators.CreateInstantRunInput{
			TemplateID:    templates[0].ID,
			LocationID:    locations[0].ID,
			Channel:       microcheck.ChannelEmail,
			AssigneeEmail: assigneeEmail,
			BaseURL:       app.BaseURL,
		},
		orchestrators.CreateInstantRunDeps{
			TemplateStore: app.Stores.TemplateStore,
			RunStore:      app.Stores.RunStore,
			TokenStore:    app.Stores.MagicTokenStore,
			DeliveryStore: app.Stores.DeliveryStore,
		})
	if err != nil {
		t.Fatalf("failed to create instant run: %v", err)
	}
	return result.Link
}

// TestCheckFlow_MagicLinkSubmit walks the whole assignee journey: open the
// magic link without logging in, answer every item, submit, and confirm
// the completion counter moved.
func TestCheckFlow_MagicLinkSubmit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newTestApp(t)
	page := app.newPage(t)

	link := createInstantRun(t, app, "gm@linecheck.test")
	if !strings.Contains(link, "/check/") {
		t.Fatalf("magic link = %q", link)
	}

	if _, err := page.Goto(link); err != nil {
		t.Fatalf("failed to open magic link: %v", err)
	}

	// Answer every item on the form as a pass.
	radios := page.Locator("input[type=radio][value=pass]")
	count, err := radios.Count()
	if err != nil || count == 0 {
		t.Fatalf("no answer radios rendered: count=%d err=%v", count, err)
	}
	for i := 0; i < count; i++ {
		if err := radios.Nth(i).Check(); err != nil {
			t.Fatalf("failed to check radio %d: %v", i, err)
		}
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to submit check: %v", err)
	}

	done := page.Locator("h1")
	if err := done.First().WaitFor(playwright.LocatorWaitForOptions{Timeout: playwright.Float(10000)}); err != nil {
		t.Fatalf("no confirmation heading: %v", err)
	}
	text, _ := done.First().TextContent()
	if !strings.Contains(text, "Check submitted") {
		t.Fatalf("confirmation heading = %q", text)
	}

	acct, err := app.Stores.AccountStore.GetByEmail(context.Background(), "gm@linecheck.test")
	if err != nil {
		t.Fatalf("failed to load assignee: %v", err)
	}
	if acct.ChecksCompleted != 1 {
		t.Errorf("ChecksCompleted = %d, want 1", acct.ChecksCompleted)
	}
}

// TestCheckFlow_UsedLinkIsGone verifies the link dies after one submission.
func TestCheckFlow_UsedLinkIsGone(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newTestApp(t)
	page := app.newPage(t)

	link := createInstantRun(t, app, "gm@linecheck.test")
	if _, err := page.Goto(link); err != nil {
		t.Fatalf("failed to open magic link: %v", err)
	}
	radios := page.Locator("input[type=radio][value=pass]")
	count, _ := radios.Count()
	for i := 0; i < count; i++ {
		if err := radios.Nth(i).Check(); err != nil {
			t.Fatalf("failed to check radio %d: %v", i, err)
		}
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to submit check: %v", err)
	}

	// Re-opening the spent link shows the invalid-link page, not the form.
	if _, err := page.Goto(link); err != nil {
		t.Fatalf("failed to reopen link: %v", err)
	}
	forms, _ := page.Locator("form").Count()
	if forms != 0 {
		t.Error("spent magic link still renders the check form")
	}
}
