package browser_test

import (
	"context"
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"

	"linecheck/internal/application/orchestrators"
)

// TestPulseFlow_AnonymousResponse submits a pulse response through the
// public form and confirms it lands without any identity attached.
func TestPulseFlow_AnonymousResponse(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newTestApp(t)
	page := app.newPage(t)
	ctx := context.Background()

	surveyID, err := orchestrators.ExecuteCreatePulseSurvey(ctx,
		orchestrators.CreatePulseSurveyInput{
			Question: "How was this week's service?",
			Cadence:  "weekly",
		},
		orchestrators.CreatePulseSurveyDeps{SurveyStore: app.Stores.SurveyStore})
	if err != nil {
		t.Fatalf("failed to create survey: %v", err)
	}

	if _, err := page.Goto(app.BaseURL + "/pulse/" + surveyID); err != nil {
		t.Fatalf("failed to open pulse form: %v", err)
	}
	if err := page.Locator("input[name=Score]").Fill("4"); err != nil {
		t.Fatalf("failed to fill score: %v", err)
	}
	if err := page.Locator("textarea[name=Comment]").Fill("steady shift"); err != nil {
		t.Fatalf("failed to fill comment: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to submit: %v", err)
	}

	done := page.Locator("h1")
	if err := done.First().WaitFor(playwright.LocatorWaitForOptions{Timeout: playwright.Float(10000)}); err != nil {
		t.Fatalf("no confirmation heading: %v", err)
	}
	text, _ := done.First().TextContent()
	if !strings.Contains(text, "Response recorded") {
		t.Fatalf("confirmation heading = %q", text)
	}

	count, err := app.Stores.PulseResponseStore.CountBySurvey(ctx, surveyID)
	if err != nil || count != 1 {
		t.Fatalf("responses = %d, err %v", count, err)
	}
}
