package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"linecheck/internal/domain/account"
	"linecheck/internal/domain/distribution"
	"linecheck/internal/domain/microcheck"
)

// --- fakes ---

type mockTemplateStore struct {
	templates map[string]microcheck.Template
}

func newMockTemplateStore() *mockTemplateStore {
	return &mockTemplateStore{templates: make(map[string]microcheck.Template)}
}

func (m *mockTemplateStore) GetByID(_ context.Context, id string) (microcheck.Template, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return microcheck.Template{}, errors.New("not found")
	}
	return tpl, nil
}

func (m *mockTemplateStore) List(_ context.Context) ([]microcheck.Template, error) {
	out := []microcheck.Template{}
	for _, tpl := range m.templates {
		out = append(out, tpl)
	}
	return out, nil
}

func (m *mockTemplateStore) Save(_ context.Context, tpl microcheck.Template) error {
	m.templates[tpl.ID] = tpl
	return nil
}

type mockRunStore struct {
	runs map[string]microcheck.Run
}

func newMockRunStore() *mockRunStore {
	return &mockRunStore{runs: make(map[string]microcheck.Run)}
}

func (m *mockRunStore) GetByID(_ context.Context, id string) (microcheck.Run, error) {
	r, ok := m.runs[id]
	if !ok {
		return microcheck.Run{}, errors.New("not found")
	}
	return r, nil
}

func (m *mockRunStore) ListByStatus(_ context.Context, status string, limit int) ([]microcheck.Run, error) {
	out := []microcheck.Run{}
	for _, r := range m.runs {
		if r.Status == status && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRunStore) Save(_ context.Context, r microcheck.Run) error {
	m.runs[r.ID] = r
	return nil
}

type mockMagicTokenStore struct {
	byToken map[string]microcheck.MagicToken
}

func newMockMagicTokenStore() *mockMagicTokenStore {
	return &mockMagicTokenStore{byToken: make(map[string]microcheck.MagicToken)}
}

func (m *mockMagicTokenStore) GetByToken(_ context.Context, token string) (microcheck.MagicToken, error) {
	t, ok := m.byToken[token]
	if !ok {
		return microcheck.MagicToken{}, errors.New("not found")
	}
	return t, nil
}

func (m *mockMagicTokenStore) Save(_ context.Context, t microcheck.MagicToken) error {
	m.byToken[t.Token] = t
	return nil
}

func (m *mockMagicTokenStore) only(t *testing.T) microcheck.MagicToken {
	t.Helper()
	if len(m.byToken) != 1 {
		t.Fatalf("token count = %d, want 1", len(m.byToken))
	}
	for _, tok := range m.byToken {
		return tok
	}
	return microcheck.MagicToken{}
}

type mockDeliveryStore struct {
	deliveries map[string]distribution.Delivery
}

func newMockDeliveryStore() *mockDeliveryStore {
	return &mockDeliveryStore{deliveries: make(map[string]distribution.Delivery)}
}

func (m *mockDeliveryStore) GetByID(_ context.Context, id string) (distribution.Delivery, error) {
	d, ok := m.deliveries[id]
	if !ok {
		return distribution.Delivery{}, errors.New("not found")
	}
	return d, nil
}

func (m *mockDeliveryStore) ListPending(_ context.Context, limit int) ([]distribution.Delivery, error) {
	out := []distribution.Delivery{}
	for _, d := range m.deliveries {
		if d.CanRetry() && len(out) < limit {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDeliveryStore) Save(_ context.Context, d distribution.Delivery) error {
	m.deliveries[d.ID] = d
	return nil
}

type mockResponseStore struct {
	responses []microcheck.Response
}

func (m *mockResponseStore) ListByRun(_ context.Context, runID string) ([]microcheck.Response, error) {
	out := []microcheck.Response{}
	for _, r := range m.responses {
		if r.RunID == runID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockResponseStore) Save(_ context.Context, r microcheck.Response) error {
	m.responses = append(m.responses, r)
	return nil
}

func seedTemplate(store *mockTemplateStore) microcheck.Template {
	tpl := microcheck.Template{
		ID:   "tpl-1",
		Name: "Opening line check",
		Items: []microcheck.TemplateItem{
			{ID: "item-1", Prompt: "Cooler temp OK", Position: 1},
			{ID: "item-2", Prompt: "Sanitizer mixed", Position: 2},
		},
		CreatedBy: "acct-owner",
		CreatedAt: time.Now(),
	}
	store.templates[tpl.ID] = tpl
	return tpl
}

// --- ExecuteCreateInstantRun ---

// TestExecuteCreateInstantRun_QueuesDelivery verifies the run, token, and
// delivery are all created.
func TestExecuteCreateInstantRun_QueuesDelivery(t *testing.T) {
	templates := newMockTemplateStore()
	runs := newMockRunStore()
	tokens := newMockMagicTokenStore()
	deliveries := newMockDeliveryStore()
	seedTemplate(templates)

	result, err := ExecuteCreateInstantRun(context.Background(), CreateInstantRunInput{
		TemplateID:    "tpl-1",
		LocationID:    "loc-1",
		Channel:       microcheck.ChannelEmail,
		AssigneeEmail: "gm@example.com",
		BaseURL:       "https://app.example.com",
	}, CreateInstantRunDeps{
		TemplateStore: templates,
		RunStore:      runs,
		TokenStore:    tokens,
		DeliveryStore: deliveries,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	run := runs.runs[result.RunID]
	if run.Status != microcheck.RunStatusSent {
		t.Errorf("run status = %q, want sent", run.Status)
	}

	token := tokens.only(t)
	if token.RunID != result.RunID {
		t.Errorf("token.RunID = %q, want %q", token.RunID, result.RunID)
	}
	wantLink := "https://app.example.com/check/" + token.Token
	if result.Link != wantLink {
		t.Errorf("Link = %q, want %q", result.Link, wantLink)
	}

	if len(deliveries.deliveries) != 1 {
		t.Fatalf("delivery count = %d, want 1", len(deliveries.deliveries))
	}
	for _, d := range deliveries.deliveries {
		if d.Status != distribution.StatusPending {
			t.Errorf("delivery status = %q, want pending", d.Status)
		}
		if d.Recipient != "gm@example.com" {
			t.Errorf("recipient = %q, want gm@example.com", d.Recipient)
		}
	}
}

// TestExecuteCreateInstantRun_UnknownTemplate verifies the template must exist.
func TestExecuteCreateInstantRun_UnknownTemplate(t *testing.T) {
	_, err := ExecuteCreateInstantRun(context.Background(), CreateInstantRunInput{
		TemplateID:    "missing",
		LocationID:    "loc-1",
		Channel:       microcheck.ChannelEmail,
		AssigneeEmail: "gm@example.com",
	}, CreateInstantRunDeps{
		TemplateStore: newMockTemplateStore(),
		RunStore:      newMockRunStore(),
		TokenStore:    newMockMagicTokenStore(),
		DeliveryStore: newMockDeliveryStore(),
	})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("err = %v, want ErrTemplateNotFound", err)
	}
}

// --- ExecuteOpenCheck / ExecuteSubmitCheck ---

func setupSentRun(t *testing.T) (*mockTemplateStore, *mockRunStore, *mockMagicTokenStore, string) {
	t.Helper()
	templates := newMockTemplateStore()
	runs := newMockRunStore()
	tokens := newMockMagicTokenStore()
	seedTemplate(templates)

	result, err := ExecuteCreateInstantRun(context.Background(), CreateInstantRunInput{
		TemplateID:    "tpl-1",
		LocationID:    "loc-1",
		Channel:       microcheck.ChannelEmail,
		AssigneeEmail: "gm@example.com",
		BaseURL:       "https://app.example.com",
	}, CreateInstantRunDeps{
		TemplateStore: templates,
		RunStore:      runs,
		TokenStore:    tokens,
		DeliveryStore: newMockDeliveryStore(),
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	_ = result
	return templates, runs, tokens, tokens.only(t).Token
}

// TestExecuteOpenCheck_StartsRun verifies opening the link moves the run
// to started without consuming the token.
func TestExecuteOpenCheck_StartsRun(t *testing.T) {
	templates, runs, tokens, tokenValue := setupSentRun(t)

	result, err := ExecuteOpenCheck(context.Background(), OpenCheckInput{Token: tokenValue}, OpenCheckDeps{
		TokenStore:    tokens,
		RunStore:      runs,
		TemplateStore: templates,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Run.Status != microcheck.RunStatusStarted {
		t.Errorf("run status = %q, want started", result.Run.Status)
	}
	if len(result.Template.Items) != 2 {
		t.Errorf("template items = %d, want 2", len(result.Template.Items))
	}

	// Reload is fine: the token is not consumed on open.
	if _, err := ExecuteOpenCheck(context.Background(), OpenCheckInput{Token: tokenValue}, OpenCheckDeps{
		TokenStore:    tokens,
		RunStore:      runs,
		TemplateStore: templates,
	}); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
}

// TestExecuteOpenCheck_ExpiredToken verifies expired links are rejected.
func TestExecuteOpenCheck_ExpiredToken(t *testing.T) {
	templates, runs, tokens, tokenValue := setupSentRun(t)

	tok := tokens.byToken[tokenValue]
	tok.ExpiresAt = time.Now().Add(-time.Hour)
	tokens.byToken[tokenValue] = tok

	_, err := ExecuteOpenCheck(context.Background(), OpenCheckInput{Token: tokenValue}, OpenCheckDeps{
		TokenStore:    tokens,
		RunStore:      runs,
		TemplateStore: templates,
	})
	if !errors.Is(err, microcheck.ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

// TestExecuteSubmitCheck_CompletesAndBumpsCounter verifies the full
// submit path: responses stored, run completed, token consumed, and the
// assignee's checks-completed counter incremented.
func TestExecuteSubmitCheck_CompletesAndBumpsCounter(t *testing.T) {
	templates, runs, tokens, tokenValue := setupSentRun(t)
	responses := &mockResponseStore{}
	accounts := newMockAccountStore()
	_ = accounts.Save(context.Background(), account.Account{
		ID:     "acct-gm",
		Email:  "gm@example.com",
		Role:   account.RoleGM,
		Status: account.StatusActive,
	})

	deps := SubmitCheckDeps{
		TokenStore:    tokens,
		RunStore:      runs,
		TemplateStore: templates,
		ResponseStore: responses,
		AccountStore:  accounts,
	}
	err := ExecuteSubmitCheck(context.Background(), SubmitCheckInput{
		Token: tokenValue,
		Answers: []ItemAnswer{
			{ItemID: "item-1", Result: microcheck.ResultPass},
			{ItemID: "item-2", Result: microcheck.ResultFail, Note: "buckets empty"},
		},
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(responses.responses) != 2 {
		t.Errorf("responses = %d, want 2", len(responses.responses))
	}
	for _, run := range runs.runs {
		if run.Status != microcheck.RunStatusCompleted {
			t.Errorf("run status = %q, want completed", run.Status)
		}
	}
	if !tokens.byToken[tokenValue].Used {
		t.Error("token not consumed on submit")
	}
	if got := accounts.byEmail["gm@example.com"].ChecksCompleted; got != 1 {
		t.Errorf("ChecksCompleted = %d, want 1", got)
	}

	// Resubmission is rejected: the token is spent.
	err = ExecuteSubmitCheck(context.Background(), SubmitCheckInput{
		Token: tokenValue,
		Answers: []ItemAnswer{
			{ItemID: "item-1", Result: microcheck.ResultPass},
			{ItemID: "item-2", Result: microcheck.ResultPass},
		},
	}, deps)
	if !errors.Is(err, microcheck.ErrTokenUsed) {
		t.Fatalf("err = %v, want ErrTokenUsed", err)
	}
}

// TestExecuteSubmitCheck_MissingAnswers verifies partial submissions are
// rejected before anything is persisted.
func TestExecuteSubmitCheck_MissingAnswers(t *testing.T) {
	templates, runs, tokens, tokenValue := setupSentRun(t)
	responses := &mockResponseStore{}

	err := ExecuteSubmitCheck(context.Background(), SubmitCheckInput{
		Token: tokenValue,
		Answers: []ItemAnswer{
			{ItemID: "item-1", Result: microcheck.ResultPass},
		},
	}, SubmitCheckDeps{
		TokenStore:    tokens,
		RunStore:      runs,
		TemplateStore: templates,
		ResponseStore: responses,
	})
	if !errors.Is(err, ErrMissingAnswers) {
		t.Fatalf("err = %v, want ErrMissingAnswers", err)
	}
	if len(responses.responses) != 0 {
		t.Errorf("responses = %d, want 0", len(responses.responses))
	}
}

// --- ExecuteTriggerDistribution ---

// TestExecuteTriggerDistribution_DispatchesDueRuns verifies due scheduled
// runs are sent and future ones wait.
func TestExecuteTriggerDistribution_DispatchesDueRuns(t *testing.T) {
	runs := newMockRunStore()
	tokens := newMockMagicTokenStore()
	deliveries := newMockDeliveryStore()

	due := microcheck.Run{
		ID: "run-due", TemplateID: "tpl-1", LocationID: "loc-1",
		AssigneeEmail: "gm@example.com", Channel: microcheck.ChannelEmail,
		Status:      microcheck.RunStatusScheduled,
		ScheduledAt: time.Now().Add(-time.Minute),
	}
	future := microcheck.Run{
		ID: "run-future", TemplateID: "tpl-1", LocationID: "loc-1",
		AssigneePhone: "+15551234567", Channel: microcheck.ChannelSMS,
		Status:      microcheck.RunStatusScheduled,
		ScheduledAt: time.Now().Add(time.Hour),
	}
	runs.runs[due.ID] = due
	runs.runs[future.ID] = future

	result, err := ExecuteTriggerDistribution(context.Background(), TriggerDistributionInput{
		BaseURL: "https://app.example.com",
	}, TriggerDistributionDeps{
		RunStore:      runs,
		TokenStore:    tokens,
		DeliveryStore: deliveries,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Dispatched != 1 || result.Skipped != 1 {
		t.Errorf("dispatched/skipped = %d/%d, want 1/1", result.Dispatched, result.Skipped)
	}
	if runs.runs["run-due"].Status != microcheck.RunStatusSent {
		t.Errorf("due run status = %q, want sent", runs.runs["run-due"].Status)
	}
	if runs.runs["run-future"].Status != microcheck.RunStatusScheduled {
		t.Errorf("future run status = %q, want scheduled", runs.runs["run-future"].Status)
	}
	if len(deliveries.deliveries) != 1 {
		t.Errorf("deliveries = %d, want 1", len(deliveries.deliveries))
	}
}

// TestExecuteTriggerDistribution_DryRun verifies a dry run reports
// without mutating anything.
func TestExecuteTriggerDistribution_DryRun(t *testing.T) {
	runs := newMockRunStore()
	deliveries := newMockDeliveryStore()
	runs.runs["run-1"] = microcheck.Run{
		ID: "run-1", TemplateID: "tpl-1", LocationID: "loc-1",
		AssigneeEmail: "gm@example.com", Channel: microcheck.ChannelEmail,
		Status: microcheck.RunStatusScheduled,
	}

	result, err := ExecuteTriggerDistribution(context.Background(), TriggerDistributionInput{
		BaseURL: "https://app.example.com",
		DryRun:  true,
	}, TriggerDistributionDeps{
		RunStore:      runs,
		TokenStore:    newMockMagicTokenStore(),
		DeliveryStore: deliveries,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Dispatched != 1 {
		t.Errorf("dispatched = %d, want 1", result.Dispatched)
	}
	if runs.runs["run-1"].Status != microcheck.RunStatusScheduled {
		t.Error("dry run must not change run status")
	}
	if len(deliveries.deliveries) != 0 {
		t.Error("dry run must not queue deliveries")
	}
}
