package orchestrators

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"linecheck/internal/domain/distribution"
	"linecheck/internal/domain/microcheck"
)

// TemplateStoreForRun defines the template store interface needed by the run orchestrators.
type TemplateStoreForRun interface {
	GetByID(ctx context.Context, id string) (microcheck.Template, error)
}

// RunStoreForWrite defines the run store interface needed by the run orchestrators.
type RunStoreForWrite interface {
	GetByID(ctx context.Context, id string) (microcheck.Run, error)
	Save(ctx context.Context, r microcheck.Run) error
}

// MagicTokenStoreForWrite defines the magic-token store interface.
type MagicTokenStoreForWrite interface {
	Save(ctx context.Context, t microcheck.MagicToken) error
}

// DeliveryStoreForWrite defines the delivery store interface.
type DeliveryStoreForWrite interface {
	Save(ctx context.Context, d distribution.Delivery) error
}

// CreateInstantRunInput carries input for CreateInstantRun.
type CreateInstantRunInput struct {
	TemplateID    string
	LocationID    string
	Channel       string // email, sms
	AssigneeEmail string
	AssigneePhone string
	BaseURL       string // used to build the magic link
}

// CreateInstantRunResult carries the created run and its link.
type CreateInstantRunResult struct {
	RunID string
	Link  string
}

// CreateInstantRunDeps holds dependencies for CreateInstantRun.
type CreateInstantRunDeps struct {
	TemplateStore TemplateStoreForRun
	RunStore      RunStoreForWrite
	TokenStore    MagicTokenStoreForWrite
	DeliveryStore DeliveryStoreForWrite
}

var ErrTemplateNotFound = errors.New("check template not found")

// ExecuteCreateInstantRun creates a run for immediate delivery: the run,
// its single-use magic token, and a queued delivery the retry worker
// picks up.
// PRE: Template and location exist; channel matches the assignee contact
// POST: Run persisted in sent state, token stored, delivery queued
func ExecuteCreateInstantRun(ctx context.Context, input CreateInstantRunInput, deps CreateInstantRunDeps) (CreateInstantRunResult, error) {
	if _, err := deps.TemplateStore.GetByID(ctx, input.TemplateID); err != nil {
		return CreateInstantRunResult{}, ErrTemplateNotFound
	}

	now := time.Now()
	run := microcheck.Run{
		ID:            uuid.New().String(),
		TemplateID:    input.TemplateID,
		LocationID:    input.LocationID,
		AssigneeEmail: input.AssigneeEmail,
		AssigneePhone: input.AssigneePhone,
		Channel:       input.Channel,
		Status:        microcheck.RunStatusScheduled,
		CreatedAt:     now,
	}
	if err := run.Validate(); err != nil {
		return CreateInstantRunResult{}, err
	}

	tokenValue, err := generateMagicToken()
	if err != nil {
		return CreateInstantRunResult{}, err
	}
	token := microcheck.MagicToken{
		ID:        uuid.New().String(),
		RunID:     run.ID,
		Token:     tokenValue,
		ExpiresAt: now.Add(microcheck.MagicTokenTTL),
		CreatedAt: now,
	}

	run.MarkSent(now)
	if err := deps.RunStore.Save(ctx, run); err != nil {
		return CreateInstantRunResult{}, err
	}
	if err := deps.TokenStore.Save(ctx, token); err != nil {
		return CreateInstantRunResult{}, err
	}

	link := input.BaseURL + "/check/" + tokenValue
	recipient := input.AssigneeEmail
	if input.Channel == microcheck.ChannelSMS {
		recipient = input.AssigneePhone
	}
	delivery := distribution.Delivery{
		ID:        uuid.New().String(),
		RunID:     run.ID,
		Channel:   input.Channel,
		Recipient: recipient,
		Link:      link,
		Status:    distribution.StatusPending,
		CreatedAt: now,
	}
	if err := delivery.Validate(); err != nil {
		return CreateInstantRunResult{}, err
	}
	if err := deps.DeliveryStore.Save(ctx, delivery); err != nil {
		return CreateInstantRunResult{}, err
	}

	slog.Info("check_event", "event", "instant_run_created", "run_id", run.ID, "location_id", run.LocationID, "channel", run.Channel)
	return CreateInstantRunResult{RunID: run.ID, Link: link}, nil
}

func generateMagicToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
