package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"linecheck/internal/domain/pulsesurvey"
)

// SurveyStoreForWrite defines the survey store interface needed by the pulse orchestrators.
type SurveyStoreForWrite interface {
	GetByID(ctx context.Context, id string) (pulsesurvey.Survey, error)
	Save(ctx context.Context, s pulsesurvey.Survey) error
	Delete(ctx context.Context, id string) error
}

// PulseResponseStoreForWrite defines the response store interface.
type PulseResponseStoreForWrite interface {
	Save(ctx context.Context, r pulsesurvey.Response) error
}

var (
	ErrSurveyNotFound = errors.New("pulse survey not found")
	ErrSurveyClosed   = errors.New("pulse survey is closed")
)

// CreatePulseSurveyInput carries input for CreatePulseSurvey.
type CreatePulseSurveyInput struct {
	Question       string
	Cadence        string
	MinRespondents int
	CreatedBy      string
}

// CreatePulseSurveyDeps holds dependencies for CreatePulseSurvey.
type CreatePulseSurveyDeps struct {
	SurveyStore SurveyStoreForWrite
}

// ExecuteCreatePulseSurvey creates an open survey.
// PRE: Question and cadence are valid
// POST: Survey persisted with its privacy floor defaulted
func ExecuteCreatePulseSurvey(ctx context.Context, input CreatePulseSurveyInput, deps CreatePulseSurveyDeps) (string, error) {
	survey := pulsesurvey.Survey{
		ID:             uuid.New().String(),
		Question:       input.Question,
		Cadence:        input.Cadence,
		Status:         pulsesurvey.StatusOpen,
		MinRespondents: input.MinRespondents,
		CreatedBy:      input.CreatedBy,
		CreatedAt:      time.Now(),
	}
	if err := survey.Validate(); err != nil {
		return "", err
	}
	if err := deps.SurveyStore.Save(ctx, survey); err != nil {
		return "", err
	}

	slog.Info("pulse_event", "event", "survey_created", "survey_id", survey.ID, "cadence", survey.Cadence)
	return survey.ID, nil
}

// ExecuteClosePulseSurvey closes a survey to new responses.
// PRE: Survey exists and is open
// POST: Survey status is closed
func ExecuteClosePulseSurvey(ctx context.Context, surveyID string, deps CreatePulseSurveyDeps) error {
	survey, err := deps.SurveyStore.GetByID(ctx, surveyID)
	if err != nil {
		return ErrSurveyNotFound
	}
	if err := survey.Close(time.Now()); err != nil {
		return err
	}
	if err := deps.SurveyStore.Save(ctx, survey); err != nil {
		return err
	}

	slog.Info("pulse_event", "event", "survey_closed", "survey_id", surveyID)
	return nil
}

// ExecuteDeletePulseSurvey deletes a survey and its responses.
// PRE: Survey exists
// POST: Survey and responses removed
func ExecuteDeletePulseSurvey(ctx context.Context, surveyID string, deps CreatePulseSurveyDeps) error {
	if _, err := deps.SurveyStore.GetByID(ctx, surveyID); err != nil {
		return ErrSurveyNotFound
	}
	if err := deps.SurveyStore.Delete(ctx, surveyID); err != nil {
		return err
	}

	slog.Info("pulse_event", "event", "survey_deleted", "survey_id", surveyID)
	return nil
}

// SubmitPulseResponseInput carries one anonymous response.
type SubmitPulseResponseInput struct {
	SurveyID string
	Score    int // 1-5
	Comment  string
}

// SubmitPulseResponseDeps holds dependencies for SubmitPulseResponse.
type SubmitPulseResponseDeps struct {
	SurveyStore   SurveyStoreForWrite
	ResponseStore PulseResponseStoreForWrite
}

// ExecuteSubmitPulseResponse records an anonymous response. No
// respondent identity is accepted or stored.
// PRE: Survey exists and is open; score is 1-5
// POST: Response persisted
func ExecuteSubmitPulseResponse(ctx context.Context, input SubmitPulseResponseInput, deps SubmitPulseResponseDeps) error {
	survey, err := deps.SurveyStore.GetByID(ctx, input.SurveyID)
	if err != nil {
		return ErrSurveyNotFound
	}
	if survey.Status != pulsesurvey.StatusOpen {
		return ErrSurveyClosed
	}

	resp := pulsesurvey.Response{
		ID:          uuid.New().String(),
		SurveyID:    input.SurveyID,
		Score:       input.Score,
		Comment:     input.Comment,
		SubmittedAt: time.Now(),
	}
	if err := resp.Validate(); err != nil {
		return err
	}
	if err := deps.ResponseStore.Save(ctx, resp); err != nil {
		return err
	}

	slog.Info("pulse_event", "event", "response_submitted", "survey_id", input.SurveyID)
	return nil
}
