package pulsesurvey

import (
	"context"

	domain "linecheck/internal/domain/pulsesurvey"
)

// Store persists pulse surveys.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Survey, error)
	List(ctx context.Context) ([]domain.Survey, error)
	Save(ctx context.Context, entity domain.Survey) error
	Delete(ctx context.Context, id string) error
}

// ResponseStore persists anonymous pulse responses.
type ResponseStore interface {
	ListBySurvey(ctx context.Context, surveyID string) ([]domain.Response, error)
	CountBySurvey(ctx context.Context, surveyID string) (int, error)
	Save(ctx context.Context, entity domain.Response) error
}
