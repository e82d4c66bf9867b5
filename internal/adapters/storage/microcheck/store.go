package microcheck

import (
	"context"
	"time"

	domain "linecheck/internal/domain/microcheck"
)

// TemplateStore persists check templates and their items.
type TemplateStore interface {
	GetByID(ctx context.Context, id string) (domain.Template, error)
	List(ctx context.Context) ([]domain.Template, error)
	Save(ctx context.Context, entity domain.Template) error
}

// RunStore persists check runs.
type RunStore interface {
	GetByID(ctx context.Context, id string) (domain.Run, error)
	ListByLocation(ctx context.Context, locationID string, limit int) ([]domain.Run, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]domain.Run, error)
	CountCompletedSince(ctx context.Context, since time.Time) (int, error)
	Save(ctx context.Context, entity domain.Run) error
}

// TokenStore persists run magic tokens.
type TokenStore interface {
	GetByToken(ctx context.Context, token string) (domain.MagicToken, error)
	Save(ctx context.Context, entity domain.MagicToken) error
}

// ResponseStore persists item responses.
type ResponseStore interface {
	ListByRun(ctx context.Context, runID string) ([]domain.Response, error)
	Save(ctx context.Context, entity domain.Response) error
}
