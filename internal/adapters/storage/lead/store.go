package lead

import (
	"context"

	domain "linecheck/internal/domain/lead"
)

// Store persists marketing leads.
type Store interface {
	List(ctx context.Context) ([]domain.Lead, error)
	Save(ctx context.Context, entity domain.Lead) error
}
