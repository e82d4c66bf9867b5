package review

import (
	"context"

	domain "linecheck/internal/domain/review"
)

// Store persists customer reviews and their analysis fields.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Review, error)
	ListByLocation(ctx context.Context, locationID string, limit int) ([]domain.Review, error)
	ListUnanalyzed(ctx context.Context, limit int) ([]domain.Review, error)
	Save(ctx context.Context, entity domain.Review) error
}
