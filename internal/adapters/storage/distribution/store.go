package distribution

import (
	"context"

	domain "linecheck/internal/domain/distribution"
)

// Store persists magic-link deliveries.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Delivery, error)
	ListPending(ctx context.Context, limit int) ([]domain.Delivery, error)
	ListRecentFailures(ctx context.Context, limit int) ([]domain.Delivery, error)
	Save(ctx context.Context, entity domain.Delivery) error
}
