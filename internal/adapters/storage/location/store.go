package location

import (
	"context"

	domain "linecheck/internal/domain/location"
)

// Store persists Location state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Location, error)
	List(ctx context.Context) ([]domain.Location, error)
	CountActive(ctx context.Context) (int, error)
	Save(ctx context.Context, entity domain.Location) error
}
