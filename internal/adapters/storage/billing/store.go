package billing

import (
	"context"

	domain "linecheck/internal/domain/billing"
)

// Store persists subscription snapshots.
type Store interface {
	GetByAccountID(ctx context.Context, accountID string) (domain.Subscription, error)
	Save(ctx context.Context, entity domain.Subscription) error
}
