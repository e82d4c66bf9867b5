package account

import (
	"context"

	domain "linecheck/internal/domain/account"
)

// Store persists Account state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Save(ctx context.Context, entity domain.Account) error
}

// TokenStore persists activation tokens.
type TokenStore interface {
	GetByToken(ctx context.Context, token string) (domain.ActivationToken, error)
	Save(ctx context.Context, entity domain.ActivationToken) error
}
