package blog

import (
	"context"

	domain "linecheck/internal/domain/blog"
)

// Store persists marketing-site posts.
type Store interface {
	GetBySlug(ctx context.Context, slug string) (domain.Post, error)
	ListPublished(ctx context.Context) ([]domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	Save(ctx context.Context, entity domain.Post) error
}
