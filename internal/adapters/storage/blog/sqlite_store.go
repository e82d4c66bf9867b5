package blog

import (
	"context"
	"database/sql"
	"fmt"

	"linecheck/internal/adapters/storage"
	domain "linecheck/internal/domain/blog"
)

const postColumns = `id, slug, title, summary, body, author_name, status, created_at, published_at`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new blog post store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetBySlug retrieves a Post by its slug.
// PRE: slug is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetBySlug(ctx context.Context, slug string) (domain.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM blog_post WHERE slug = ?`, slug)
	entity, err := scanPost(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Post{}, fmt.Errorf("blog post not found: %w", err)
	}
	return entity, err
}

// ListPublished returns published posts, newest first.
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) ListPublished(ctx context.Context) ([]domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM blog_post
		WHERE status = ? ORDER BY published_at DESC
	`, domain.StatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

// List returns all posts including drafts, newest first.
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM blog_post ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

// Save upserts a Post.
// PRE: entity passes Validate
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Post) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blog_post (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			slug=excluded.slug,
			title=excluded.title,
			summary=excluded.summary,
			body=excluded.body,
			author_name=excluded.author_name,
			status=excluded.status,
			published_at=excluded.published_at
	`,
		entity.ID,
		entity.Slug,
		entity.Title,
		entity.Summary,
		entity.Body,
		entity.AuthorName,
		entity.Status,
		storage.FormatTime(entity.CreatedAt),
		storage.FormatTime(entity.PublishedAt),
	)
	if err != nil {
		return fmt.Errorf("save blog_post: %w", err)
	}
	return nil
}

func scanPost(scan func(dest ...any) error) (domain.Post, error) {
	var p domain.Post
	var createdAt, publishedAt sql.NullString
	if err := scan(
		&p.ID,
		&p.Slug,
		&p.Title,
		&p.Summary,
		&p.Body,
		&p.AuthorName,
		&p.Status,
		&createdAt,
		&publishedAt,
	); err != nil {
		return domain.Post{}, err
	}
	p.CreatedAt = storage.ParseTime(createdAt)
	p.PublishedAt = storage.ParseTime(publishedAt)
	return p, nil
}

func collectPosts(rows *sql.Rows) ([]domain.Post, error) {
	out := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
