package review

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"linecheck/internal/adapters/storage"
	domain "linecheck/internal/domain/review"
)

const reviewColumns = `id, location_id, source, rating, text, reviewed_at,
	analyzed, sentiment, themes, created_at`

// SQLiteStore implements Store using SQLite. Themes are stored as a
// comma-separated list; none of the theme labels contain commas.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new review store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Review by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Review, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM review WHERE id = ?`, id)
	entity, err := scanReview(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Review{}, fmt.Errorf("review not found: %w", err)
	}
	return entity, err
}

// ListByLocation returns the most recent reviews for a location.
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) ListByLocation(ctx context.Context, locationID string, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reviewColumns+` FROM review
		WHERE location_id = ? ORDER BY reviewed_at DESC LIMIT ?
	`, locationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

// ListUnanalyzed returns reviews awaiting analysis, oldest first.
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) ListUnanalyzed(ctx context.Context, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reviewColumns+` FROM review
		WHERE analyzed = 0 ORDER BY reviewed_at LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

// Save upserts a Review.
// PRE: entity passes Validate
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Review) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review (`+reviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			analyzed=excluded.analyzed,
			sentiment=excluded.sentiment,
			themes=excluded.themes
	`,
		entity.ID,
		entity.LocationID,
		entity.Source,
		entity.Rating,
		entity.Text,
		storage.FormatTime(entity.ReviewedAt),
		storage.BoolToInt(entity.Analyzed),
		entity.Sentiment,
		strings.Join(entity.Themes, ","),
		storage.FormatTime(entity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	return nil
}

func scanReview(scan func(dest ...any) error) (domain.Review, error) {
	var r domain.Review
	var analyzed int
	var themes string
	var reviewedAt, createdAt sql.NullString
	if err := scan(
		&r.ID,
		&r.LocationID,
		&r.Source,
		&r.Rating,
		&r.Text,
		&reviewedAt,
		&analyzed,
		&r.Sentiment,
		&themes,
		&createdAt,
	); err != nil {
		return domain.Review{}, err
	}
	r.Analyzed = analyzed != 0
	r.ReviewedAt = storage.ParseTime(reviewedAt)
	r.CreatedAt = storage.ParseTime(createdAt)
	if themes != "" {
		r.Themes = strings.Split(themes, ",")
	}
	return r, nil
}

func collectReviews(rows *sql.Rows) ([]domain.Review, error) {
	out := []domain.Review{}
	for rows.Next() {
		r, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
