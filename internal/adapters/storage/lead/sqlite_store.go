package lead

import (
	"context"
	"database/sql"
	"fmt"

	"linecheck/internal/adapters/storage"
	domain "linecheck/internal/domain/lead"
)

// SQLiteStore implements Store using SQLite. Leads are append-only.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new lead store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns all leads, newest first.
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Lead, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, restaurant_name, location_count, message, source, created_at
		FROM lead ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Lead{}
	for rows.Next() {
		var l domain.Lead
		var createdAt sql.NullString
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.RestaurantName, &l.LocationCount, &l.Message, &l.Source, &createdAt); err != nil {
			return nil, err
		}
		l.CreatedAt = storage.ParseTime(createdAt)
		out = append(out, l)
	}
	return out, rows.Err()
}

// Save inserts a Lead.
// PRE: entity passes Validate
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Lead) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lead (id, name, email, restaurant_name, location_count, message, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entity.ID,
		entity.Name,
		entity.Email,
		entity.RestaurantName,
		entity.LocationCount,
		entity.Message,
		entity.Source,
		storage.FormatTime(entity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save lead: %w", err)
	}
	return nil
}
