package location

import (
	"context"
	"database/sql"
	"fmt"

	"linecheck/internal/adapters/storage"
	domain "linecheck/internal/domain/location"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new Location store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Location by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Location, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, timezone, status, created_at
		FROM location WHERE id = ?
	`, id)
	entity, err := scanLocation(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Location{}, fmt.Errorf("location not found: %w", err)
	}
	return entity, err
}

// List returns all locations ordered by name.
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, timezone, status, created_at
		FROM location ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Location{}
	for rows.Next() {
		l, err := scanLocation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CountActive returns the number of active locations.
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) CountActive(ctx context.Context) (int, error) {
	var n int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM location WHERE status = ?`, domain.StatusActive)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Save upserts a Location.
// PRE: entity passes Validate
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Location) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO location (id, name, address, timezone, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			address=excluded.address,
			timezone=excluded.timezone,
			status=excluded.status
	`,
		entity.ID,
		entity.Name,
		entity.Address,
		entity.Timezone,
		entity.Status,
		storage.FormatTime(entity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save location: %w", err)
	}
	return nil
}

func scanLocation(scan func(dest ...any) error) (domain.Location, error) {
	var l domain.Location
	var createdAt sql.NullString
	if err := scan(&l.ID, &l.Name, &l.Address, &l.Timezone, &l.Status, &createdAt); err != nil {
		return domain.Location{}, err
	}
	l.CreatedAt = storage.ParseTime(createdAt)
	return l, nil
}
