package distribution

import (
	"context"
	"database/sql"
	"fmt"

	"linecheck/internal/adapters/storage"
	domain "linecheck/internal/domain/distribution"
)

const deliveryColumns = `id, run_id, channel, recipient, link, status, attempts,
	max_attempts, last_attempted_at, created_at, external_id, error_message`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new delivery store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Delivery by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Delivery, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+deliveryColumns+` FROM delivery WHERE id = ?`, id)
	entity, err := scanDelivery(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Delivery{}, fmt.Errorf("delivery not found: %w", err)
	}
	return entity, err
}

// ListPending returns deliveries awaiting a send attempt, oldest first.
// Deliveries that exhausted their attempts are excluded.
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) ListPending(ctx context.Context, limit int) ([]domain.Delivery, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+deliveryColumns+` FROM delivery
		WHERE status IN (?, ?, ?) AND attempts < max_attempts
		ORDER BY created_at LIMIT ?
	`, domain.StatusPending, domain.StatusRetrying, domain.StatusFailed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDeliveries(rows)
}

// ListRecentFailures returns failed and abandoned deliveries, most
// recent attempt first. Used by the admin delivery dashboard.
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) ListRecentFailures(ctx context.Context, limit int) ([]domain.Delivery, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+deliveryColumns+` FROM delivery
		WHERE status IN (?, ?)
		ORDER BY last_attempted_at DESC LIMIT ?
	`, domain.StatusFailed, domain.StatusAbandoned, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDeliveries(rows)
}

// Save upserts a Delivery.
// PRE: entity passes Validate
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Delivery) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO delivery (`+deliveryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			attempts=excluded.attempts,
			last_attempted_at=excluded.last_attempted_at,
			external_id=excluded.external_id,
			error_message=excluded.error_message
	`,
		entity.ID,
		entity.RunID,
		entity.Channel,
		entity.Recipient,
		entity.Link,
		entity.Status,
		entity.Attempts,
		entity.MaxAttempts,
		storage.FormatTime(entity.LastAttemptedAt),
		storage.FormatTime(entity.CreatedAt),
		entity.ExternalID,
		entity.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save delivery: %w", err)
	}
	return nil
}

func scanDelivery(scan func(dest ...any) error) (domain.Delivery, error) {
	var d domain.Delivery
	var lastAttemptedAt, createdAt sql.NullString
	if err := scan(
		&d.ID,
		&d.RunID,
		&d.Channel,
		&d.Recipient,
		&d.Link,
		&d.Status,
		&d.Attempts,
		&d.MaxAttempts,
		&lastAttemptedAt,
		&createdAt,
		&d.ExternalID,
		&d.ErrorMessage,
	); err != nil {
		return domain.Delivery{}, err
	}
	d.LastAttemptedAt = storage.ParseTime(lastAttemptedAt)
	d.CreatedAt = storage.ParseTime(createdAt)
	return d, nil
}

func collectDeliveries(rows *sql.Rows) ([]domain.Delivery, error) {
	out := []domain.Delivery{}
	for rows.Next() {
		d, err := scanDelivery(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
