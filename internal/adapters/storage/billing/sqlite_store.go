package billing

import (
	"context"
	"database/sql"
	"fmt"

	"linecheck/internal/adapters/storage"
	domain "linecheck/internal/domain/billing"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new subscription store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByAccountID retrieves the subscription for an account.
// PRE: accountID is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByAccountID(ctx context.Context, accountID string) (domain.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, plan, status, trial_ends_at, current_period_end, created_at
		FROM subscription WHERE account_id = ?
	`, accountID)

	var sub domain.Subscription
	var trialEndsAt, periodEnd, createdAt sql.NullString
	if err := row.Scan(&sub.ID, &sub.AccountID, &sub.Plan, &sub.Status, &trialEndsAt, &periodEnd, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Subscription{}, fmt.Errorf("subscription not found: %w", err)
		}
		return domain.Subscription{}, err
	}
	sub.TrialEndsAt = storage.ParseTime(trialEndsAt)
	sub.CurrentPeriodEnd = storage.ParseTime(periodEnd)
	sub.CreatedAt = storage.ParseTime(createdAt)
	return sub, nil
}

// Save upserts a Subscription; one row per account.
// PRE: entity passes Validate
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Subscription) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscription (id, account_id, plan, status, trial_ends_at, current_period_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			plan=excluded.plan,
			status=excluded.status,
			trial_ends_at=excluded.trial_ends_at,
			current_period_end=excluded.current_period_end
	`,
		entity.ID,
		entity.AccountID,
		entity.Plan,
		entity.Status,
		storage.FormatTime(entity.TrialEndsAt),
		storage.FormatTime(entity.CurrentPeriodEnd),
		storage.FormatTime(entity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}
