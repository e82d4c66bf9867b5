package account

import (
	"context"
	"database/sql"
	"fmt"

	"linecheck/internal/adapters/storage"
	domain "linecheck/internal/domain/account"
)

const accountColumns = `id, email, name, password_hash, role, status, is_trial,
	checks_completed, videos_watched, created_at, failed_logins, locked_until`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new Account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM account WHERE id = ?`, id)
	entity, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

// GetByEmail retrieves an Account by email.
// PRE: email is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM account WHERE email = ?`, email)
	entity, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

// List retrieves all Accounts ordered by email.
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM account ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Save persists an Account.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	if err := entity.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO account (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email=excluded.email,
			name=excluded.name,
			password_hash=excluded.password_hash,
			role=excluded.role,
			status=excluded.status,
			is_trial=excluded.is_trial,
			checks_completed=excluded.checks_completed,
			videos_watched=excluded.videos_watched,
			failed_logins=excluded.failed_logins,
			locked_until=excluded.locked_until
	`,
		entity.ID,
		entity.Email,
		entity.Name,
		entity.PasswordHash,
		entity.Role,
		entity.Status,
		storage.BoolToInt(entity.IsTrial),
		entity.ChecksCompleted,
		entity.VideosWatched,
		storage.FormatTime(entity.CreatedAt),
		entity.FailedLogins,
		storage.FormatTime(entity.LockedUntil),
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	return tx.Commit()
}

// TokenSQLiteStore implements TokenStore using SQLite.
type TokenSQLiteStore struct {
	db storage.SQLDB
}

// NewTokenSQLiteStore creates a new activation token store.
func NewTokenSQLiteStore(db storage.SQLDB) *TokenSQLiteStore {
	return &TokenSQLiteStore{db: db}
}

// GetByToken retrieves an activation token by its opaque value.
// PRE: token is non-empty
// POST: Returns the token or an error if not found
func (s *TokenSQLiteStore) GetByToken(ctx context.Context, token string) (domain.ActivationToken, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, token, expires_at, used, created_at
		FROM activation_token WHERE token = ?
	`, token)

	var t domain.ActivationToken
	var expiresAt, createdAt sql.NullString
	var used int
	if err := row.Scan(&t.ID, &t.AccountID, &t.Token, &expiresAt, &used, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.ActivationToken{}, fmt.Errorf("activation token not found: %w", err)
		}
		return domain.ActivationToken{}, err
	}
	t.ExpiresAt = storage.ParseTime(expiresAt)
	t.CreatedAt = storage.ParseTime(createdAt)
	t.Used = used != 0
	return t, nil
}

// Save persists an activation token (insert or update).
// POST: token row upserted
func (s *TokenSQLiteStore) Save(ctx context.Context, entity domain.ActivationToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activation_token (id, account_id, token, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET used=excluded.used
	`,
		entity.ID,
		entity.AccountID,
		entity.Token,
		storage.FormatTime(entity.ExpiresAt),
		storage.BoolToInt(entity.Used),
		storage.FormatTime(entity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save activation_token: %w", err)
	}
	return nil
}

func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var a domain.Account
	var isTrial int
	var createdAt, lockedUntil sql.NullString
	if err := scan(
		&a.ID,
		&a.Email,
		&a.Name,
		&a.PasswordHash,
		&a.Role,
		&a.Status,
		&isTrial,
		&a.ChecksCompleted,
		&a.VideosWatched,
		&createdAt,
		&a.FailedLogins,
		&lockedUntil,
	); err != nil {
		return domain.Account{}, err
	}
	a.IsTrial = isTrial != 0
	a.CreatedAt = storage.ParseTime(createdAt)
	a.LockedUntil = storage.ParseTime(lockedUntil)
	return a, nil
}
