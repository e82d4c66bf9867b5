package microcheck

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"linecheck/internal/adapters/storage"
	domain "linecheck/internal/domain/microcheck"
)

const runColumns = `id, template_id, location_id, assignee_email, assignee_phone,
	channel, status, scheduled_at, sent_at, started_at, completed_at, created_at`

// TemplateSQLiteStore implements TemplateStore using SQLite.
type TemplateSQLiteStore struct {
	db storage.SQLDB
}

// NewTemplateSQLiteStore creates a new template store.
func NewTemplateSQLiteStore(db storage.SQLDB) *TemplateSQLiteStore {
	return &TemplateSQLiteStore{db: db}
}

// GetByID retrieves a Template with its items, ordered by position.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *TemplateSQLiteStore) GetByID(ctx context.Context, id string) (domain.Template, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_by, created_at FROM check_template WHERE id = ?
	`, id)

	var t domain.Template
	var createdAt sql.NullString
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedBy, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Template{}, fmt.Errorf("check template not found: %w", err)
		}
		return domain.Template{}, err
	}
	t.CreatedAt = storage.ParseTime(createdAt)

	items, err := s.itemsFor(ctx, t.ID)
	if err != nil {
		return domain.Template{}, err
	}
	t.Items = items
	return t, nil
}

// List returns all templates with their items.
// INVARIANT: Store state is not mutated
func (s *TemplateSQLiteStore) List(ctx context.Context) ([]domain.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_by, created_at FROM check_template ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Template{}
	for rows.Next() {
		var t domain.Template
		var createdAt sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedBy, &createdAt); err != nil {
			return nil, err
		}
		t.CreatedAt = storage.ParseTime(createdAt)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := s.itemsFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

// Save upserts a Template and replaces its items.
// PRE: entity passes Validate
// POST: Template and items persisted atomically
func (s *TemplateSQLiteStore) Save(ctx context.Context, entity domain.Template) error {
	if err := entity.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO check_template (id, name, created_by, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name
	`, entity.ID, entity.Name, entity.CreatedBy, storage.FormatTime(entity.CreatedAt))
	if err != nil {
		return fmt.Errorf("save check_template: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM check_template_item WHERE template_id = ?`, entity.ID); err != nil {
		return fmt.Errorf("clear template items: %w", err)
	}
	for _, item := range entity.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO check_template_item (id, template_id, prompt, position, requires_photo)
			VALUES (?, ?, ?, ?, ?)
		`, item.ID, entity.ID, item.Prompt, item.Position, storage.BoolToInt(item.RequiresPhoto))
		if err != nil {
			return fmt.Errorf("save template item: %w", err)
		}
	}

	return tx.Commit()
}

func (s *TemplateSQLiteStore) itemsFor(ctx context.Context, templateID string) ([]domain.TemplateItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prompt, position, requires_photo
		FROM check_template_item WHERE template_id = ? ORDER BY position
	`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.TemplateItem{}
	for rows.Next() {
		var item domain.TemplateItem
		var requiresPhoto int
		if err := rows.Scan(&item.ID, &item.Prompt, &item.Position, &requiresPhoto); err != nil {
			return nil, err
		}
		item.RequiresPhoto = requiresPhoto != 0
		items = append(items, item)
	}
	return items, rows.Err()
}

// RunSQLiteStore implements RunStore using SQLite.
type RunSQLiteStore struct {
	db storage.SQLDB
}

// NewRunSQLiteStore creates a new run store.
func NewRunSQLiteStore(db storage.SQLDB) *RunSQLiteStore {
	return &RunSQLiteStore{db: db}
}

// GetByID retrieves a Run by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *RunSQLiteStore) GetByID(ctx context.Context, id string) (domain.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM check_run WHERE id = ?`, id)
	entity, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Run{}, fmt.Errorf("check run not found: %w", err)
	}
	return entity, err
}

// ListByLocation returns the most recent runs for a location.
// INVARIANT: Store state is not mutated
func (s *RunSQLiteStore) ListByLocation(ctx context.Context, locationID string, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM check_run
		WHERE location_id = ? ORDER BY created_at DESC LIMIT ?
	`, locationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRuns(rows)
}

// ListByStatus returns runs in a given status, oldest first.
// INVARIANT: Store state is not mutated
func (s *RunSQLiteStore) ListByStatus(ctx context.Context, status string, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM check_run
		WHERE status = ? ORDER BY created_at LIMIT ?
	`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRuns(rows)
}

// CountCompletedSince returns the number of runs completed at or after
// the given instant.
// INVARIANT: Store state is not mutated
func (s *RunSQLiteStore) CountCompletedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM check_run WHERE status = ? AND completed_at >= ?
	`, domain.RunStatusCompleted, storage.FormatTime(since))
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Save upserts a Run.
// PRE: entity passes Validate
// POST: Entity is persisted (insert or update)
func (s *RunSQLiteStore) Save(ctx context.Context, entity domain.Run) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO check_run (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			sent_at=excluded.sent_at,
			started_at=excluded.started_at,
			completed_at=excluded.completed_at
	`,
		entity.ID,
		entity.TemplateID,
		entity.LocationID,
		entity.AssigneeEmail,
		entity.AssigneePhone,
		entity.Channel,
		entity.Status,
		storage.FormatTime(entity.ScheduledAt),
		storage.FormatTime(entity.SentAt),
		storage.FormatTime(entity.StartedAt),
		storage.FormatTime(entity.CompletedAt),
		storage.FormatTime(entity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save check_run: %w", err)
	}
	return nil
}

// TokenSQLiteStore implements TokenStore using SQLite.
type TokenSQLiteStore struct {
	db storage.SQLDB
}

// NewTokenSQLiteStore creates a new magic token store.
func NewTokenSQLiteStore(db storage.SQLDB) *TokenSQLiteStore {
	return &TokenSQLiteStore{db: db}
}

// GetByToken retrieves a magic token by its opaque value.
// PRE: token is non-empty
// POST: Returns the token or an error if not found
func (s *TokenSQLiteStore) GetByToken(ctx context.Context, token string) (domain.MagicToken, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, run_id, token, expires_at, used, created_at
		FROM magic_token WHERE token = ?
	`, token)

	var mt domain.MagicToken
	var expiresAt, createdAt sql.NullString
	var used int
	if err := row.Scan(&mt.ID, &mt.RunID, &mt.Token, &expiresAt, &used, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.MagicToken{}, fmt.Errorf("magic token not found: %w", err)
		}
		return domain.MagicToken{}, err
	}
	mt.ExpiresAt = storage.ParseTime(expiresAt)
	mt.CreatedAt = storage.ParseTime(createdAt)
	mt.Used = used != 0
	return mt, nil
}

// Save upserts a magic token.
// POST: token row upserted; only Used changes on update
func (s *TokenSQLiteStore) Save(ctx context.Context, entity domain.MagicToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO magic_token (id, run_id, token, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET used=excluded.used
	`,
		entity.ID,
		entity.RunID,
		entity.Token,
		storage.FormatTime(entity.ExpiresAt),
		storage.BoolToInt(entity.Used),
		storage.FormatTime(entity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save magic_token: %w", err)
	}
	return nil
}

// ResponseSQLiteStore implements ResponseStore using SQLite.
type ResponseSQLiteStore struct {
	db storage.SQLDB
}

// NewResponseSQLiteStore creates a new response store.
func NewResponseSQLiteStore(db storage.SQLDB) *ResponseSQLiteStore {
	return &ResponseSQLiteStore{db: db}
}

// ListByRun returns all item responses for a run.
// INVARIANT: Store state is not mutated
func (s *ResponseSQLiteStore) ListByRun(ctx context.Context, runID string) ([]domain.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, item_id, result, note, submitted_at
		FROM check_response WHERE run_id = ? ORDER BY submitted_at
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Response{}
	for rows.Next() {
		var r domain.Response
		var submittedAt sql.NullString
		if err := rows.Scan(&r.ID, &r.RunID, &r.ItemID, &r.Result, &r.Note, &submittedAt); err != nil {
			return nil, err
		}
		r.SubmittedAt = storage.ParseTime(submittedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Save upserts a Response; resubmitting an item overwrites the answer.
// PRE: entity passes Validate
func (s *ResponseSQLiteStore) Save(ctx context.Context, entity domain.Response) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO check_response (id, run_id, item_id, result, note, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			result=excluded.result,
			note=excluded.note,
			submitted_at=excluded.submitted_at
	`,
		entity.ID,
		entity.RunID,
		entity.ItemID,
		entity.Result,
		entity.Note,
		storage.FormatTime(entity.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("save check_response: %w", err)
	}
	return nil
}

func scanRun(scan func(dest ...any) error) (domain.Run, error) {
	var r domain.Run
	var scheduledAt, sentAt, startedAt, completedAt, createdAt sql.NullString
	if err := scan(
		&r.ID,
		&r.TemplateID,
		&r.LocationID,
		&r.AssigneeEmail,
		&r.AssigneePhone,
		&r.Channel,
		&r.Status,
		&scheduledAt,
		&sentAt,
		&startedAt,
		&completedAt,
		&createdAt,
	); err != nil {
		return domain.Run{}, err
	}
	r.ScheduledAt = storage.ParseTime(scheduledAt)
	r.SentAt = storage.ParseTime(sentAt)
	r.StartedAt = storage.ParseTime(startedAt)
	r.CompletedAt = storage.ParseTime(completedAt)
	r.CreatedAt = storage.ParseTime(createdAt)
	return r, nil
}

func collectRuns(rows *sql.Rows) ([]domain.Run, error) {
	out := []domain.Run{}
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
