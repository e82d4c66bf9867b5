package pulsesurvey

import (
	"context"
	"database/sql"
	"fmt"

	"linecheck/internal/adapters/storage"
	domain "linecheck/internal/domain/pulsesurvey"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new pulse survey store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Survey by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Survey, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, question, cadence, status, min_respondents, created_by, created_at, closed_at
		FROM pulse_survey WHERE id = ?
	`, id)
	entity, err := scanSurvey(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Survey{}, fmt.Errorf("pulse survey not found: %w", err)
	}
	return entity, err
}

// List returns all surveys, newest first.
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Survey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, cadence, status, min_respondents, created_by, created_at, closed_at
		FROM pulse_survey ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Survey{}
	for rows.Next() {
		sv, err := scanSurvey(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

// Save upserts a Survey.
// PRE: entity passes Validate
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Survey) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pulse_survey (id, question, cadence, status, min_respondents, created_by, created_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			question=excluded.question,
			cadence=excluded.cadence,
			status=excluded.status,
			min_respondents=excluded.min_respondents,
			closed_at=excluded.closed_at
	`,
		entity.ID,
		entity.Question,
		entity.Cadence,
		entity.Status,
		entity.MinRespondents,
		entity.CreatedBy,
		storage.FormatTime(entity.CreatedAt),
		storage.FormatTime(entity.ClosedAt),
	)
	if err != nil {
		return fmt.Errorf("save pulse_survey: %w", err)
	}
	return nil
}

// Delete removes a survey and its responses.
// PRE: id is non-empty
// POST: Survey and all its responses are removed atomically
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pulse_response WHERE survey_id = ?`, id); err != nil {
		return fmt.Errorf("delete pulse responses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pulse_survey WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete pulse survey: %w", err)
	}
	return tx.Commit()
}

// ResponseSQLiteStore implements ResponseStore using SQLite.
type ResponseSQLiteStore struct {
	db storage.SQLDB
}

// NewResponseSQLiteStore creates a new pulse response store.
func NewResponseSQLiteStore(db storage.SQLDB) *ResponseSQLiteStore {
	return &ResponseSQLiteStore{db: db}
}

// ListBySurvey returns all responses for a survey. Responses carry no
// respondent identity by design.
// INVARIANT: Store state is not mutated
func (s *ResponseSQLiteStore) ListBySurvey(ctx context.Context, surveyID string) ([]domain.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_id, score, comment, submitted_at
		FROM pulse_response WHERE survey_id = ? ORDER BY submitted_at
	`, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Response{}
	for rows.Next() {
		var r domain.Response
		var submittedAt sql.NullString
		if err := rows.Scan(&r.ID, &r.SurveyID, &r.Score, &r.Comment, &submittedAt); err != nil {
			return nil, err
		}
		r.SubmittedAt = storage.ParseTime(submittedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountBySurvey returns the respondent count for a survey.
// INVARIANT: Store state is not mutated
func (s *ResponseSQLiteStore) CountBySurvey(ctx context.Context, surveyID string) (int, error) {
	var n int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pulse_response WHERE survey_id = ?`, surveyID)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Save inserts a Response. Responses are append-only.
// PRE: entity passes Validate
func (s *ResponseSQLiteStore) Save(ctx context.Context, entity domain.Response) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pulse_response (id, survey_id, score, comment, submitted_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		entity.ID,
		entity.SurveyID,
		entity.Score,
		entity.Comment,
		storage.FormatTime(entity.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("save pulse_response: %w", err)
	}
	return nil
}

func scanSurvey(scan func(dest ...any) error) (domain.Survey, error) {
	var sv domain.Survey
	var createdAt, closedAt sql.NullString
	if err := scan(
		&sv.ID,
		&sv.Question,
		&sv.Cadence,
		&sv.Status,
		&sv.MinRespondents,
		&sv.CreatedBy,
		&createdAt,
		&closedAt,
	); err != nil {
		return domain.Survey{}, err
	}
	sv.CreatedAt = storage.ParseTime(createdAt)
	sv.ClosedAt = storage.ParseTime(closedAt)
	return sv, nil
}
