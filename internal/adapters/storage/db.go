package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// migrations is the ordered list of schema steps. Version n is applied
// when the stored schema_version is below n. Append only; never edit a
// shipped step.
var migrations = []string{
	// v1: initial schema
	`
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		is_trial INTEGER NOT NULL DEFAULT 0,
		checks_completed INTEGER NOT NULL DEFAULT 0,
		videos_watched INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS activation_token (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		used INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		FOREIGN KEY (account_id) REFERENCES account(id)
	);

	CREATE TABLE IF NOT EXISTS location (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		timezone TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS check_template (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS check_template_item (
		id TEXT PRIMARY KEY,
		template_id TEXT NOT NULL,
		prompt TEXT NOT NULL,
		position INTEGER NOT NULL,
		requires_photo INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (template_id) REFERENCES check_template(id)
	);

	CREATE TABLE IF NOT EXISTS check_run (
		id TEXT PRIMARY KEY,
		template_id TEXT NOT NULL,
		location_id TEXT NOT NULL,
		assignee_email TEXT NOT NULL DEFAULT '',
		assignee_phone TEXT NOT NULL DEFAULT '',
		channel TEXT NOT NULL,
		status TEXT NOT NULL,
		scheduled_at TEXT,
		sent_at TEXT,
		started_at TEXT,
		completed_at TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (template_id) REFERENCES check_template(id),
		FOREIGN KEY (location_id) REFERENCES location(id)
	);

	CREATE TABLE IF NOT EXISTS magic_token (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		used INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES check_run(id)
	);

	CREATE TABLE IF NOT EXISTS check_response (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		result TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		submitted_at TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES check_run(id)
	);

	CREATE TABLE IF NOT EXISTS pulse_survey (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		cadence TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		min_respondents INTEGER NOT NULL DEFAULT 5,
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL,
		closed_at TEXT
	);

	CREATE TABLE IF NOT EXISTS pulse_response (
		id TEXT PRIMARY KEY,
		survey_id TEXT NOT NULL,
		score INTEGER NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		submitted_at TEXT NOT NULL,
		FOREIGN KEY (survey_id) REFERENCES pulse_survey(id)
	);

	CREATE TABLE IF NOT EXISTS review (
		id TEXT PRIMARY KEY,
		location_id TEXT NOT NULL,
		source TEXT NOT NULL,
		rating INTEGER NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		reviewed_at TEXT NOT NULL,
		analyzed INTEGER NOT NULL DEFAULT 0,
		sentiment REAL NOT NULL DEFAULT 0,
		themes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		FOREIGN KEY (location_id) REFERENCES location(id)
	);

	CREATE TABLE IF NOT EXISTS subscription (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL UNIQUE,
		plan TEXT NOT NULL,
		status TEXT NOT NULL,
		trial_ends_at TEXT,
		current_period_end TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (account_id) REFERENCES account(id)
	);

	CREATE TABLE IF NOT EXISTS blog_post (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL,
		author_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TEXT NOT NULL,
		published_at TEXT
	);

	CREATE TABLE IF NOT EXISTS lead (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL,
		restaurant_name TEXT NOT NULL DEFAULT '',
		location_count INTEGER NOT NULL DEFAULT 0,
		message TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS delivery (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		channel TEXT NOT NULL,
		recipient TEXT NOT NULL,
		link TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT,
		created_at TEXT NOT NULL,
		external_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (run_id) REFERENCES check_run(id)
	);
	`,
	// v2: lookup indexes for the hot read paths
	`
	CREATE INDEX IF NOT EXISTS idx_check_run_location ON check_run(location_id, status);
	CREATE INDEX IF NOT EXISTS idx_check_response_run ON check_response(run_id);
	CREATE INDEX IF NOT EXISTS idx_pulse_response_survey ON pulse_response(survey_id);
	CREATE INDEX IF NOT EXISTS idx_review_location ON review(location_id, reviewed_at);
	CREATE INDEX IF NOT EXISTS idx_delivery_status ON delivery(status, last_attempted_at);
	`,
}

// LatestSchemaVersion returns the schema version this binary expects.
func LatestSchemaVersion() int {
	return len(migrations)
}

// MigrateDB applies any outstanding schema migrations.
// PRE: db is a valid, pinged connection
// POST: schema_version equals LatestSchemaVersion()
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&version); err != nil {
		return fmt.Errorf("read schema_version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}
	return nil
}
