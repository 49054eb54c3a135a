package postgresql_test

import (
	"context"
	"fmt"
	"os"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/database"
)

// schema mirrors the production tables the repositories touch
var schema = []string{
	`CREATE TABLE IF NOT EXISTS atendimentos (
		id BIGSERIAL PRIMARY KEY,
		id_atendimento TEXT,
		atendente TEXT,
		data TEXT,
		tempo_total NUMERIC,
		resolvido BOOLEAN,
		empresa TEXT,
		chave TEXT,
		tipo TEXT,
		status TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS attendants (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL UNIQUE,
		active BOOLEAN NOT NULL DEFAULT true,
		photo_url TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS modules (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL UNIQUE,
		active BOOLEAN NOT NULL DEFAULT true
	)`,
	`CREATE TABLE IF NOT EXISTS feedbacks (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		attendant TEXT NOT NULL,
		general_rating INT,
		clarity_rating INT,
		problem_resolved TEXT,
		module TEXT,
		comments TEXT,
		attendance_id TEXT,
		company TEXT,
		company_key TEXT,
		requester TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS feedbacks_attendance_id_key ON feedbacks (attendance_id)`,
	`CREATE TABLE IF NOT EXISTS attendance_summary (
		attendant TEXT NOT NULL,
		period_type TEXT NOT NULL,
		period_start DATE NOT NULL,
		period_end DATE NOT NULL,
		total_count INT NOT NULL,
		total_duration_minutes DOUBLE PRECISION NOT NULL,
		average_duration_minutes DOUBLE PRECISION NOT NULL,
		finalized_count INT NOT NULL,
		in_progress_count INT NOT NULL,
		pending_count INT NOT NULL,
		resolution_rate_percent DOUBLE PRECISION NOT NULL,
		efficiency_index DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (attendant, period_type, period_start, period_end)
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_summary_refresh (
		run_id UUID NOT NULL,
		period_type TEXT NOT NULL,
		period_start DATE NOT NULL,
		period_end DATE NOT NULL,
		row_count INT NOT NULL,
		refreshed_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (run_id, period_type)
	)`,
}

// TestDatabaseSetup holds the connection shared by repository tests
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and creates the schema.
// It returns an error when no database is reachable so callers can skip.
func NewTestDatabase(ctx context.Context) (*TestDatabaseSetup, error) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{MaxConns: 4, MinConns: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &TestDatabaseSetup{DB: db}, nil
}

// TruncateAllTables removes every row from the test tables
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"atendimentos",
		"attendants",
		"modules",
		"feedbacks",
		"attendance_summary",
		"attendance_summary_refresh",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
