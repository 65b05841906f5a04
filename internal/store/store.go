package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xkilldash9x/courier-cli/api/schemas"
	"go.uber.org/zap"
)

// DBPool abstracts pgxpool.Pool so the ledger can be mocked in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS courier_runs (
    id          TEXT PRIMARY KEY,
    rehearsal   BOOLEAN NOT NULL DEFAULT FALSE,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ,
    found       INTEGER NOT NULL DEFAULT 0,
    total       INTEGER NOT NULL DEFAULT 0,
    succeeded   INTEGER NOT NULL DEFAULT 0,
    failed      INTEGER NOT NULL DEFAULT 0,
    skipped     INTEGER NOT NULL DEFAULT 0,
    aborted     TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS courier_tasks (
    id            TEXT PRIMARY KEY,
    run_id        TEXT NOT NULL REFERENCES courier_runs(id),
    document      TEXT NOT NULL,
    identifier    TEXT NOT NULL,
    status        TEXT NOT NULL,
    kind          TEXT NOT NULL DEFAULT '',
    reason        TEXT NOT NULL DEFAULT '',
    state         TEXT NOT NULL,
    reinitialized BOOLEAN NOT NULL DEFAULT FALSE,
    started_at    TIMESTAMPTZ NOT NULL,
    finished_at   TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS courier_run_errors (
    run_id     TEXT NOT NULL REFERENCES courier_runs(id),
    position   INTEGER NOT NULL,
    document   TEXT NOT NULL,
    identifier TEXT NOT NULL DEFAULT '',
    kind       TEXT NOT NULL DEFAULT '',
    message    TEXT NOT NULL,
    PRIMARY KEY (run_id, position)
);`

const (
	sqlInsertRun = `
        INSERT INTO courier_runs (id, rehearsal, started_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (id) DO NOTHING;`

	sqlInsertTask = `
        INSERT INTO courier_tasks (id, run_id, document, identifier, status, kind, reason, state, reinitialized, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (id) DO NOTHING;`

	sqlFinishRun = `
        UPDATE courier_runs
        SET finished_at = $2, found = $3, total = $4, succeeded = $5, failed = $6, skipped = $7, aborted = $8
        WHERE id = $1;`

	sqlInsertRunError = `
        INSERT INTO courier_run_errors (run_id, position, document, identifier, kind, message)
        VALUES ($1, $2, $3, $4, $5, $6);`
)

// Ledger records runs and task outcomes in PostgreSQL.
type Ledger struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a ledger and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Ledger, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Ledger{pool: pool, log: logger.Named("store")}, nil
}

// EnsureSchema creates the ledger tables when missing.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	if _, err := l.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create ledger schema: %w", err)
	}
	return nil
}

// StartRun inserts the run row.
func (l *Ledger) StartRun(ctx context.Context, runID string, startedAt time.Time, rehearsal bool) error {
	if _, err := l.pool.Exec(ctx, sqlInsertRun, runID, rehearsal, startedAt.UTC()); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", runID, err)
	}
	return nil
}

// RecordOutcome inserts one task outcome.
func (l *Ledger) RecordOutcome(ctx context.Context, runID string, o schemas.TaskOutcome) error {
	_, err := l.pool.Exec(ctx, sqlInsertTask,
		o.Task.ID, runID, o.Task.DocumentName(), o.Task.Identifier,
		string(o.Status), string(o.Kind), o.Reason, o.State.String(), o.Reinitialized,
		o.StartedAt.UTC(), o.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task %s: %w", o.Task.ID, err)
	}
	return nil
}

// FinishRun stores the run's totals and error list in one transaction.
func (l *Ledger) FinishRun(ctx context.Context, r *schemas.RunReport) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			l.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if _, err := tx.Exec(ctx, sqlFinishRun,
		r.RunID, r.FinishedAt.UTC(), r.Found, r.Total, r.Succeeded, r.Failed, r.Skipped, r.Aborted,
	); err != nil {
		return fmt.Errorf("failed to update run %s: %w", r.RunID, err)
	}
	for i, e := range r.Errors {
		if _, err := tx.Exec(ctx, sqlInsertRunError,
			r.RunID, i+1, e.Document, e.Identifier, string(e.Kind), e.Message,
		); err != nil {
			return fmt.Errorf("failed to insert run error %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
