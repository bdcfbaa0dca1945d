package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jbctechsolutions/cmdrunner/internal/application/ports"
	"github.com/jbctechsolutions/cmdrunner/internal/domain/history"
)

// HistoryRepository implements ports.HistoryRepositoryPort using SQLite.
type HistoryRepository struct {
	conn *Connection
}

// NewHistoryRepository creates a new HistoryRepository over an open connection.
// The repository takes ownership of the connection; Close releases it.
func NewHistoryRepository(conn *Connection) ports.HistoryRepositoryPort {
	return &HistoryRepository{conn: conn}
}

// SaveRun persists a run record to the database.
func (r *HistoryRepository) SaveRun(ctx context.Context, run *history.Run) error {
	if run == nil {
		return fmt.Errorf("run record is nil")
	}
	if err := run.Validate(); err != nil {
		return err
	}

	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	stepsJSON, err := json.Marshal(run.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}

	extraArgsJSON, err := json.Marshal(run.ExtraArgs)
	if err != nil {
		return fmt.Errorf("failed to marshal extra args: %w", err)
	}

	query := `
		INSERT INTO runs (
			id, command, manifest_path, scope, steps, extra_args,
			exit_code, duration_ns, started_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.ExecContext(ctx, query,
		run.ID,
		run.Command,
		run.ManifestPath,
		run.Scope,
		string(stepsJSON),
		string(extraArgsJSON),
		run.ExitCode,
		run.Duration.Nanoseconds(),
		run.StartedAt.UTC().Format(time.RFC3339),
	)

	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}

	return nil
}

// GetRuns retrieves run records matching the filter, most recent first.
func (r *HistoryRepository) GetRuns(ctx context.Context, filter history.Filter) ([]history.Run, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, command, manifest_path, scope, steps, extra_args,
			exit_code, duration_ns, started_at
		FROM runs
		WHERE 1=1
	`
	args := make([]any, 0)

	if filter.Command != "" {
		query += " AND command = ?"
		args = append(args, filter.Command)
	}

	// rowid breaks ties between runs that started within the same second
	query += " ORDER BY started_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []history.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run records: %w", err)
	}

	return runs, nil
}

// Prune deletes the oldest records beyond keep entries. A keep of 0 clears
// the whole history.
func (r *HistoryRepository) Prune(ctx context.Context, keep int) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	if keep <= 0 {
		if _, err := db.ExecContext(ctx, "DELETE FROM runs"); err != nil {
			return fmt.Errorf("failed to clear run history: %w", err)
		}
		return nil
	}

	query := `
		DELETE FROM runs
		WHERE rowid NOT IN (
			SELECT rowid FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
		)
	`
	if _, err := db.ExecContext(ctx, query, keep); err != nil {
		return fmt.Errorf("failed to prune run history: %w", err)
	}

	return nil
}

// Close releases the underlying database connection.
func (r *HistoryRepository) Close() error {
	return r.conn.Close()
}

// scanRun reads one run record from the current row.
func scanRun(rows *sql.Rows) (*history.Run, error) {
	var run history.Run
	var stepsJSON, extraArgsJSON sql.NullString
	var durationNs int64
	var startedAt string

	err := rows.Scan(
		&run.ID,
		&run.Command,
		&run.ManifestPath,
		&run.Scope,
		&stepsJSON,
		&extraArgsJSON,
		&run.ExitCode,
		&durationNs,
		&startedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run record: %w", err)
	}

	run.Duration = time.Duration(durationNs)
	run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)

	if stepsJSON.Valid && stepsJSON.String != "" && stepsJSON.String != "null" {
		if err := json.Unmarshal([]byte(stepsJSON.String), &run.Steps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
		}
	}

	if extraArgsJSON.Valid && extraArgsJSON.String != "" && extraArgsJSON.String != "null" {
		if err := json.Unmarshal([]byte(extraArgsJSON.String), &run.ExtraArgs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extra args: %w", err)
		}
	}

	return &run, nil
}

// Ensure HistoryRepository implements HistoryRepositoryPort.
var _ ports.HistoryRepositoryPort = (*HistoryRepository)(nil)
