package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smallnest/hypernodes/tracking"
)

// SqliteRunStore implements tracking.Store using SQLite
type SqliteRunStore struct {
	db        *sql.DB
	tableName string
}

// SqliteOptions configuration for SQLite connection
type SqliteOptions struct {
	Path      string
	TableName string // Default "runs"
}

// NewSqliteRunStore opens the database and creates the runs table if needed
func NewSqliteRunStore(opts SqliteOptions) (*SqliteRunStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "runs"
	}

	store := &SqliteRunStore{
		db:        db,
		tableName: tableName,
	}

	if err := store.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// InitSchema creates the necessary table if it doesn't exist
func (s *SqliteRunStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			experiment TEXT NOT NULL,
			node TEXT NOT NULL,
			final_vars TEXT NOT NULL,
			params TEXT NOT NULL,
			metrics TEXT NOT NULL,
			outputs TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_%s_experiment ON %s (experiment);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SqliteRunStore) Close() error {
	return s.db.Close()
}

// Save stores a run
func (s *SqliteRunStore) Save(ctx context.Context, run *tracking.Run) error {
	finalVars, err := json.Marshal(run.FinalVars)
	if err != nil {
		return fmt.Errorf("failed to marshal final vars: %w", err)
	}
	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	metrics, err := json.Marshal(run.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	outputs, err := json.Marshal(run.Outputs)
	if err != nil {
		return fmt.Errorf("failed to marshal outputs: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, experiment, node, final_vars, params, metrics, outputs, status, error, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			experiment = excluded.experiment,
			node = excluded.node,
			final_vars = excluded.final_vars,
			params = excluded.params,
			metrics = excluded.metrics,
			outputs = excluded.outputs,
			status = excluded.status,
			error = excluded.error,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		run.Experiment,
		run.Node,
		string(finalVars),
		string(params),
		string(metrics),
		string(outputs),
		string(run.Status),
		run.Error,
		run.StartedAt,
		run.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

const selectColumns = "id, experiment, node, final_vars, params, metrics, outputs, status, error, started_at, ended_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*tracking.Run, error) {
	var (
		r                                   tracking.Run
		status                              string
		errText                             sql.NullString
		endedAt                             sql.NullTime
		finalVars, params, metrics, outputs string
	)
	if err := row.Scan(&r.ID, &r.Experiment, &r.Node, &finalVars, &params, &metrics, &outputs, &status, &errText, &r.StartedAt, &endedAt); err != nil {
		return nil, err
	}
	r.Status = tracking.Status(status)
	r.Error = errText.String
	if endedAt.Valid {
		r.EndedAt = endedAt.Time
	}

	for _, f := range []struct {
		name string
		src  string
		dst  any
	}{
		{"final vars", finalVars, &r.FinalVars},
		{"params", params, &r.Params},
		{"metrics", metrics, &r.Metrics},
		{"outputs", outputs, &r.Outputs},
	} {
		if err := json.Unmarshal([]byte(f.src), f.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", f.name, err)
		}
	}
	return &r, nil
}

// Load retrieves a run by id
func (s *SqliteRunStore) Load(ctx context.Context, id string) (*tracking.Run, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", selectColumns, s.tableName)

	r, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", tracking.ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return r, nil
}

// List returns the runs of an experiment ordered by start time
func (s *SqliteRunStore) List(ctx context.Context, experiment string) ([]*tracking.Run, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE experiment = ? ORDER BY started_at ASC", selectColumns, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, experiment)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []*tracking.Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return runs, nil
}

// Delete removes a run
func (s *SqliteRunStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// Clear removes all runs of an experiment
func (s *SqliteRunStore) Clear(ctx context.Context, experiment string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE experiment = ?", s.tableName)
	if _, err := s.db.ExecContext(ctx, query, experiment); err != nil {
		return fmt.Errorf("failed to clear runs: %w", err)
	}
	return nil
}
