package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallnest/hypernodes/tracking"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresRunStore implements tracking.Store using PostgreSQL
type PostgresRunStore struct {
	pool      DBPool
	tableName string
}

// PostgresOptions configuration for Postgres connection
type PostgresOptions struct {
	ConnString string
	TableName  string // Default "runs"
}

// NewPostgresRunStore creates a new Postgres run store
func NewPostgresRunStore(ctx context.Context, opts PostgresOptions) (*PostgresRunStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return NewPostgresRunStoreWithPool(pool, opts.TableName), nil
}

// NewPostgresRunStoreWithPool creates a new Postgres run store with an existing pool
func NewPostgresRunStoreWithPool(pool DBPool, tableName string) *PostgresRunStore {
	if tableName == "" {
		tableName = "runs"
	}
	return &PostgresRunStore{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *PostgresRunStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			experiment TEXT NOT NULL,
			node TEXT NOT NULL,
			final_vars JSONB NOT NULL,
			params JSONB NOT NULL,
			metrics JSONB NOT NULL,
			outputs JSONB NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMPTZ NOT NULL,
			ended_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_experiment ON %s (experiment);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresRunStore) Close() {
	s.pool.Close()
}

// Save stores a run
func (s *PostgresRunStore) Save(ctx context.Context, run *tracking.Run) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			experiment = EXCLUDED.experiment,
			node = EXCLUDED.node,
			final_vars = EXCLUDED.final_vars,
			params = EXCLUDED.params,
			metrics = EXCLUDED.metrics,
			outputs = EXCLUDED.outputs,
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			started_at = EXCLUDED.started_at,
			ended_at = EXCLUDED.ended_at
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		run.ID,
		run.Experiment,
		run.Node,
		finalVars,
		params,
		metrics,
		outputs,
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

func scanRun(row pgx.Row) (*tracking.Run, error) {
	var (
		r                                   tracking.Run
		status                              string
		finalVars, params, metrics, outputs []byte
	)
	if err := row.Scan(&r.ID, &r.Experiment, &r.Node, &finalVars, &params, &metrics, &outputs, &status, &r.Error, &r.StartedAt, &r.EndedAt); err != nil {
		return nil, err
	}
	r.Status = tracking.Status(status)

	for _, f := range []struct {
		name string
		src  []byte
		dst  any
	}{
		{"final vars", finalVars, &r.FinalVars},
		{"params", params, &r.Params},
		{"metrics", metrics, &r.Metrics},
		{"outputs", outputs, &r.Outputs},
	} {
		if err := json.Unmarshal(f.src, f.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", f.name, err)
		}
	}
	return &r, nil
}

// Load retrieves a run by id
func (s *PostgresRunStore) Load(ctx context.Context, id string) (*tracking.Run, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", selectColumns, s.tableName)

	r, err := scanRun(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", tracking.ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return r, nil
}

// List returns the runs of an experiment ordered by start time
func (s *PostgresRunStore) List(ctx context.Context, experiment string) ([]*tracking.Run, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE experiment = $1 ORDER BY started_at ASC", selectColumns, s.tableName)

	rows, err := s.pool.Query(ctx, query, experiment)
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
func (s *PostgresRunStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName)
	if _, err := s.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// Clear removes all runs of an experiment
func (s *PostgresRunStore) Clear(ctx context.Context, experiment string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE experiment = $1", s.tableName)
	if _, err := s.pool.Exec(ctx, query, experiment); err != nil {
		return fmt.Errorf("failed to clear runs: %w", err)
	}
	return nil
}
