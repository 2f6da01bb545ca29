// Package toolstore persists saved tool definitions in PostgreSQL. The
// engine reads back only the embedded selector spec at run time.
package toolstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
)

// ErrNotFound is returned when a tool name has no saved record.
var ErrNotFound = errors.New("tool not found")

// DBPool abstracts the pgxpool.Pool so tests can substitute pgxmock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is the PostgreSQL-backed tool repository.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a store and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool: pool,
		log:  logger.Named("toolstore"),
	}, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tools (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    parameters  JSONB NOT NULL DEFAULT '[]',
    spec        JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the tools table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure tools schema: %w", err)
	}
	return nil
}

// Save upserts a tool record by name. A new record gets a generated id and
// creation timestamp; an existing one keeps both.
func (s *Store) Save(ctx context.Context, tool *schemas.ToolRecord) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if tool.ID == "" {
		tool.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if tool.CreatedAt.IsZero() {
		tool.CreatedAt = now
	}
	tool.UpdatedAt = now

	params, err := json.Marshal(tool.Parameters)
	if err != nil {
		return fmt.Errorf("failed to marshal tool parameters: %w", err)
	}
	spec, err := json.Marshal(tool.Spec)
	if err != nil {
		return fmt.Errorf("failed to marshal selector spec: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback on an already committed tx reports ErrTxClosed; that is
		// the normal path, not an error worth logging.
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO tools (id, name, parameters, spec, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE
		SET parameters = EXCLUDED.parameters,
		    spec       = EXCLUDED.spec,
		    updated_at = EXCLUDED.updated_at`,
		tool.ID, tool.Name, params, spec, tool.CreatedAt, tool.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save tool %q: %w", tool.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.log.Debug("Saved tool", zap.String("name", tool.Name), zap.String("id", tool.ID))
	return nil
}

// Get loads one tool by name.
func (s *Store) Get(ctx context.Context, name string) (*schemas.ToolRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, parameters, spec, created_at, updated_at
		FROM tools WHERE name = $1`, name)
	tool, err := scanTool(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to load tool %q: %w", name, err)
	}
	return tool, nil
}

// List returns every saved tool ordered by name.
func (s *Store) List(ctx context.Context) ([]*schemas.ToolRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, parameters, spec, created_at, updated_at
		FROM tools ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	defer rows.Close()

	var tools []*schemas.ToolRecord
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tool row: %w", err)
		}
		tools = append(tools, tool)
	}
	return tools, rows.Err()
}

// Delete removes a tool by name.
func (s *Store) Delete(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tools WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete tool %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func scanTool(row pgx.Row) (*schemas.ToolRecord, error) {
	var (
		tool      schemas.ToolRecord
		rawParams []byte
		rawSpec   []byte
	)
	if err := row.Scan(&tool.ID, &tool.Name, &rawParams, &rawSpec, &tool.CreatedAt, &tool.UpdatedAt); err != nil {
		return nil, err
	}
	if len(rawParams) > 0 {
		if err := json.Unmarshal(rawParams, &tool.Parameters); err != nil {
			return nil, fmt.Errorf("corrupt parameters payload: %w", err)
		}
	}
	if err := json.Unmarshal(rawSpec, &tool.Spec); err != nil {
		return nil, fmt.Errorf("corrupt spec payload: %w", err)
	}
	return &tool, nil
}
