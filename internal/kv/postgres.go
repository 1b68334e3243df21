package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/editorial-lifecycle-api/internal/database"
)

// Postgres is a Backend over the kv_entries table.
type Postgres struct {
	db *database.DB
}

// NewPostgres creates a postgres backend. The schema comes from the
// migrations directory (see database.DB.RunMigrations).
func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{db: db}
}

const upsertEntry = `
	INSERT INTO kv_entries (key, value, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
`

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := p.db.QueryRowContext(ctx, "SELECT value FROM kv_entries WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return []byte(value), nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	if _, err := p.db.ExecContext(ctx, upsertEntry, key, string(value)); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// SetMany upserts every entry in one transaction.
func (p *Postgres) SetMany(ctx context.Context, entries map[string][]byte) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertEntry)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for k, v := range entries {
		if _, err := stmt.ExecContext(ctx, k, string(v)); err != nil {
			return fmt.Errorf("upsert %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
