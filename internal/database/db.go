// Package database opens the postgres pool behind the postgres storage
// driver and keeps its kv_entries schema current.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/editorial-lifecycle-api/internal/config"
)

const pingTimeout = 5 * time.Second

// DB is a pooled postgres connection.
type DB struct {
	*sql.DB
	log zerolog.Logger
}

// New opens and pings the database described by cfg.
func New(cfg *config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	pool, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{DB: pool, log: log.With().Str("component", "database").Logger()}
	db.log.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("Database connection established")
	return db, nil
}

// RunMigrations applies every pending migration found in migrationsPath.
func (db *DB) RunMigrations(migrationsPath string) error {
	return db.migrate(migrationsPath, "up", func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown reverts the most recent migration.
func (db *DB) MigrateDown(migrationsPath string) error {
	return db.migrate(migrationsPath, "down", func(m *migrate.Migrate) error { return m.Steps(-1) })
}

func (db *DB) migrate(migrationsPath, direction string, step func(*migrate.Migrate) error) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	db.log.Info().Str("direction", direction).Uint("version", version).Bool("dirty", dirty).Msg("Migrations applied")
	return nil
}
