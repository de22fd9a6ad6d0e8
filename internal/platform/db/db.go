package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// OpenPostgres opens a pgx-backed pool for shared telemetry storage.
// Pool sizing assumes a handful of concurrent route simulations plus the
// HTTP read path.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}

	return db, nil
}

// OpenSqlite opens the local single-file store used for standalone runs.
func OpenSqlite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %q: %w", path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("verify sqlite connection to %q: %w", path, err)
	}

	return db, nil
}
