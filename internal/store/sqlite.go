package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/glebarez/go-sqlite" // registers the pure-Go "sqlite" driver
	"github.com/pressly/goose/v3"
)

// sqliteKV keeps values in the kv_store table of a local SQLite file.
type sqliteKV struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at path,
// applies migrations, and returns a KV backed by it.
func OpenSQLite(ctx context.Context, path string) (KV, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store.OpenSQLite: open %s: %w", path, err)
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.OpenSQLite: ping: %w", err)
	}
	if err := Migrate(ctx, db, goose.DialectSQLite3); err != nil {
		db.Close()
		return nil, err
	}
	return NewSQLiteKV(db), nil
}

// NewSQLiteKV wraps an already-migrated *sql.DB.
func NewSQLiteKV(db *sql.DB) KV {
	return &sqliteKV{db: db}
}

func (s *sqliteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const q = `SELECT value FROM kv_store WHERE key = ?`

	var value string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store.sqliteKV.Get: %w", err)
	}
	return []byte(value), true, nil
}

func (s *sqliteKV) Put(ctx context.Context, key string, value []byte) error {
	const q = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE
		SET value      = excluded.value,
		    updated_at = CURRENT_TIMESTAMP`

	if _, err := s.db.ExecContext(ctx, q, key, string(value)); err != nil {
		return fmt.Errorf("store.sqliteKV.Put: %w", err)
	}
	return nil
}

func (s *sqliteKV) Close() error {
	return s.db.Close()
}
