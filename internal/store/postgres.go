package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// postgresKV keeps values in the kv_store table of a Postgres database.
type postgresKV struct {
	db    db
	close func()
}

// NewPostgresKV constructs a KV backed by the provided db connection.
// In production pass *pgxpool.Pool together with pool.Close; in tests pass a
// pgx.Tx and a nil closer.
func NewPostgresKV(db db, closer func()) KV {
	return &postgresKV{db: db, close: closer}
}

func (r *postgresKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const q = `SELECT value FROM kv_store WHERE key = @key`

	var value string
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store.postgresKV.Get: %w", err)
	}
	return []byte(value), true, nil
}

func (r *postgresKV) Put(ctx context.Context, key string, value []byte) error {
	const q = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (@key, @value, now())
		ON CONFLICT (key) DO UPDATE
		SET value      = EXCLUDED.value,
		    updated_at = now()`

	args := pgx.NamedArgs{
		"key":   key,
		"value": string(value),
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("store.postgresKV.Put: %w", err)
	}
	return nil
}

func (r *postgresKV) Close() error {
	if r.close != nil {
		r.close()
	}
	return nil
}
