package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalkeeper/goals/internal/store"
	"github.com/goalkeeper/goals/testutil"
)

// runKVContract exercises the behaviour every KV backend must share.
func runKVContract(t *testing.T, kv store.KV) {
	t.Helper()
	ctx := context.Background()

	_, found, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found, "absent key must report found=false")

	require.NoError(t, kv.Put(ctx, "k", []byte(`["first"]`)))
	got, found, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `["first"]`, string(got))

	require.NoError(t, kv.Put(ctx, "k", []byte(`["second"]`)))
	got, found, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `["second"]`, string(got), "Put must overwrite")
}

func TestMemoryKV(t *testing.T) {
	runKVContract(t, store.NewMemoryKV())
}

func TestSQLiteKV(t *testing.T) {
	kv, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "goals.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	runKVContract(t, kv)
}

// NewSQLiteKV works over any migrated handle, not just one from OpenSQLite.
func TestNewSQLiteKV_MigratedHandle(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	require.NoError(t, store.Migrate(context.Background(), db, goose.DialectSQLite3))

	runKVContract(t, store.NewSQLiteKV(db))
}

// Values written to the SQLite file must be visible after reopening it.
func TestSQLiteKV_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "goals.db")

	kv, err := store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, kv.Put(ctx, store.GoalsKey, []byte(`[]`)))
	require.NoError(t, kv.Close())

	kv, err = store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	got, found, err := kv.Get(ctx, store.GoalsKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, string(got))
}

func TestBadgerKV_InMemory(t *testing.T) {
	kv, err := store.OpenBadger(store.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	runKVContract(t, kv)
}

func TestBadgerKV_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	kv, err := store.OpenBadger(store.BadgerConfig{Path: dir})
	require.NoError(t, err)
	require.NoError(t, kv.Put(ctx, store.GoalsKey, []byte(`[]`)))
	require.NoError(t, kv.Close())

	kv, err = store.OpenBadger(store.BadgerConfig{Path: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	got, found, err := kv.Get(ctx, store.GoalsKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, string(got))
}

func TestOpenBadger_RequiresPath(t *testing.T) {
	_, err := store.OpenBadger(store.BadgerConfig{})

	assert.Error(t, err)
}

// TestPostgresKV runs the shared contract inside a transaction that is rolled
// back afterwards. Skipped unless TEST_DATABASE_URL is set.
func TestPostgresKV(t *testing.T) {
	runKVContract(t, newPostgresKV(t))
}
