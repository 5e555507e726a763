package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDatabase_CreatesSessionTable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	db, err := InitDatabase(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT INTO session (key, value) VALUES ('token', 'abc')`)
	require.NoError(t, err)

	var value string
	err = db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = 'token'`).Scan(&value)
	require.NoError(t, err)
	assert.Equal(t, "abc", value)
}

func TestInitDatabase_Idempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	db, err := InitDatabase(ctx, path)
	require.NoError(t, err)
	db.Close()

	// Re-opening the same file must not fail on already-applied migrations.
	db, err = InitDatabase(ctx, path)
	require.NoError(t, err)
	db.Close()
}
