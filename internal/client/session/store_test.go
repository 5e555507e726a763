package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikaelsv/kontakta/internal/client/storage"
)

// memStore is an in-memory TokenStore for chain tests.
type memStore struct {
	token   string
	loadErr error
	saveErr error
}

func (m *memStore) Load(ctx context.Context) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	return m.token, nil
}

func (m *memStore) Save(ctx context.Context, token string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	return nil
}

func (m *memStore) Clear(ctx context.Context) error {
	m.token = ""
	return nil
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "token"))

	token, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "missing file reads as no token")

	require.NoError(t, s.Save(ctx, "tok123"))
	token, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx), "clearing twice is fine")
	token, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := storage.InitDatabase(ctx, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer db.Close()

	s := NewSQLiteStore(db)

	token, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.Save(ctx, "tok1"))
	require.NoError(t, s.Save(ctx, "tok2"), "save replaces the previous token")

	token, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok2", token)

	require.NoError(t, s.Clear(ctx))
	token, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestChain_LoadPrefersPrimary(t *testing.T) {
	ctx := context.Background()
	primary := &memStore{token: "primary-tok"}
	backup := &memStore{token: "backup-tok"}

	chain := NewChain(primary, backup)
	token, err := chain.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "primary-tok", token)
}

func TestChain_LoadFallsBackWhenPrimaryEmpty(t *testing.T) {
	ctx := context.Background()
	chain := NewChain(&memStore{}, &memStore{token: "backup-tok"})

	token, err := chain.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "backup-tok", token)
}

func TestChain_LoadFallsBackWhenPrimaryFails(t *testing.T) {
	ctx := context.Background()
	chain := NewChain(&memStore{loadErr: errors.New("db locked")}, &memStore{token: "backup-tok"})

	token, err := chain.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "backup-tok", token)
}

func TestChain_SaveWritesAllChannels(t *testing.T) {
	ctx := context.Background()
	primary := &memStore{}
	backup := &memStore{}

	chain := NewChain(primary, backup)
	require.NoError(t, chain.Save(ctx, "tok123"))

	assert.Equal(t, "tok123", primary.token)
	assert.Equal(t, "tok123", backup.token)
}

func TestChain_SaveSurvivesOneChannelFailing(t *testing.T) {
	ctx := context.Background()
	primary := &memStore{saveErr: errors.New("disk full")}
	backup := &memStore{}

	chain := NewChain(primary, backup)
	require.NoError(t, chain.Save(ctx, "tok123"))
	assert.Equal(t, "tok123", backup.token)
}

func TestChain_SaveFailsWhenAllChannelsFail(t *testing.T) {
	ctx := context.Background()
	chain := NewChain(
		&memStore{saveErr: errors.New("disk full")},
		&memStore{saveErr: errors.New("read-only fs")},
	)

	err := chain.Save(ctx, "tok123")
	require.Error(t, err)
}

func TestChain_ClearEmptiesAllChannels(t *testing.T) {
	ctx := context.Background()
	primary := &memStore{token: "a"}
	backup := &memStore{token: "b"}

	chain := NewChain(primary, backup)
	require.NoError(t, chain.Clear(ctx))

	assert.Empty(t, primary.token)
	assert.Empty(t, backup.token)
}
