// Package session keeps the client's login state: where the token lives,
// whether it can still be trusted, and what happens when it cannot.
package session

import (
	"context"
	"database/sql"
	"errors"
	"os"
)

// TokenStore is one place a session token can be kept between runs.
type TokenStore interface {
	// Load returns the stored token, or "" when none is stored.
	Load(ctx context.Context) (string, error)

	// Save persists the token, replacing any previous one.
	Save(ctx context.Context, token string) error

	// Clear removes the stored token. Clearing an empty store is not an
	// error.
	Clear(ctx context.Context) error
}

// SQLiteStore keeps the token in the client's local session database.
type SQLiteStore struct {
	db *sql.DB
}

const tokenKey = "token"

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, tokenKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *SQLiteStore) Save(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, tokenKey, token)
	return err
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE key = ?`, tokenKey)
	return err
}

// FileStore keeps the token in a plain file. It is the fallback channel:
// if the database copy is lost, the file copy still restores the session.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *FileStore) Save(ctx context.Context, token string) error {
	return os.WriteFile(s.path, []byte(token), 0o600)
}

func (s *FileStore) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Chain is an ordered set of redundant token stores. Reads return the first
// non-empty token found; writes and clears go to every store so the channels
// stay in sync. A channel that fails is skipped rather than failing the
// whole operation, as long as at least one channel worked.
type Chain struct {
	stores []TokenStore
}

func NewChain(stores ...TokenStore) *Chain {
	return &Chain{stores: stores}
}

func (c *Chain) Load(ctx context.Context) (string, error) {
	var firstErr error
	for _, s := range c.stores {
		token, err := s.Load(ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if token != "" {
			return token, nil
		}
	}
	if firstErr != nil {
		return "", firstErr
	}
	return "", nil
}

func (c *Chain) Save(ctx context.Context, token string) error {
	var errs []error
	saved := false
	for _, s := range c.stores {
		if err := s.Save(ctx, token); err != nil {
			errs = append(errs, err)
			continue
		}
		saved = true
	}
	if !saved {
		return errors.Join(errs...)
	}
	return nil
}

func (c *Chain) Clear(ctx context.Context) error {
	var errs []error
	for _, s := range c.stores {
		if err := s.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ TokenStore = (*SQLiteStore)(nil)
	_ TokenStore = (*FileStore)(nil)
	_ TokenStore = (*Chain)(nil)
)
