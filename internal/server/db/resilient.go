// Package db owns the lifecycle of the connection to the credential store.
// The store is reachable over a retryable link: acquiring a handle retries
// with a bounded fixed-delay schedule, and exhausted retries surface as
// common.ErrStoreUnavailable — never as an authentication failure.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mikaelsv/kontakta/internal/common"
	"github.com/mikaelsv/kontakta/internal/logging"
	"github.com/mikaelsv/kontakta/internal/retryx"
)

// State of the store connection handle.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ResilientConn wraps the live *sql.DB handle to the credential store.
//
// Acquire is safe under concurrent callers: several goroutines observing a
// disconnected handle may each attempt to connect, but exactly one handle
// becomes the live one and losers discard theirs.
type ResilientConn struct {
	mu    sync.Mutex
	state State
	db    *sql.DB

	dsn    string
	policy retryx.Policy
	logger logging.Logger

	// test seams
	openFn    func(dsn string) (*sql.DB, error)
	pingFn    func(ctx context.Context, db *sql.DB) error
	migrateFn func(ctx context.Context, db *sql.DB) error
}

// Option customizes a ResilientConn; used by tests to inject dial/ping/
// migration seams.
type Option func(*ResilientConn)

func WithOpenFunc(fn func(dsn string) (*sql.DB, error)) Option {
	return func(c *ResilientConn) { c.openFn = fn }
}

func WithPingFunc(fn func(ctx context.Context, db *sql.DB) error) Option {
	return func(c *ResilientConn) { c.pingFn = fn }
}

func WithMigrateFunc(fn func(ctx context.Context, db *sql.DB) error) Option {
	return func(c *ResilientConn) { c.migrateFn = fn }
}

func NewResilientConn(dsn string, policy retryx.Policy, logger logging.Logger, opts ...Option) *ResilientConn {
	c := &ResilientConn{
		dsn:    dsn,
		policy: policy,
		logger: logger.With("module", "db"),
		openFn: func(dsn string) (*sql.DB, error) {
			return sql.Open("pgx", dsn)
		},
		pingFn: func(ctx context.Context, db *sql.DB) error {
			return db.PingContext(ctx)
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Acquire returns the live store handle, connecting first if necessary.
// Connection failures are retried under the configured policy; callers
// should expect a latency spike rather than an error until retries are
// exhausted. Exhaustion yields common.ErrStoreUnavailable.
func (c *ResilientConn) Acquire(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	if c.state == StateConnected {
		db := c.db
		c.mu.Unlock()
		return db, nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	attempt := 0
	var handle *sql.DB
	err := retryx.Do(ctx, c.policy, func(ctx context.Context) error {
		attempt++
		h, err := c.connectOnce(ctx)
		if err != nil {
			c.logger.Warn(ctx, "store connection attempt failed", "attempt", attempt, "error", err.Error())
			return err
		}
		handle = h
		return nil
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		if c.state == StateConnecting {
			c.state = StateDisconnected
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	return c.adoptLocked(ctx, handle)
}

// adoptLocked installs handle as the live connection unless another caller
// already won the race, in which case handle is discarded. Migrations run
// once, on the winning handle. c.mu must be held.
func (c *ResilientConn) adoptLocked(ctx context.Context, handle *sql.DB) (*sql.DB, error) {
	if c.state == StateConnected {
		_ = handle.Close()
		return c.db, nil
	}

	if c.migrateFn != nil {
		if err := c.migrateFn(ctx, handle); err != nil {
			_ = handle.Close()
			c.state = StateDisconnected
			return nil, fmt.Errorf("%w: migration: %v", common.ErrStoreUnavailable, err)
		}
	}

	c.db = handle
	c.state = StateConnected
	c.logger.Info(ctx, "store connected")
	return c.db, nil
}

func (c *ResilientConn) connectOnce(ctx context.Context) (*sql.DB, error) {
	handle, err := c.openFn(c.dsn)
	if err != nil {
		return nil, err
	}
	if err := c.pingFn(ctx, handle); err != nil {
		_ = handle.Close()
		return nil, err
	}
	return handle, nil
}

// HealthCheck issues a single liveness probe against the store, independent
// of Acquire's retry schedule. A disconnected handle gets one connection
// attempt; failures are reported, never retried here.
func (c *ResilientConn) HealthCheck(ctx context.Context) bool {
	c.mu.Lock()
	if c.state == StateConnected {
		db := c.db
		c.mu.Unlock()
		return c.pingFn(ctx, db) == nil
	}
	c.mu.Unlock()

	handle, err := c.connectOnce(ctx)
	if err != nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.adoptLocked(ctx, handle)
	return err == nil
}

// State reports the current connection state.
func (c *ResilientConn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close releases the live handle. Safe to call multiple times and when
// nothing was ever connected; app shutdown calls it on every exit path.
func (c *ResilientConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		c.state = StateDisconnected
		return nil
	}

	err := c.db.Close()
	c.db = nil
	c.state = StateDisconnected
	return err
}
