package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mikaelsv/kontakta/internal/client/api"
	"github.com/mikaelsv/kontakta/internal/common"
)

// Navigator redirects the UI to a route. Satisfied by router.Router.
type Navigator interface {
	Navigate(path string)
}

// tokenClaims mirrors the claim keys the server signs into session tokens.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email"`
}

// Guard decides whether the current session token can be trusted. The
// decision is two-phase: a cheap local check (decode the token, look at its
// expiry) runs first, and only a locally plausible token is sent to the
// server for the real verdict. The local check can reject on its own; it can
// never accept on its own.
type Guard struct {
	mu    sync.Mutex
	epoch uint64
	token string
	user  *api.User

	store TokenStore
	api   api.Client
	nav   Navigator
	now   func() time.Time
}

// GuardOption customizes a Guard.
type GuardOption func(*Guard)

// WithClock injects the time source used by the local expiry check.
func WithClock(now func() time.Time) GuardOption {
	return func(g *Guard) { g.now = now }
}

func NewGuard(store TokenStore, client api.Client, nav Navigator, opts ...GuardOption) *Guard {
	g := &Guard{
		store: store,
		api:   client,
		nav:   nav,
		now:   time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Restore loads the persisted token into memory without verifying it.
// Call it once at startup; verification happens lazily on the first
// guarded navigation.
func (g *Guard) Restore(ctx context.Context) error {
	token, err := g.store.Load(ctx)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
	return nil
}

// decodeLocal parses the token without checking its signature and applies
// the local trust rules: well-formed, carries a subject, not yet expired.
// Signature validity is the server's call; a token that fails here is
// garbage no server round-trip can save.
func decodeLocal(token string, now time.Time) (*tokenClaims, error) {
	if token == "" {
		return nil, common.ErrInvalidToken
	}
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return nil, common.ErrTokenExpired
	}
	return claims, nil
}

// Token returns the current session token, or "" when logged out.
func (g *Guard) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token
}

// CurrentUser returns the profile from the last successful login or server
// verification, or nil.
func (g *Guard) CurrentUser() *api.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// IsAuthenticated runs the local phase of the trust decision. It reads the
// persisted token from the storage chain on every call, so a token written
// or removed by another run is picked up here. A token that fails the local
// check is dead weight and gets dropped from every channel before the
// method returns false. The positive answer is still only the local one;
// the server's verdict comes from VerifyWithServer.
func (g *Guard) IsAuthenticated(ctx context.Context) bool {
	g.mu.Lock()
	epoch := g.epoch
	memory := g.token
	g.mu.Unlock()

	token, err := g.store.Load(ctx)
	if err != nil || token == "" {
		token = memory
	}
	if token == "" {
		return false
	}

	if _, derr := decodeLocal(token, g.now()); derr != nil {
		g.drop(ctx, epoch)
		return false
	}

	g.mu.Lock()
	if g.epoch == epoch && g.token == "" {
		g.token = token
	}
	g.mu.Unlock()
	return true
}

// VerifyWithServer runs the authoritative phase: it presents the current
// token to the server and reports whether the session may keep being
// trusted. A confirmed token refreshes the cached profile (stale verdicts
// discarded via the epoch). The method never clears the session itself —
// an explicit rejection just reports false and leaves teardown to the
// caller, and an unreachable server is no verdict at all, so the locally
// valid session stays trusted.
func (g *Guard) VerifyWithServer(ctx context.Context) bool {
	g.mu.Lock()
	token := g.token
	epoch := g.epoch
	g.mu.Unlock()

	user, err := g.api.Verify(ctx, token)
	if err != nil {
		return errors.Is(err, common.ErrServerUnavailable)
	}

	g.mu.Lock()
	if g.epoch == epoch {
		g.user = user
	}
	g.mu.Unlock()
	return true
}

// RequireAuth gates navigation to path by composing the two phases. The
// root route is public; every other route needs a session the local check
// accepts and the server confirms. On rejection the session is dropped and
// the UI is sent back to the root route.
func (g *Guard) RequireAuth(ctx context.Context, path string) bool {
	if path == "/" {
		return true
	}

	g.mu.Lock()
	token := g.token
	epoch := g.epoch
	g.mu.Unlock()

	if _, err := decodeLocal(token, g.now()); err != nil {
		g.expire(ctx, epoch)
		return false
	}

	if !g.VerifyWithServer(ctx) {
		g.expire(ctx, epoch)
		return false
	}
	return true
}

// drop clears the session and every storage channel, unless the session
// already changed under the caller (stale epoch). Reports whether it
// cleared anything.
func (g *Guard) drop(ctx context.Context, epoch uint64) bool {
	g.mu.Lock()
	if g.epoch != epoch {
		g.mu.Unlock()
		return false
	}
	g.epoch++
	g.token = ""
	g.user = nil
	g.mu.Unlock()

	_ = g.store.Clear(ctx)
	return true
}

// expire drops the session and redirects to the root route.
func (g *Guard) expire(ctx context.Context, epoch uint64) {
	if g.drop(ctx, epoch) && g.nav != nil {
		g.nav.Navigate("/")
	}
}

// adopt installs a fresh authentication result and persists its token to
// every storage channel.
func (g *Guard) adopt(ctx context.Context, res *api.AuthResult) error {
	g.mu.Lock()
	g.epoch++
	g.token = res.Token
	g.user = res.User
	g.mu.Unlock()

	return g.store.Save(ctx, res.Token)
}

// Register creates an account and starts a session with the returned token.
func (g *Guard) Register(ctx context.Context, fullname, email, password string) (*api.User, error) {
	res, err := g.api.SignUp(ctx, fullname, email, password)
	if err != nil {
		return nil, err
	}
	if err := g.adopt(ctx, res); err != nil {
		return nil, err
	}
	return res.User, nil
}

// Login authenticates and starts a session with the returned token.
func (g *Guard) Login(ctx context.Context, email, password string) (*api.User, error) {
	res, err := g.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := g.adopt(ctx, res); err != nil {
		return nil, err
	}
	return res.User, nil
}

// Logout drops the session and clears every storage channel.
func (g *Guard) Logout(ctx context.Context) error {
	g.mu.Lock()
	g.epoch++
	g.token = ""
	g.user = nil
	g.mu.Unlock()

	return g.store.Clear(ctx)
}

// DeleteAccount removes the account on the server and then drops the local
// session.
func (g *Guard) DeleteAccount(ctx context.Context) error {
	g.mu.Lock()
	token := g.token
	g.mu.Unlock()

	if err := g.api.DeleteAccount(ctx, token); err != nil {
		return err
	}
	return g.Logout(ctx)
}
