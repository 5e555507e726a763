// Package cli implements the interactive Kontakta client.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log"
	"os"
	"sync"
	"time"

	"github.com/mikaelsv/kontakta/internal/client/api"
	"github.com/mikaelsv/kontakta/internal/client/config"
	"github.com/mikaelsv/kontakta/internal/client/router"
	"github.com/mikaelsv/kontakta/internal/client/session"
	"github.com/mikaelsv/kontakta/internal/client/storage"
)

// App ties the guard, the router and the backend client together behind a
// read-eval-print loop. The router decides which "view" is showing; the
// guard decides whether the user is allowed to see it.
type App struct {
	config *config.Config
	api    api.Client
	guard  *session.Guard
	router *router.Router
	db     *sql.DB
	reader *bufio.Reader

	// the contact whose message thread is currently open, set by the
	// messages route
	currentContactID   string
	currentContactName string

	mu     sync.Mutex
	online bool
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := api.NewHTTPClient(c.ServerEndpointAddr, c.RequestTimeout)

	rt := router.New()

	tokens := session.NewChain(
		session.NewSQLiteStore(db),
		session.NewFileStore(c.TokenBackupPath),
	)
	guard := session.NewGuard(tokens, apiClient, rt)

	app := &App{
		config: c,
		api:    apiClient,
		guard:  guard,
		router: rt,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
		online: true,
	}

	if err := app.registerRoutes(); err != nil {
		db.Close()
		return nil, err
	}

	return app, nil
}

func (a *App) isLoggedIn() bool {
	return a.guard.IsAuthenticated(context.Background())
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	if err := a.guard.Restore(ctx); err != nil {
		log.Printf("could not restore session: %s", err.Error())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.startOnlineStatusWatcher(ctx, 3*time.Second)

	a.router.Init()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) setOnline(online bool) {
	a.mu.Lock()
	changed := a.online != online
	a.online = online
	a.mu.Unlock()

	if changed && !online {
		log.Printf("Server unreachable, working from local session")
	}
	if changed && online {
		log.Printf("Server reachable again")
	}
}

// startOnlineStatusWatcher probes /health on a fixed interval so the prompt
// can show whether the backend is reachable.
func (a *App) startOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, interval)
			err := a.api.Ping(probeCtx)
			cancel()
			a.setOnline(err == nil)

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	online := a.online
	a.mu.Unlock()

	s := a.router.CurrentRoute()
	if user := a.guard.CurrentUser(); user != nil {
		s = "(" + user.Email + ") " + s
	} else if !a.isLoggedIn() {
		s = "(not logged in)"
	}
	if !online {
		s = s + " [offline]"
	}
	return s
}
