// Package server initializes and runs the Kontakta backend.
// It wires the resilient store connection, the identity and contact
// services, and the HTTP endpoint, and handles graceful shutdown.
package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mikaelsv/kontakta/internal/logging"
	"github.com/mikaelsv/kontakta/internal/retryx"
	"github.com/mikaelsv/kontakta/internal/server/config"
	"github.com/mikaelsv/kontakta/internal/server/contacts"
	"github.com/mikaelsv/kontakta/internal/server/db"
	"github.com/mikaelsv/kontakta/internal/server/httpapi"
	"github.com/mikaelsv/kontakta/internal/server/users"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	conn           *db.ResilientConn
	userService    *users.Service
	contactService *contacts.Service
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	policy := retryx.Policy{Attempts: cfg.ConnectAttempts, Delay: cfg.ConnectRetryDelay}
	conn := db.NewResilientConn(cfg.DatabaseDSN, policy, logger, db.WithMigrateFunc(db.Migrate))

	us := users.NewService(users.NewPostgresRepository(conn), cfg, logger)
	cs := contacts.NewService(contacts.NewPostgresRepository(conn))

	return &App{
		config:         cfg,
		logger:         logger,
		conn:           conn,
		userService:    us,
		contactService: cs,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddr, app.logger, app.userService, app.contactService, app.conn)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	// Connect eagerly so migrations run at startup; a failure here is not
	// fatal, the endpoint keeps serving and the store layer reconnects on
	// demand.
	if _, err := app.conn.Acquire(ctx); err != nil {
		app.logger.Warn(ctx, "store not reachable at startup", "error", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.conn.Close(); err != nil {
		app.logger.Error(ctx, "closing store connection", "error", err)
	}
}
