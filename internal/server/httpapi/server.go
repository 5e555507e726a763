// Package httpapi exposes the identity core and its collaborators as a JSON
// HTTP API. Handlers stay thin: decode, call the service, map the error
// taxonomy to a status code.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mikaelsv/kontakta/internal/logging"
	"github.com/mikaelsv/kontakta/internal/server/contacts"
	"github.com/mikaelsv/kontakta/internal/server/users"
)

// StoreHealth is the probe surface the /health endpoint needs from the
// connection layer.
type StoreHealth interface {
	HealthCheck(ctx context.Context) bool
}

type Server struct {
	address  string
	logger   logging.Logger
	users    *users.Service
	contacts *contacts.Service
	store    StoreHealth
	metrics  *Metrics
}

func NewServer(address string, logger logging.Logger, us *users.Service, cs *contacts.Service, store StoreHealth) *Server {
	return &Server{
		address:  address,
		logger:   logger.With("module", "http_server"),
		users:    us,
		contacts: cs,
		store:    store,
		metrics:  NewMetrics(),
	}
}

// Handler builds the route table. Exposed so tests can drive the full mux
// through httptest without binding a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /signup", s.handleSignUp)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /verify", s.handleVerify)
	mux.Handle("GET /me", s.requireAuth(http.HandlerFunc(s.handleMe)))
	mux.Handle("DELETE /me", s.requireAuth(http.HandlerFunc(s.handleDeleteMe)))

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.Handle("GET /contacts", s.requireAuth(http.HandlerFunc(s.handleListContacts)))
	mux.Handle("POST /contacts", s.requireAuth(http.HandlerFunc(s.handleCreateContact)))
	mux.Handle("DELETE /contacts/{id}", s.requireAuth(http.HandlerFunc(s.handleDeleteContact)))
	mux.Handle("GET /contacts/{id}/messages", s.requireAuth(http.HandlerFunc(s.handleListMessages)))
	mux.Handle("POST /contacts/{id}/messages", s.requireAuth(http.HandlerFunc(s.handleSendMessage)))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
