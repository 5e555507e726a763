package httpapi

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mikaelsv/kontakta/internal/common"
)

// Metrics carries the server's Prometheus collectors on a private registry,
// so tests can build as many servers as they like without duplicate
// registration panics.
type Metrics struct {
	registry *prometheus.Registry

	authAttempts     *prometheus.CounterVec
	storeUnavailable prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		authAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kontakta",
			Name:      "auth_attempts_total",
			Help:      "Authentication operations by op and outcome.",
		}, []string{"op", "outcome"}),
		storeUnavailable: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "kontakta",
			Name:      "store_unavailable_total",
			Help:      "Requests that failed because the credential store was unreachable.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeAuth(op string, err error) {
	var outcome string
	switch {
	case err == nil:
		outcome = "ok"
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		outcome = "unauthorized"
	case errors.Is(err, common.ErrStoreUnavailable):
		outcome = "store_unavailable"
		m.storeUnavailable.Inc()
	default:
		outcome = "error"
	}
	m.authAttempts.WithLabelValues(op, outcome).Inc()
}
