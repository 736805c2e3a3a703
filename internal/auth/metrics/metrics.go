// Package metrics exposes the Prometheus collectors of the auth server. All
// methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "grantd"

type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	tokensIssued    *prometheus.CounterVec
	tokensPurged    *prometheus.CounterVec
	tokenCollisions *prometheus.CounterVec
}

// New builds a private registry with the auth collectors plus the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oauth2",
			Name:      "requests_total",
			Help:      "OAuth2 endpoint requests by endpoint and outcome (ok or the error code).",
		}, []string{"endpoint", "outcome"}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Tokens persisted, by kind.",
		}, []string{"kind"}),
		tokensPurged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_purged_total",
			Help:      "Expired tokens removed by housekeeping, by kind.",
		}, []string{"kind"}),
		tokenCollisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_collisions_total",
			Help:      "Generated token values that were already taken, by kind.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.tokensIssued,
		m.tokensPurged,
		m.tokenCollisions,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) TokenIssued(kind string) {
	if m == nil {
		return
	}
	m.tokensIssued.WithLabelValues(kind).Inc()
}

func (m *Metrics) TokensPurged(kind string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.tokensPurged.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) TokenCollision(kind string) {
	if m == nil {
		return
	}
	m.tokenCollisions.WithLabelValues(kind).Inc()
}
