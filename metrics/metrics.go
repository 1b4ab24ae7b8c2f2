// Package metrics counts events and responses for Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pevans/pagewire/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry  *prometheus.Registry
	events    *prometheus.CounterVec
	responses *prometheus.CounterVec
}

// New registers the pagewire collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}
	m.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pagewire",
		Name:      "events_total",
		Help:      "Published lifecycle events by kind",
	}, []string{"kind"})
	m.responses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pagewire",
		Name:      "responses_total",
		Help:      "Responses written by route and status code",
	}, []string{"route", "status"})

	m.registry.MustRegister(m.events, m.responses)
	return m
}

// EventHandler is a bus subscriber that counts events.
func (m *Metrics) EventHandler() events.Handler {
	return func(ev events.Event) error {
		m.events.WithLabelValues(string(ev.Kind)).Inc()
		return nil
	}
}

// ObserveResponse counts one terminal response.
func (m *Metrics) ObserveResponse(route string, status int) {
	m.responses.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// NewServer returns an HTTP server exposing /metrics on addr.
func (m *Metrics) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
