package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the radio server.
type Metrics struct {
	registry               *prometheus.Registry
	requestsTotal          prometheus.Counter
	errorsTotal            prometheus.Counter
	clientsConnectedTotal  prometheus.Counter
	activeListeners        prometheus.Gauge
	broadcastBytesTotal    *prometheus.CounterVec
	trackLoadFailuresTotal *prometheus.CounterVec
}

// New creates and registers Prometheus metrics for the radio server.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radio_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radio_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	clientsConnectedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radio_clients_connected_total",
		Help: "Total number of listeners that attached to any station",
	})
	activeListeners := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "radio_listeners_active",
		Help: "Number of currently attached listeners across all stations",
	})
	broadcastBytesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "radio_broadcast_bytes_total",
		Help: "Total audio bytes broadcast, per station",
	}, []string{"station"})
	trackLoadFailuresTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "radio_track_load_failures_total",
		Help: "Total playlist entries that could not be read, per station",
	}, []string{"station"})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		clientsConnectedTotal,
		activeListeners,
		broadcastBytesTotal,
		trackLoadFailuresTotal,
	)

	return &Metrics{
		registry:               registry,
		requestsTotal:          requestsTotal,
		errorsTotal:            errorsTotal,
		clientsConnectedTotal:  clientsConnectedTotal,
		activeListeners:        activeListeners,
		broadcastBytesTotal:    broadcastBytesTotal,
		trackLoadFailuresTotal: trackLoadFailuresTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncClientsConnected increments the lifetime listener connections counter.
func (m *Metrics) IncClientsConnected() {
	m.clientsConnectedTotal.Inc()
}

// SetActiveListeners sets the active listeners gauge.
func (m *Metrics) SetActiveListeners(n int) {
	m.activeListeners.Set(float64(n))
}

// AddBroadcastBytes adds n to the given station's broadcast byte counter.
func (m *Metrics) AddBroadcastBytes(station string, n int) {
	m.broadcastBytesTotal.WithLabelValues(station).Add(float64(n))
}

// IncTrackLoadFailures increments the given station's load failure counter.
func (m *Metrics) IncTrackLoadFailures(station string) {
	m.trackLoadFailuresTotal.WithLabelValues(station).Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g.
// active listeners).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
