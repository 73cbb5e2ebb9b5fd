// Package metrics exposes Prometheus counters for the penalty fund service.
// A Manager carries its own registry so the /metrics endpoint serves only
// application series, no default Go collector noise.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "strafenkasse"

type Manager struct {
	registry *prometheus.Registry

	penaltiesCreated prometheus.Counter
	playersCreated   prometheus.Counter
	typesCreated     prometheus.Counter
	csvExports       prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func New() *Manager {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &Manager{
		registry: registry,
		penaltiesCreated: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "penalties_created_total",
			Help:      "Total number of penalties recorded",
		}),
		playersCreated: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "players_created_total",
			Help:      "Total number of players added to the roster",
		}),
		typesCreated: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "penalty_types_created_total",
			Help:      "Total number of catalog entries added",
		}),
		csvExports: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csv_exports_total",
			Help:      "Total number of CSV exports served",
		}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by path, method and status code",
		}, []string{"path", "method", "status"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by path and method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request. All record methods are
// no-ops on a nil Manager so tests can run without metrics.
func (m *Manager) ObserveRequest(path, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(path, method).Observe(elapsed.Seconds())
}

func (m *Manager) PenaltyCreated() {
	if m == nil {
		return
	}
	m.penaltiesCreated.Inc()
}

func (m *Manager) PlayerCreated() {
	if m == nil {
		return
	}
	m.playersCreated.Inc()
}

func (m *Manager) PenaltyTypeCreated() {
	if m == nil {
		return
	}
	m.typesCreated.Inc()
}

func (m *Manager) CSVExported() {
	if m == nil {
		return
	}
	m.csvExports.Inc()
}
