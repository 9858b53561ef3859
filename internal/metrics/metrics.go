package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Catalog service metrics collectors
var (
	// HTTP

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	HTTPPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_http_panics_total",
			Help: "Total number of handler panics recovered",
		},
	)

	// Catalog state

	UsersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_users_total",
			Help: "Number of registered users",
		},
	)

	ProductsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_products_total",
			Help: "Number of catalog products",
		},
	)

	MapsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_maps_total",
			Help: "Number of saved infrastructure maps",
		},
	)

	DBConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_db_connections",
			Help: "Number of open database connections",
		},
	)

	// Mutations and auth

	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_mutations_total",
			Help: "Total number of create, update and delete operations",
		},
		[]string{"resource", "operation", "status"},
	)

	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_auth_attempts_total",
			Help: "Total number of admin login attempts",
		},
		[]string{"status"},
	)
)

// RecordMutation counts a create/update/delete outcome
func RecordMutation(resource, operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	MutationsTotal.WithLabelValues(resource, operation, status).Inc()
}
