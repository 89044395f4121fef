package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusDropped = "dropped"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Relay metrics
	WebSocketConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections_total",
			Help: "Current number of registered WebSocket connections",
		},
		[]string{"service"},
	)

	RelayShopsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relay_shops_total",
			Help: "Current number of shops with at least one connection",
		},
		[]string{"service"},
	)

	RelayMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_total",
			Help: "Total number of inbound location messages",
		},
		[]string{"service", "status"},
	)

	RelayDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_deliveries_total",
			Help: "Total number of fan-out sends to recipients",
		},
		[]string{"service", "status"},
	)

	RelayClosedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_connections_closed_total",
			Help: "Total number of closed relay connections by reason",
		},
		[]string{"service", "reason"},
	)

	RelayAuthDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_auth_duration_seconds",
			Help:    "Token verification duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, status).Observe(duration.Seconds())
}

// RecordRegistry publishes the current registry size
func RecordRegistry(service string, shops, conns int) {
	RelayShopsGauge.WithLabelValues(service).Set(float64(shops))
	WebSocketConnectionsGauge.WithLabelValues(service).Set(float64(conns))
}

// RecordMessage records an inbound message outcome
func RecordMessage(service, status string) {
	RelayMessagesTotal.WithLabelValues(service, status).Inc()
}

// RecordDelivery records the outcome of one send to one recipient
func RecordDelivery(service string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	RelayDeliveriesTotal.WithLabelValues(service, status).Inc()
}

// RecordClose records why a connection was closed
func RecordClose(service, reason string) {
	RelayClosedTotal.WithLabelValues(service, reason).Inc()
}

// RecordAuth records token verification metrics
func RecordAuth(service string, err error, duration time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	RelayAuthDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}
