// Package metrics defines Prometheus metrics for the governance service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "govern_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "govern_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "govern_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	GovernedOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "govern_governed_ops_total",
			Help: "Governed operations by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	GuardRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "govern_guard_rejections_total",
			Help: "Requests rejected by each guard",
		},
		[]string{"guard"},
	)

	AuditWriteFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "govern_audit_write_failures_total",
			Help: "Committed mutations whose audit write failed; each one needs out-of-band reconciliation",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "govern_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		GovernedOpsTotal, GuardRejectionsTotal, AuditWriteFailuresTotal,
		WSConnections,
	)
}
