package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every custom metric the service exposes
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Expense Metrics
	ExpensesCreatedTotal *prometheus.CounterVec

	// Budget Alert Metrics
	AlertsProcessedTotal  *prometheus.CounterVec
	AlertsFailedTotal     *prometheus.CounterVec
	AlertHandlingDuration prometheus.Histogram

	// Cache (Redis) Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Queue (RabbitMQ) Metrics
	QueueMessagesPublished *prometheus.CounterVec
	QueueMessagesConsumed  *prometheus.CounterVec
}

// NewMetrics registers and returns all application metrics
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		ExpensesCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expenses_created_total",
				Help: "Total number of expenses created",
			},
			[]string{"category"},
		),

		AlertsProcessedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_alerts_processed_total",
				Help: "Total number of budget alerts processed",
			},
			[]string{"status"}, // status: success, failed
		),

		AlertsFailedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_alerts_failed_total",
				Help: "Total number of budget alert failures by reason",
			},
			[]string{"reason"},
		),

		AlertHandlingDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "budget_alert_handling_duration_seconds",
				Help:    "Duration of budget alert handling in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
		),

		CacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"key_type"},
		),

		CacheMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"key_type"},
		),

		QueueMessagesPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_published_total",
				Help: "Total number of messages published to the queue",
			},
			[]string{"queue"},
		),

		QueueMessagesConsumed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_consumed_total",
				Help: "Total number of messages consumed from the queue",
			},
			[]string{"queue"},
		),
	}
}

// GlobalMetrics is the process-wide metrics instance, set once at startup.
var GlobalMetrics *Metrics

// InitMetrics initializes GlobalMetrics
func InitMetrics() {
	GlobalMetrics = NewMetrics()
}
