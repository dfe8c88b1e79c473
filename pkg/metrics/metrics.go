package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	gatherer prometheus.Gatherer

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Engine metrics
	BatchesTotal      *prometheus.CounterVec
	BatchDuration     prometheus.Histogram
	UnitsEvaluated    prometheus.Counter
	UnitFailures      prometheus.Counter
	AlertsGenerated   *prometheus.CounterVec
	NotificationsSent *prometheus.CounterVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// New creates a Metrics instance registered on reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		BatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aquaperf_batches_total",
				Help: "Total number of farm evaluation batches",
			},
			[]string{"outcome"}, // ok, partial, failed
		),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aquaperf_batch_duration_seconds",
			Help:    "Farm evaluation batch duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		UnitsEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Name: "aquaperf_units_evaluated_total",
			Help: "Total number of production units evaluated",
		}),
		UnitFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "aquaperf_unit_failures_total",
			Help: "Total number of production units that could not be evaluated",
		}),
		AlertsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aquaperf_alerts_generated_total",
				Help: "Total number of predictive alerts generated",
			},
			[]string{"rule", "severity"},
		),
		NotificationsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aquaperf_notifications_total",
				Help: "Total number of alert notifications attempted",
			},
			[]string{"status"}, // sent, failed
		),

		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "aquaperf_report_cache_hits_total",
			Help: "Total number of report cache hits",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "aquaperf_report_cache_misses_total",
			Help: "Total number of report cache misses",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware creates a gin middleware recording request counts and latency.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath() // route pattern, e.g. /api/v1/alerts/:alertID
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordBatch records one farm batch. Record methods are no-ops on a nil *Metrics.
func (m *Metrics) RecordBatch(outcome string, duration time.Duration, units, failures int) {
	if m == nil {
		return
	}
	m.BatchesTotal.WithLabelValues(outcome).Inc()
	m.BatchDuration.Observe(duration.Seconds())
	m.UnitsEvaluated.Add(float64(units))
	m.UnitFailures.Add(float64(failures))
}

// RecordAlert increments the generated alerts counter.
func (m *Metrics) RecordAlert(rule, severity string) {
	if m == nil {
		return
	}
	m.AlertsGenerated.WithLabelValues(rule, severity).Inc()
}

// RecordNotification increments the notification counter.
func (m *Metrics) RecordNotification(sent bool) {
	if m == nil {
		return
	}
	status := "failed"
	if sent {
		status = "sent"
	}
	m.NotificationsSent.WithLabelValues(status).Inc()
}

// RecordCache increments cache hits or misses.
func (m *Metrics) RecordCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
		return
	}
	m.CacheMisses.Inc()
}
