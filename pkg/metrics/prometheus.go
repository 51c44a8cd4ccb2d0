// Package metrics provides Prometheus metrics for the gradematch service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Match tier label values.
const (
	TierName       = "name"
	TierIdentifier = "identifier"
	TierFuzzy      = "fuzzy"
)

// Run outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Matching
	responsesProcessed prometheus.Counter
	matchesByTier      *prometheus.CounterVec
	unmatched          prometheus.Counter
	droppedFull        prometheus.Counter
	finalScores        *prometheus.CounterVec

	// Runs
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	rosterRecords prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gradematch",
		subsystem:        "matcher",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.responsesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "responses_processed_total",
		Help:        "Total number of response records evaluated by the matcher",
		ConstLabels: constLabels,
	})

	m.matchesByTier = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "matches_total",
		Help:        "Matched response records by matching tier",
		ConstLabels: constLabels,
	}, []string{"tier"})

	m.unmatched = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "unmatched_total",
		Help:        "Response records with no roster match",
		ConstLabels: constLabels,
	})

	m.droppedFull = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dropped_full_total",
		Help:        "Matched response records dropped because all score slots were occupied",
		ConstLabels: constLabels,
	})

	m.finalScores = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "final_scores_total",
		Help:        "Derived final scores by rule (slot1, fallback, empty)",
		ConstLabels: constLabels,
	}, []string{"rule"})

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Matching runs by outcome",
		ConstLabels: constLabels,
	}, []string{"outcome"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Wall time of a full load-match-derive-write run",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.rosterRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "roster_records",
		Help:        "Roster size of the most recent run",
		ConstLabels: constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_errors_total",
		Help:        "HTTP error responses by endpoint, method and error type",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_bytes",
		Help:        "Heap bytes allocated by the server process",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutines",
		Help:        "Current number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "gc_pause_milliseconds",
		Help:        "Average GC pause in milliseconds",
		ConstLabels: constLabels,
	})
}

// RecordResponseProcessed counts one evaluated response record.
func RecordResponseProcessed() {
	if globalManager.enabled {
		globalManager.responsesProcessed.Inc()
	}
}

// RecordMatch counts a match on the given tier.
func RecordMatch(tier string) {
	if globalManager.enabled {
		globalManager.matchesByTier.WithLabelValues(tier).Inc()
	}
}

// RecordUnmatched counts a response with no roster match.
func RecordUnmatched() {
	if globalManager.enabled {
		globalManager.unmatched.Inc()
	}
}

// RecordDroppedFull counts a match dropped on a full roster record.
func RecordDroppedFull() {
	if globalManager.enabled {
		globalManager.droppedFull.Inc()
	}
}

// RecordFinalScore counts a derived final score by rule.
func RecordFinalScore(rule string) {
	if globalManager.enabled {
		globalManager.finalScores.WithLabelValues(rule).Inc()
	}
}

// RecordRun counts a finished run and observes its duration in seconds.
func RecordRun(outcome string, seconds float64) {
	if globalManager.enabled {
		globalManager.runs.WithLabelValues(outcome).Inc()
		globalManager.runDuration.Observe(seconds)
	}
}

// UpdateRosterRecords sets the roster size gauge.
func UpdateRosterRecords(count int) {
	if globalManager.enabled {
		globalManager.rosterRecords.Set(float64(count))
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByEndpoint records an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets the allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime sets the average GC pause in milliseconds.
func RecordSystemGCPauseTime(ms float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Set(ms)
	}
}

// GetRegistry returns the custom registry that all package-level recorders use.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
