// Package metrics provides Prometheus metrics for the propensity service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Outcome labels for object fetches and loads.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Manager manages all Prometheus metrics for the propensity service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Scoring Metrics - What the simulator is used for
	predictions           *prometheus.CounterVec
	predictionProbability prometheus.Histogram
	predictionLatency     prometheus.Histogram
	alignmentErrors       *prometheus.CounterVec

	// Dataset Metrics - Campaign history behind the dashboard
	datasetRows         prometheus.Gauge
	datasetContacts     prometheus.Gauge
	datasetWarnings     prometheus.Gauge
	datasetLoadDuration prometheus.Histogram

	// Model Metrics
	modelLoaded       *prometheus.GaugeVec
	modelLoadDuration prometheus.Histogram

	// Object Storage Metrics
	objectFetches      *prometheus.CounterVec
	objectFetchLatency *prometheus.HistogramVec
	objectFetchBytes   *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "propensity",
		subsystem:        "simulator",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels, Buckets: buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Total number of propensity predictions by tier"),
		[]string{"tier"},
	)
	m.predictionProbability = auto.NewHistogram(m.histogramOpts(
		"prediction_probability", "Distribution of predicted subscription probabilities",
		prometheus.LinearBuckets(0.1, 0.1, 10),
	))
	m.predictionLatency = auto.NewHistogram(m.histogramOpts(
		"prediction_latency_milliseconds", "Alignment plus model inference latency in milliseconds",
		m.histogramBuckets,
	))
	m.alignmentErrors = auto.NewCounterVec(
		m.counterOpts("alignment_errors_total", "Records rejected by feature alignment"),
		[]string{"kind"},
	)

	m.datasetRows = auto.NewGauge(m.gaugeOpts("dataset_rows", "Raw rows in the loaded campaign dataset"))
	m.datasetContacts = auto.NewGauge(m.gaugeOpts("dataset_contacts", "Typed contacts in the loaded campaign dataset"))
	m.datasetWarnings = auto.NewGauge(m.gaugeOpts("dataset_warnings", "Rows skipped while parsing the campaign dataset"))
	m.datasetLoadDuration = auto.NewHistogram(m.histogramOpts(
		"dataset_load_duration_milliseconds", "Campaign dataset fetch and parse duration in milliseconds",
		m.histogramBuckets,
	))

	m.modelLoaded = auto.NewGaugeVec(
		m.gaugeOpts("model_loaded", "Set to 1 for the model version currently serving predictions"),
		[]string{"version", "format"},
	)
	m.modelLoadDuration = auto.NewHistogram(m.histogramOpts(
		"model_load_duration_milliseconds", "Model fetch and decode duration in milliseconds",
		m.histogramBuckets,
	))

	m.objectFetches = auto.NewCounterVec(
		m.counterOpts("object_fetches_total", "Object storage reads by backend and outcome"),
		[]string{"backend", "outcome"},
	)
	m.objectFetchLatency = auto.NewHistogramVec(
		m.histogramOpts("object_fetch_latency_milliseconds", "Object storage read latency in milliseconds", m.histogramBuckets),
		[]string{"backend"},
	)
	m.objectFetchBytes = auto.NewCounterVec(
		m.counterOpts("object_fetch_bytes_total", "Bytes read from object storage"),
		[]string{"backend"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds (user experience)", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	))
}

// Scoring Metrics Functions.

// RecordPrediction counts a prediction and observes its probability.
func RecordPrediction(tier string, probability float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.predictions.WithLabelValues(tier).Inc()
	globalManager.predictionProbability.Observe(probability)
}

// RecordPredictionLatency records alignment plus inference latency.
func RecordPredictionLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.predictionLatency.Observe(latencyMs)
}

// RecordAlignmentError counts a record rejected by feature alignment.
func RecordAlignmentError(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.alignmentErrors.WithLabelValues(kind).Inc()
}

// Dataset Metrics Functions.

// UpdateDatasetSize sets the size gauges of the loaded dataset.
func UpdateDatasetSize(rows, contacts, warnings int) {
	if !globalManager.enabled {
		return
	}
	globalManager.datasetRows.Set(float64(rows))
	globalManager.datasetContacts.Set(float64(contacts))
	globalManager.datasetWarnings.Set(float64(warnings))
}

// RecordDatasetLoadDuration records how long fetching and parsing took.
func RecordDatasetLoadDuration(durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.datasetLoadDuration.Observe(durationMs)
}

// Model Metrics Functions.

// UpdateModelLoaded marks the serving model version.
func UpdateModelLoaded(version, format string) {
	if !globalManager.enabled {
		return
	}
	globalManager.modelLoaded.Reset()
	globalManager.modelLoaded.WithLabelValues(version, format).Set(1)
}

// RecordModelLoadDuration records how long fetching and decoding the model took.
func RecordModelLoadDuration(durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.modelLoadDuration.Observe(durationMs)
}

// Object Storage Metrics Functions.

// RecordObjectFetch records one object storage read.
func RecordObjectFetch(backend, outcome string, latencyMs float64, size int) {
	if !globalManager.enabled {
		return
	}
	globalManager.objectFetches.WithLabelValues(backend, outcome).Inc()
	globalManager.objectFetchLatency.WithLabelValues(backend).Observe(latencyMs)
	if size > 0 {
		globalManager.objectFetchBytes.WithLabelValues(backend).Add(float64(size))
	}
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// RefreshInterval is how often callers should sample system gauges.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
