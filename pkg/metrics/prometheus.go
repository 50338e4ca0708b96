// Package metrics provides Prometheus metrics for the formcast pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Ingest and feature metrics
	recordsIngested   prometheus.Counter
	integrityIssues   *prometheus.CounterVec
	featuresGenerated prometheus.Counter
	featureLatency    prometheus.Histogram
	teamsProcessed    prometheus.Counter

	// Store metrics
	storeShardCount      prometheus.Gauge
	storeRecordsTotal    prometheus.Gauge
	storeRecordsPerShard *prometheus.GaugeVec
	storeWriteLatency    prometheus.Histogram

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Alignment metrics
	matchupRows        prometheus.Counter
	matchupRowsDropped *prometheus.CounterVec

	// Backtest metrics
	backtestRuns        prometheus.Counter
	backtestIterations  *prometheus.CounterVec
	backtestFitLatency  prometheus.Histogram
	backtestAccuracy    prometheus.Gauge
	backtestPredictions prometheus.Counter

	// Publisher metrics
	publishedMessages *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
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
		namespace:        "formcast",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.recordsIngested = m.counter("records_ingested_total", "Total number of team-game records ingested")
	m.integrityIssues = m.counterVec("integrity_issues_total", "Total number of data integrity issues by kind", "kind")
	m.featuresGenerated = m.counter("features_generated_total", "Total number of feature vectors generated")
	m.featureLatency = m.histogram("feature_latency_milliseconds", "Per-team feature generation latency in milliseconds")
	m.teamsProcessed = m.counter("teams_processed_total", "Total number of team timelines processed")

	m.storeShardCount = m.gauge("store_shard_count", "Total number of feature store shards")
	m.storeRecordsTotal = m.gauge("store_records_total", "Total number of entries in the feature store")
	m.storeRecordsPerShard = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_records_per_shard",
		Help:        "Number of feature store entries per shard",
		ConstLabels: m.constLabels,
	}, []string{"shard_id"})
	m.storeWriteLatency = m.histogram("store_write_latency_milliseconds", "Feature store write latency in milliseconds")

	m.queueSize = m.gauge("queue_size", "Current number of pending team jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum job queue capacity")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")

	m.workerCount = m.gauge("worker_count", "Configured number of feature workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently processing a job")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker job latency in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Total number of failed worker jobs")

	m.matchupRows = m.counter("matchup_rows_total", "Total number of matchup rows produced")
	m.matchupRowsDropped = m.counterVec("matchup_rows_dropped_total", "Total number of rows dropped during alignment by reason", "reason")

	m.backtestRuns = m.counter("backtest_runs_total", "Total number of backtest runs")
	m.backtestIterations = m.counterVec("backtest_iterations_total", "Total number of backtest iterations by status", "status")
	m.backtestFitLatency = m.histogram("backtest_fit_latency_milliseconds", "Per-iteration fit and predict latency in milliseconds")
	m.backtestAccuracy = m.gauge("backtest_accuracy_ratio", "Overall accuracy of the last backtest")
	m.backtestPredictions = m.counter("backtest_predictions_total", "Total number of predictions emitted")

	m.publishedMessages = m.counterVec("published_messages_total", "Total number of stream messages by stream and status", "stream", "status")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
}

// RecordRecordsIngested adds n ingested records.
func RecordRecordsIngested(n int) {
	globalManager.recordsIngested.Add(float64(n))
}

// RecordIntegrityIssue increments the integrity issue counter for kind.
func RecordIntegrityIssue(kind string) {
	globalManager.integrityIssues.WithLabelValues(kind).Inc()
}

// RecordFeaturesGenerated adds n generated feature vectors.
func RecordFeaturesGenerated(n int) {
	globalManager.featuresGenerated.Add(float64(n))
}

// RecordFeatureLatency records per-team feature latency in milliseconds.
func RecordFeatureLatency(latencyMs float64) {
	globalManager.featureLatency.Observe(latencyMs)
}

// RecordTeamProcessed increments the processed teams counter.
func RecordTeamProcessed() {
	globalManager.teamsProcessed.Inc()
}

// UpdateStoreShardCount sets the number of store shards.
func UpdateStoreShardCount(count int) {
	globalManager.storeShardCount.Set(float64(count))
}

// UpdateStoreRecordsTotal sets the number of stored entries.
func UpdateStoreRecordsTotal(count int) {
	globalManager.storeRecordsTotal.Set(float64(count))
}

// UpdateStoreRecordsPerShard sets the number of entries for a shard.
func UpdateStoreRecordsPerShard(shardID string, count int) {
	globalManager.storeRecordsPerShard.WithLabelValues(shardID).Set(float64(count))
}

// RecordStoreWriteLatency records store write latency in milliseconds.
func RecordStoreWriteLatency(latencyMs float64) {
	globalManager.storeWriteLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker job latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordMatchupRows adds n produced matchup rows.
func RecordMatchupRows(n int) {
	globalManager.matchupRows.Add(float64(n))
}

// RecordMatchupRowDropped increments the dropped rows counter for reason.
func RecordMatchupRowDropped(reason string) {
	globalManager.matchupRowsDropped.WithLabelValues(reason).Inc()
}

// RecordBacktestRun increments the backtest run counter.
func RecordBacktestRun() {
	globalManager.backtestRuns.Inc()
}

// RecordBacktestIteration increments the iteration counter for status ("scored" or "skipped").
func RecordBacktestIteration(status string) {
	globalManager.backtestIterations.WithLabelValues(status).Inc()
}

// RecordBacktestFitLatency records fit and predict latency of one iteration.
func RecordBacktestFitLatency(latencyMs float64) {
	globalManager.backtestFitLatency.Observe(latencyMs)
}

// UpdateBacktestAccuracy sets the overall accuracy of the last run.
func UpdateBacktestAccuracy(accuracy float64) {
	globalManager.backtestAccuracy.Set(accuracy)
}

// RecordBacktestPredictions adds n emitted predictions.
func RecordBacktestPredictions(n int) {
	globalManager.backtestPredictions.Add(float64(n))
}

// RecordPublished increments the stream message counter.
func RecordPublished(stream, status string) {
	globalManager.publishedMessages.WithLabelValues(stream, status).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
