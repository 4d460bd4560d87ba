// Package metrics provides Prometheus metrics for the leaguedesk service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus instruments for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Reconciliation metrics
	replaysIngested      prometheus.Counter
	replayParseFailures  prometheus.Counter
	suggestionsMatched   prometheus.Counter
	suggestionsUnmatched prometheus.Counter
	extractLatency       prometheus.Histogram
	resolveLatency       prometheus.Histogram

	// Confirmation metrics
	confirmations         prometheus.Counter
	confirmationConflicts prometheus.Counter
	confirmationRejects   prometheus.Counter

	// Blob store metrics
	blobWrites     prometheus.Counter
	blobDuplicates prometheus.Counter
	dedupeSize     prometheus.Gauge

	// Queue and worker metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueEnqueueErrs prometheus.Counter
	workerCount      prometheus.Gauge
	workerErrors     prometheus.Counter

	// Store metrics
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all instruments.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "leaguedesk",
		subsystem:        "",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.replaysIngested = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "replays_ingested_total",
		Help: "Replay files accepted for reconciliation.",
	})
	m.replayParseFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "replay_parse_failures_total",
		Help: "Replay files whose metadata extraction failed.",
	})
	m.suggestionsMatched = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "suggestions_matched_total",
		Help: "Replays matched to a scheduled set.",
	})
	m.suggestionsUnmatched = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "suggestions_unmatched_total",
		Help: "Replays that matched no scheduled set.",
	})
	m.extractLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "extract_latency_ms",
		Help:    "Replay metadata extraction latency in milliseconds.",
		Buckets: m.histogramBuckets,
	})
	m.resolveLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "resolve_latency_ms",
		Help:    "Per-replay resolution latency in milliseconds.",
		Buckets: m.histogramBuckets,
	})

	m.confirmations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "confirmations_total",
		Help: "Set results written successfully.",
	})
	m.confirmationConflicts = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "confirmation_conflicts_total",
		Help: "Confirmations rejected because a result already existed.",
	})
	m.confirmationRejects = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "confirmation_rejects_total",
		Help: "Confirmations rejected by validation or unknown slots.",
	})

	m.blobWrites = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "blob_writes_total",
		Help: "Replay blobs written to storage.",
	})
	m.blobDuplicates = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "blob_duplicates_total",
		Help: "Replay uploads skipped because the digest already existed.",
	})
	m.dedupeSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "dedupe_cache_size",
		Help: "Entries currently held in the digest cache.",
	})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_size",
		Help: "Resolution jobs currently queued.",
	})
	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_capacity",
		Help: "Configured resolution queue capacity.",
	})
	m.queueEnqueues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueues_total",
		Help: "Jobs enqueued for resolution.",
	})
	m.queueDequeues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_dequeues_total",
		Help: "Jobs handed to workers.",
	})
	m.queueEnqueueErrs = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueue_errors_total",
		Help: "Enqueue attempts refused (closed or full queue).",
	})
	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_count",
		Help: "Configured resolution workers.",
	})
	m.workerErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_errors_total",
		Help: "Worker failures while resolving a replay.",
	})

	m.storeLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "store_latency_ms",
		Help:    "Relational store operation latency in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"op"})
	m.storeErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "store_errors_total",
		Help: "Relational store operation failures.",
	}, []string{"op"})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_ms",
		Help:    "HTTP request latency in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	return m
}

// GetRegistry exposes the custom registry for the metrics endpoint.
func GetRegistry() *prometheus.Registry { return customRegistry }

// Reconciliation.
func RecordReplayIngested() { globalManager.replaysIngested.Inc() }
func RecordParseFailure() { globalManager.replayParseFailures.Inc() }
func RecordSuggestionMatched() { globalManager.suggestionsMatched.Inc() }
func RecordSuggestionUnmatched() { globalManager.suggestionsUnmatched.Inc() }
func RecordExtractLatency(ms float64) { globalManager.extractLatency.Observe(ms) }
func RecordResolveLatency(ms float64) { globalManager.resolveLatency.Observe(ms) }

// Confirmation.
func RecordConfirmation() { globalManager.confirmations.Inc() }
func RecordConfirmationConflict() { globalManager.confirmationConflicts.Inc() }
func RecordConfirmationReject() { globalManager.confirmationRejects.Inc() }

// Blob store.
func RecordBlobWrite() { globalManager.blobWrites.Inc() }
func RecordBlobDuplicate() { globalManager.blobDuplicates.Inc() }
func UpdateDedupeSize(n int64) { globalManager.dedupeSize.Set(float64(n)) }

// Queue and workers.
func UpdateQueueSize(n int) { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }
func RecordQueueEnqueue() { globalManager.queueEnqueues.Inc() }
func RecordQueueDequeue() { globalManager.queueDequeues.Inc() }
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrs.Inc() }
func UpdateWorkerCount(n int) { globalManager.workerCount.Set(float64(n)) }
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// Store.
func RecordStoreLatency(op string, ms float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(ms)
}

func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// HTTP.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}
