package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the process registry. It doubles as the pipeline
// observer wired into the usecases.
type Metrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	stageDuration          *prometheus.HistogramVec
	retrievalFallbackTotal prometheus.Counter
	abstentionTotal        prometheus.Counter
	retrievedChunks        prometheus.Histogram
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "minirag",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "minirag",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "minirag",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "minirag",
			Subsystem: "pipeline",
			Name:      "stage_duration_ms",
			Help:      "Per-stage pipeline duration in milliseconds.",
			Buckets:   []float64{1, 5, 10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"service", "flow", "stage"},
	)
	retrievalFallbackTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "minirag",
			Subsystem: "pipeline",
			Name:      "retrieval_fallback_total",
			Help:      "Retrievals served by the client-side cosine fallback.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	abstentionTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "minirag",
			Subsystem: "pipeline",
			Name:      "abstention_total",
			Help:      "Query responses answered with the abstention string.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievedChunks := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "minirag",
			Subsystem: "pipeline",
			Name:      "retrieved_chunks",
			Help:      "Reranked chunk count returned per query.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		requestTotal,
		requestDuration,
		requestInFlight,
		stageDuration,
		retrievalFallbackTotal,
		abstentionTotal,
		retrievedChunks,
	)

	return &Metrics{
		registry:        registry,
		service:         service,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,

		stageDuration:          stageDuration,
		retrievalFallbackTotal: retrievalFallbackTotal,
		abstentionTotal:        abstentionTotal,
		retrievedChunks:        retrievedChunks,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}
	m.requestInFlight.Inc()
}

func (m *Metrics) RequestFinished() {
	if m == nil {
		return
	}
	m.requestInFlight.Dec()
}

func (m *Metrics) ObserveRequest(method, path string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(m.service, method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(m.service, method, path).Observe(seconds)
}

func (m *Metrics) ObserveStage(flow, stage string, ms float64) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(m.service, flow, stage).Observe(ms)
}

func (m *Metrics) ObserveRetrievedChunks(n int) {
	if m == nil {
		return
	}
	m.retrievedChunks.Observe(float64(n))
}

// RetrievalFallback implements ports.PipelineObserver.
func (m *Metrics) RetrievalFallback() {
	if m == nil {
		return
	}
	m.retrievalFallbackTotal.Inc()
}

// Abstention implements ports.PipelineObserver.
func (m *Metrics) Abstention() {
	if m == nil {
		return
	}
	m.abstentionTotal.Inc()
}
