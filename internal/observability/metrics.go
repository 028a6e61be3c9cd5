package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "emergency"

// Metrics holds the Prometheus counters, histograms, and gauges for report triage.
type Metrics struct {
	ReportsProcessed  *prometheus.CounterVec // labels: outcome={merged,created}
	ReportRejections  *prometheus.CounterVec // labels: reason={invalid,store_error}
	DuplicateWarnings prometheus.Histogram
	SkippedCandidates prometheus.Counter

	// Similarity oracle.
	OracleRequests *prometheus.CounterVec // labels: outcome={success,error,timeout,skipped}
	OracleDuration prometheus.Histogram

	// Response queue.
	QueueRequests prometheus.Counter
	QueueSize     prometheus.Histogram

	// Event sinks.
	RealtimeClients   prometheus.Gauge
	WebhookDeliveries *prometheus.CounterVec // labels: result={delivered,retry,failed}
	EventsPublished   *prometheus.CounterVec // labels: sink={webhook,realtime,kafka}, result={ok,error}
}

// NewMetrics creates and registers all triage metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReportsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_processed_total",
			Help:      "Reports accepted, by merge outcome.",
		}, []string{"outcome"}),
		ReportRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_rejections_total",
			Help:      "Reports that did not produce an outcome, by reason.",
		}, []string{"reason"}),
		DuplicateWarnings: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "duplicate_warnings",
			Help:      "Number of duplicate candidates attached to a newly created incident.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		}),
		SkippedCandidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_candidates_total",
			Help:      "Stored incidents ignored during matching because they have no location.",
		}),
		OracleRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Similarity oracle calls by outcome.",
		}, []string{"outcome"}),
		OracleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_duration_seconds",
			Help:      "Similarity oracle round-trip duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		}),
		QueueRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_requests_total",
			Help:      "Response queue requests served.",
		}),
		QueueSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "queue_size",
			Help:      "Number of entries returned per queue request.",
			Buckets:   []float64{0, 5, 10, 25, 50, 100, 200},
		}),
		RealtimeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_clients",
			Help:      "Connected WebSocket subscribers.",
		}),
		WebhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Webhook delivery attempts by result.",
		}, []string{"result"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Incident events handed to each sink, by result.",
		}, []string{"sink", "result"}),
	}

	prometheus.MustRegister(
		m.ReportsProcessed,
		m.ReportRejections,
		m.DuplicateWarnings,
		m.SkippedCandidates,
		m.OracleRequests,
		m.OracleDuration,
		m.QueueRequests,
		m.QueueSize,
		m.RealtimeClients,
		m.WebhookDeliveries,
		m.EventsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ReportsProcessed:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "reports_processed_total"}, []string{"outcome"}),
		ReportRejections:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "report_rejections_total"}, []string{"reason"}),
		DuplicateWarnings: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "duplicate_warnings"}),
		SkippedCandidates: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "skipped_candidates_total"}),
		OracleRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "oracle_requests_total"}, []string{"outcome"}),
		OracleDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "oracle_duration_seconds"}),
		QueueRequests:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "queue_requests_total"}),
		QueueSize:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "queue_size"}),
		RealtimeClients:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "realtime_clients"}),
		WebhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "webhook_deliveries_total"}, []string{"result"}),
		EventsPublished:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "events_published_total"}, []string{"sink", "result"}),
	}
}
