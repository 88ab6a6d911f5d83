package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for ingestion and monitoring.
type Metrics struct {
	IngestOutcomes   *prometheus.CounterVec // labels: result={created,deduplicated,rejected}
	ClassifyFailures *prometheus.CounterVec // labels: reason={timeout,malformed-response,service-unavailable,low-relevance}
	ClassifyDuration prometheus.Histogram
	PollCycles       *prometheus.CounterVec // labels: source, outcome={success,error}
	MonitorRunning   prometheus.Gauge
}

// NewMetrics registers all collectors with the given registerer. Tests pass
// a fresh prometheus.NewRegistry() to avoid collisions.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		IngestOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_watch",
			Name:      "ingest_outcomes_total",
			Help:      "Ingestion pipeline outcomes by result.",
		}, []string{"result"}),
		ClassifyFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_watch",
			Name:      "classify_failures_total",
			Help:      "Classification failures by reason.",
		}, []string{"reason"}),
		ClassifyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "disaster_watch",
			Name:      "classify_duration_seconds",
			Help:      "Duration of classifier service calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		PollCycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_watch",
			Name:      "poll_cycles_total",
			Help:      "Source poll cycles by source and outcome.",
		}, []string{"source", "outcome"}),
		MonitorRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "disaster_watch",
			Name:      "monitor_running",
			Help:      "1 when the source monitor is active, 0 when shut down.",
		}),
	}
}
