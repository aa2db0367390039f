package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// recommendation engine and its adapters.
type Metrics struct {
	RecommendationsTotal prometheus.Counter
	ChartsGenerated      *prometheus.CounterVec // labels: kind={scatter,histogram,bar,heatmap,box}
	RecommendDuration    prometheus.Histogram
	DatasetSize          prometheus.Histogram

	// Stream mode metrics.
	RequestsConsumed        prometheus.Counter
	RecommendationsProduced prometheus.Counter
	TransformErrors         prometheus.Counter
	StreamRunning           prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Upstream data API metrics.
	DataAPIRequests prometheus.Counter
	DataAPIErrors   prometheus.Counter
	DataAPICache    *prometheus.CounterVec // labels: result={hit,miss}
	DataAPIDuration prometheus.Histogram
	DataAPIEnabled  prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		RecommendationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_insight",
			Name:      "recommendations_total",
			Help:      "Total recommendation passes served.",
		}),
		ChartsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "argo_insight",
			Name:      "charts_generated_total",
			Help:      "Chart specs emitted, by kind.",
		}, []string{"kind"}),
		RecommendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "argo_insight",
			Name:      "recommend_duration_seconds",
			Help:      "Duration of one normalize-classify-generate-rank-aggregate pass.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		DatasetSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "argo_insight",
			Name:      "dataset_size_records",
			Help:      "Number of records per recommendation request.",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
		}),
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_insight",
			Name:      "requests_consumed_total",
			Help:      "Total requests read from the source topic.",
		}),
		RecommendationsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_insight",
			Name:      "recommendations_produced_total",
			Help:      "Total recommendations written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_insight",
			Name:      "transform_errors_total",
			Help:      "Total malformed stream requests skipped.",
		}),
		StreamRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "argo_insight",
			Name:      "stream_running",
			Help:      "1 when the stream pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "argo_insight",
			Name:      "batch_size",
			Help:      "Number of requests per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "argo_insight",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-recommend-produce cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		DataAPIRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_insight",
			Name:      "data_api_requests_total",
			Help:      "Requests issued to the upstream data API.",
		}),
		DataAPIErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_insight",
			Name:      "data_api_errors_total",
			Help:      "Failed upstream data API requests.",
		}),
		DataAPICache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "argo_insight",
			Name:      "data_api_cache_total",
			Help:      "Data API cache lookups, by result.",
		}, []string{"result"}),
		DataAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "argo_insight",
			Name:      "data_api_duration_seconds",
			Help:      "Upstream data API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		DataAPIEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "argo_insight",
			Name:      "data_api_enabled",
			Help:      "1 when upstream data fetching is enabled, 0 otherwise.",
		}),
	}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecommendationsTotal,
		m.ChartsGenerated,
		m.RecommendDuration,
		m.DatasetSize,
		m.RequestsConsumed,
		m.RecommendationsProduced,
		m.TransformErrors,
		m.StreamRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.DataAPIRequests,
		m.DataAPIErrors,
		m.DataAPICache,
		m.DataAPIDuration,
		m.DataAPIEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
