package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing Prometheus metrics.
var (
	NormalizeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "logdex",
			Name:      "normalize_total",
			Help:      "Total number of log entries normalized by outcome",
		},
		[]string{"result"}, // "indexed" / "not_found" / "error"
	)

	NormalizeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "logdex",
			Name:      "normalize_duration_seconds",
			Help:      "Time to load, normalize and index one log entry",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	UpsertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "logdex",
			Name:      "index_upserts_total",
			Help:      "Total number of upsert operations sent to the search engine",
		},
		[]string{"index"},
	)

	DetailsSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "logdex",
			Name:      "details_segments_skipped_total",
			Help:      "Malformed details segments dropped during normalization",
		},
	)
)

var indexingMetricsRegistered bool

// RegisterIndexingMetrics registers Prometheus indexing metrics. Must be called once from main.
func RegisterIndexingMetrics() {
	if indexingMetricsRegistered {
		return
	}
	prometheus.MustRegister(NormalizeTotal)
	prometheus.MustRegister(NormalizeDuration)
	prometheus.MustRegister(UpsertsTotal)
	prometheus.MustRegister(DetailsSkippedTotal)
	indexingMetricsRegistered = true
}
