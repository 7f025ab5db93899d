package metrics

import "github.com/prometheus/client_golang/prometheus"

// Provider-facing Prometheus metrics (embedding and generation APIs).
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsgpt",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newsgpt",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsgpt",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	GenerationStreamsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsgpt",
			Name:      "generation_streams_total",
			Help:      "Total generation streams by terminal outcome",
		},
		[]string{"model", "outcome"}, // "completed" / "failed" / "canceled"
	)

	GenerationFragmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsgpt",
			Name:      "generation_fragments_total",
			Help:      "Total fragments relayed to clients",
		},
		[]string{"model"},
	)

	GenerationStreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newsgpt",
			Name:      "generation_stream_duration_seconds",
			Help:      "Generation stream duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"model"},
	)
)

var providerMetricsRegistered bool

// RegisterProviderMetrics registers provider metrics. Must be called once from main.
func RegisterProviderMetrics() {
	if providerMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(GenerationStreamsTotal)
	prometheus.MustRegister(GenerationFragmentsTotal)
	prometheus.MustRegister(GenerationStreamDuration)
	providerMetricsRegistered = true
}
