package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval and generation Prometheus metrics.
var (
	// RetrievalHits counts hits per stage: "returned" by the index,
	// "above_threshold" after similarity filtering, "fused" after the relational join.
	RetrievalHits = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_hits",
			Help:      "Hits per retrieval stage",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"path", "stage"},
	)

	IntentFiltersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intent_filters_total",
			Help:      "Structured filters extracted from queries",
		},
		[]string{"filter"},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "Total generation provider calls",
		},
		[]string{"provider", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_request_duration_seconds",
			Help:      "Generation duration in seconds, retries included",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	GenerationRateLimitRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_rate_limit_retries_total",
			Help:      "Retries scheduled after HTTP 429",
		},
		[]string{"provider"},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers retrieval and generation metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalHits)
	prometheus.MustRegister(IntentFiltersTotal)
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(GenerationRateLimitRetries)
	queryMetricsRegistered = true
}
