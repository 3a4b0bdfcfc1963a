package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memoriad_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "memoriad_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	OperationsDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memoriad_operations_detected_total",
			Help: "Total number of memory operations proposed by the extraction model.",
		},
		[]string{"action"},
	)

	OperationsAppliedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memoriad_operations_applied_total",
			Help: "Total number of memory operations applied to the store.",
		},
		[]string{"action"},
	)

	GatewayFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memoriad_gateway_failures_total",
			Help: "Total number of failed extraction gateway calls.",
		},
		[]string{"reason"},
	)

	GatewayCallDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "memoriad_gateway_call_duration_seconds",
			Help:    "Extraction gateway call duration in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	RAGCacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memoriad_rag_cache_total",
			Help: "RAG query cache lookups by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		OperationsDetectedTotal,
		OperationsAppliedTotal,
		GatewayFailuresTotal,
		GatewayCallDuration,
		RAGCacheHitsTotal,
	)
}
