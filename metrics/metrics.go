package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session insight pipeline
	InsightPipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onbored_insight_pipeline_duration_seconds",
			Help:    "Duration of session insight pipeline runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"}, // cached, created, failed
	)

	InsightCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onbored_insight_cache_hits_total",
			Help: "Pipeline runs answered by an already stored insight",
		},
	)

	InsightConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onbored_insight_create_conflicts_total",
			Help: "Insight creates that lost to a concurrent run for the same session",
		},
	)

	InferenceCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onbored_inference_calls_total",
			Help: "Insight generation calls by outcome",
		},
		[]string{"outcome"}, // ok, empty, error
	)

	InferenceBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "onbored_inference_breaker_state",
			Help: "Inference circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Derivations
	JourneyGraphSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onbored_journey_graph_size",
			Help:    "Number of nodes and links in built journey graphs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"kind"}, // nodes, links
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onbored_store_query_errors_total",
			Help: "Store query errors by store and operation",
		},
		[]string{"store", "operation"},
	)
)
