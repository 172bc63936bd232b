package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initQueryMetrics() {
	r.QueriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsgraph_queries_total",
			Help: "Total number of context queries",
		},
		[]string{"intent", "status"},
	)

	r.QueryDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opsgraph_query_duration_seconds",
			Help:    "Context query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"intent"},
	)

	r.QueryNodesVisited = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opsgraph_query_nodes_visited",
			Help:    "Nodes visited by the traversal backing a query",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 10000},
		},
		[]string{"intent"},
	)

	r.QueriesTruncated = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsgraph_queries_truncated_total",
			Help: "Queries whose traversal hit a depth, visit, or deadline bound",
		},
		[]string{"intent"},
	)

	r.IntentScore = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "opsgraph_intent_last_score",
			Help: "Normalized keyword score of the most recent classification",
		},
		[]string{"intent"},
	)
}
