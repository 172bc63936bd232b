package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initIngestMetrics() {
	r.IngestRowsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsgraph_ingest_rows_total",
			Help: "Total number of ingested rows",
		},
		[]string{"status"},
	)

	r.IngestDroppedRelationships = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "opsgraph_ingest_dropped_relationships_total",
			Help: "Relationships dropped because an endpoint could not be resolved",
		},
	)

	r.IngestDuplicateEdges = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "opsgraph_ingest_duplicate_edges_total",
			Help: "Edges collapsed by deduplication during a build",
		},
	)

	r.IngestDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "opsgraph_ingest_duration_seconds",
			Help:    "End-to-end ingest duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)
}
