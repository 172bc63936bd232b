package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStorageMetrics() {
	r.StorageNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "opsgraph_storage_nodes_total",
			Help: "Total number of nodes in the current graph generation",
		},
	)

	r.StorageEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "opsgraph_storage_edges_total",
			Help: "Total number of edges in the current graph generation",
		},
	)

	r.StorageRebuildsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsgraph_storage_rebuilds_total",
			Help: "Total number of graph rebuilds",
		},
		[]string{"status"},
	)

	r.StorageRebuildSeconds = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "opsgraph_storage_rebuild_duration_seconds",
			Help:    "Graph rebuild duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)
}
