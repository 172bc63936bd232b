// Package metrics owns the Prometheus registry and every metric the server
// exports. Metrics are grouped by concern across init_*.go files.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Storage Metrics
	StorageNodesTotal     prometheus.Gauge
	StorageEdgesTotal     prometheus.Gauge
	StorageRebuildsTotal  *prometheus.CounterVec
	StorageRebuildSeconds prometheus.Histogram

	// Ingest Metrics
	IngestRowsTotal            *prometheus.CounterVec
	IngestDroppedRelationships prometheus.Counter
	IngestDuplicateEdges       prometheus.Counter
	IngestDuration             prometheus.Histogram

	// Query Metrics
	QueriesTotal      *prometheus.CounterVec
	QueryDuration     *prometheus.HistogramVec
	QueryNodesVisited *prometheus.HistogramVec
	QueriesTruncated  *prometheus.CounterVec
	IntentScore       *prometheus.GaugeVec

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initStorageMetrics()
	r.initIngestMetrics()
	r.initQueryMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
