package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordRebuild records a graph rebuild and updates the size gauges.
func (r *Registry) RecordRebuild(status string, duration time.Duration, nodes, edges int) {
	r.StorageRebuildsTotal.WithLabelValues(status).Inc()
	r.StorageRebuildSeconds.Observe(duration.Seconds())
	if status == "ok" {
		r.StorageNodesTotal.Set(float64(nodes))
		r.StorageEdgesTotal.Set(float64(edges))
	}
}

// RecordIngest records the outcome of one extraction plus build pass.
func (r *Registry) RecordIngest(duration time.Duration, processed, skipped, dropped, duplicates int) {
	r.IngestRowsTotal.WithLabelValues("processed").Add(float64(processed))
	r.IngestRowsTotal.WithLabelValues("skipped").Add(float64(skipped))
	r.IngestDroppedRelationships.Add(float64(dropped))
	r.IngestDuplicateEdges.Add(float64(duplicates))
	r.IngestDuration.Observe(duration.Seconds())
}

// RecordQuery records a context query execution.
func (r *Registry) RecordQuery(intent, status string, duration time.Duration, visited int, truncated bool) {
	r.QueriesTotal.WithLabelValues(intent, status).Inc()
	r.QueryDuration.WithLabelValues(intent).Observe(duration.Seconds())
	r.QueryNodesVisited.WithLabelValues(intent).Observe(float64(visited))
	if truncated {
		r.QueriesTruncated.WithLabelValues(intent).Inc()
	}
}

// RecordIntentScores publishes the per-intent scores of a classification.
func (r *Registry) RecordIntentScores(scores map[string]float64) {
	for intent, score := range scores {
		r.IntentScore.WithLabelValues(intent).Set(score)
	}
}
