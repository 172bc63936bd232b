package health

import (
	"github.com/dd0wney/cluso-opsgraph/pkg/storage"
)

// StoreCheck reports whether the graph store is reachable. A reachable but
// empty store is degraded, not unhealthy: the server can answer questions,
// just not usefully, until data is uploaded.
func StoreCheck(store *storage.GraphStore) CheckFunc {
	return func() Check {
		check := Check{Name: "graph_store"}

		stats, err := store.Stats()
		if err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
			return check
		}

		check.Details = map[string]any{
			"nodes":      stats.Nodes,
			"edges":      stats.Edges,
			"generation": stats.GenerationID,
		}
		if stats.Nodes == 0 {
			check.Status = StatusDegraded
			check.Message = "graph is empty; upload data to enable retrieval"
			return check
		}

		check.Status = StatusHealthy
		return check
	}
}

// ProcessCheck is the trivial liveness check: the process can run Go code.
func ProcessCheck() CheckFunc {
	return func() Check {
		return Check{Name: "process", Status: StatusHealthy}
	}
}
