// Package builder materializes an ontology into concrete node and edge
// batches: sequential id assignment, label-to-id endpoint resolution, and
// edge deduplication. Relationships whose endpoints cannot be resolved are
// dropped with a warning, never a failure — source data is expected to be
// incomplete.
package builder

import (
	"github.com/dd0wney/cluso-opsgraph/pkg/extract"
	"github.com/dd0wney/cluso-opsgraph/pkg/logging"
	"github.com/dd0wney/cluso-opsgraph/pkg/storage"
)

// Result is the materialized graph batch plus observability counts.
type Result struct {
	Nodes                []storage.Node `json:"nodes"`
	Edges                []storage.Edge `json:"edges"`
	DroppedRelationships int            `json:"dropped_relationships"`
	DuplicateEdges       int            `json:"duplicate_edges"`
}

type edgeKey struct {
	source, target uint64
	typ            storage.RelationType
}

// Build assigns each unique (label, type) entity a fresh sequential id,
// resolves relationship endpoints by label, and deduplicates the resolved
// edges on (source, target, type).
//
// An empty ontology yields an empty batch with zero counts, not an error.
func Build(ont extract.Ontology, logger logging.Logger) Result {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Component("builder"))

	nodes := make([]storage.Node, 0, len(ont.Entities))
	idByLabel := make(map[string]uint64, len(ont.Entities))

	var nextID uint64 = 1
	for _, entity := range ont.Entities {
		nodes = append(nodes, storage.Node{
			ID:    nextID,
			Label: entity.Label,
			Type:  entity.Type,
		})
		// Relationships reference endpoints by bare label. The extractor
		// prefixes work order labels, so label collisions across types are
		// not expected; last writer wins if one occurs.
		idByLabel[entity.Label] = nextID
		nextID++
	}

	edges := make([]storage.Edge, 0, len(ont.Relationships))
	seen := make(map[edgeKey]struct{}, len(ont.Relationships))
	result := Result{}

	var nextEdgeID uint64 = 1
	for _, rel := range ont.Relationships {
		sourceID, sourceOK := idByLabel[rel.SourceLabel]
		targetID, targetOK := idByLabel[rel.TargetLabel]
		if !sourceOK || !targetOK {
			result.DroppedRelationships++
			logger.Warn("dropping unresolved relationship",
				logging.String("source", rel.SourceLabel),
				logging.String("target", rel.TargetLabel),
				logging.String("type", string(rel.Type)),
			)
			continue
		}
		key := edgeKey{source: sourceID, target: targetID, typ: rel.Type}
		if _, dup := seen[key]; dup {
			result.DuplicateEdges++
			continue
		}
		seen[key] = struct{}{}
		edges = append(edges, storage.Edge{
			ID:       nextEdgeID,
			SourceID: sourceID,
			TargetID: targetID,
			Type:     rel.Type,
		})
		nextEdgeID++
	}

	result.Nodes = nodes
	result.Edges = edges

	if result.DroppedRelationships > 0 {
		logger.Warn("build finished with dropped relationships",
			logging.Dropped(result.DroppedRelationships),
		)
	}
	logger.Info("graph batch built",
		logging.Nodes(len(nodes)),
		logging.Edges(len(edges)),
	)

	return result
}
