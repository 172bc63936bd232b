package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestGraphInvariants verifies invariants that must hold for any batch the
// store accepts: referential integrity of edges, deterministic export order,
// and bounded traversal.
func TestGraphInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("accepted batches keep referential integrity", prop.ForAll(
		func(nodeCount int, edgePairs []int) bool {
			store := NewGraphStore(nil)
			defer store.Close()

			nodes := make([]Node, 0, nodeCount)
			for i := 1; i <= nodeCount; i++ {
				nodes = append(nodes, Node{
					ID:    uint64(i),
					Label: fmt.Sprintf("Asset %d", i),
					Type:  TypeAsset,
				})
			}

			edges := make([]Edge, 0, len(edgePairs)/2)
			seen := make(map[[2]uint64]struct{})
			var edgeID uint64 = 1
			for i := 0; i+1 < len(edgePairs); i += 2 {
				src := uint64(edgePairs[i]%nodeCount) + 1
				dst := uint64(edgePairs[i+1]%nodeCount) + 1
				key := [2]uint64{src, dst}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				edges = append(edges, Edge{
					ID:       edgeID,
					SourceID: src,
					TargetID: dst,
					Type:     RelRelatesTo,
				})
				edgeID++
			}

			if _, err := store.ReplaceGraph(nodes, edges); err != nil {
				return false
			}

			exportedNodes, exportedEdges, err := store.Export()
			if err != nil {
				return false
			}
			known := make(map[uint64]struct{}, len(exportedNodes))
			for i, n := range exportedNodes {
				if i > 0 && exportedNodes[i-1].ID >= n.ID {
					return false
				}
				known[n.ID] = struct{}{}
			}
			for _, e := range exportedEdges {
				if _, ok := known[e.SourceID]; !ok {
					return false
				}
				if _, ok := known[e.TargetID]; !ok {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 30),
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.Property("traversal never exceeds depth and always terminates", prop.ForAll(
		func(nodeCount, maxDepth int) bool {
			store := NewGraphStore(nil)
			defer store.Close()

			// A ring: worst case for naive cycle handling.
			nodes := make([]Node, 0, nodeCount)
			edges := make([]Edge, 0, nodeCount)
			for i := 1; i <= nodeCount; i++ {
				nodes = append(nodes, Node{
					ID:    uint64(i),
					Label: fmt.Sprintf("Asset %d", i),
					Type:  TypeAsset,
				})
				next := uint64(i%nodeCount) + 1
				edges = append(edges, Edge{
					ID:       uint64(i),
					SourceID: uint64(i),
					TargetID: next,
					Type:     RelRelatesTo,
				})
			}
			if _, err := store.ReplaceGraph(nodes, edges); err != nil {
				return false
			}

			result, err := store.Traverse(context.Background(), TraverseOptions{
				Seed:      Seed{NodeID: 1},
				Direction: DirectionOutgoing,
				MaxDepth:  maxDepth,
			})
			if err != nil {
				return false
			}
			for _, path := range result.Paths {
				if path.Depth() > MaxAllowedDepth {
					return false
				}
				if maxDepth > 0 && path.Depth() > maxDepth {
					return false
				}
			}
			return true
		},
		gen.IntRange(2, 20),
		gen.IntRange(1, MaxAllowedDepth),
	))

	properties.TestingRun(t)
}
