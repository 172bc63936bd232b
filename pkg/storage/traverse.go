package storage

import (
	"context"
	"fmt"
)

// Traversal bounds. MaxDepth is never unbounded: zero selects the default
// and anything above the hard ceiling is rejected.
const (
	DefaultMaxDepth = 5
	MaxAllowedDepth = 25

	DefaultMaxVisits = 10000
)

// ErrInvalidDepth is returned when a requested depth is out of range.
var ErrInvalidDepth = fmt.Errorf("traversal depth out of valid range [1, %d]", MaxAllowedDepth)

// Direction controls which edges a traversal follows.
type Direction int

const (
	DirectionBoth Direction = iota
	DirectionOutgoing
	DirectionIncoming
)

// Seed selects the starting node set of a traversal: either a single node
// id, or every node of a type whose label matches an optional filter.
type Seed struct {
	NodeID      uint64
	Type        EntityType
	LabelFilter string
}

// TraverseOptions configures one traversal.
type TraverseOptions struct {
	Seed          Seed
	Direction     Direction
	RelationTypes []RelationType // empty = all types
	MaxDepth      int            // 0 = DefaultMaxDepth
	MaxVisits     int            // 0 = DefaultMaxVisits; total node-visit budget
}

// PathRecord is one visited node together with the path that reached it.
// Edges[i] connects Nodes[i] to Nodes[i+1]; the final node is the visited one.
type PathRecord struct {
	Nodes []*Node
	Edges []*Edge
}

// Depth is the number of hops from the seed to the visited node.
func (p PathRecord) Depth() int { return len(p.Edges) }

// End returns the visited node at the end of the path.
func (p PathRecord) End() *Node { return p.Nodes[len(p.Nodes)-1] }

// TraversalResult holds all paths discovered within the budget.
type TraversalResult struct {
	Paths     []PathRecord
	Visited   int
	Truncated bool
}

type pathState struct {
	nodeID  uint64
	via     *Edge // edge that reached nodeID, nil for seeds
	parent  *pathState
	depth   int
	visited map[uint64]struct{} // node ids on this path, incl. nodeID
}

// Traverse performs a breadth-first expansion from the seed set.
//
// Cycle safety: each expansion path carries its own visited set, so a node
// already on the current path is never re-entered on that path, while it may
// still appear on disjoint paths. Termination is bounded by MaxDepth and by
// the MaxVisits budget; exhausting the budget or the context deadline marks
// the result Truncated instead of failing.
func (s *GraphStore) Traverse(ctx context.Context, opts TraverseOptions) (*TraversalResult, error) {
	g, err := s.snapshotGen()
	if err != nil {
		return nil, err
	}

	maxDepth := opts.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxDepth < 0 || maxDepth > MaxAllowedDepth {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDepth, opts.MaxDepth)
	}
	maxVisits := opts.MaxVisits
	if maxVisits <= 0 {
		maxVisits = DefaultMaxVisits
	}

	seeds := resolveSeeds(g, opts.Seed)

	result := &TraversalResult{Paths: make([]PathRecord, 0, len(seeds))}
	queue := make([]*pathState, 0, len(seeds))
	for _, id := range seeds {
		queue = append(queue, &pathState{
			nodeID:  id,
			visited: map[uint64]struct{}{id: {}},
		})
	}

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			result.Truncated = true
			return result, nil
		default:
		}
		if result.Visited >= maxVisits {
			result.Truncated = true
			return result, nil
		}

		state := queue[0]
		queue = queue[1:]
		result.Visited++
		result.Paths = append(result.Paths, materializePath(g, state))

		if state.depth >= maxDepth {
			continue
		}

		for _, nb := range g.neighbors(state.nodeID, opts.Direction, opts.RelationTypes) {
			if _, onPath := state.visited[nb.Node.ID]; onPath {
				continue
			}
			next := &pathState{
				nodeID:  nb.Node.ID,
				via:     nb.Edge,
				parent:  state,
				depth:   state.depth + 1,
				visited: make(map[uint64]struct{}, len(state.visited)+1),
			}
			for id := range state.visited {
				next.visited[id] = struct{}{}
			}
			next.visited[nb.Node.ID] = struct{}{}
			queue = append(queue, next)
		}
	}

	return result, nil
}

func resolveSeeds(g *generation, seed Seed) []uint64 {
	if seed.NodeID != 0 {
		if _, ok := g.nodes[seed.NodeID]; !ok {
			return nil
		}
		return []uint64{seed.NodeID}
	}
	if seed.Type == "" {
		return nil
	}
	ids := make([]uint64, 0, len(g.nodesByType[seed.Type]))
	for _, id := range g.nodesByType[seed.Type] {
		if seed.LabelFilter != "" && !containsFold(g.nodes[id].Label, seed.LabelFilter) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func materializePath(g *generation, state *pathState) PathRecord {
	// Walk parents back to the seed, then reverse.
	var chain []*pathState
	for st := state; st != nil; st = st.parent {
		chain = append(chain, st)
	}
	record := PathRecord{
		Nodes: make([]*Node, 0, len(chain)),
		Edges: make([]*Edge, 0, len(chain)-1),
	}
	for i := len(chain) - 1; i >= 0; i-- {
		st := chain[i]
		record.Nodes = append(record.Nodes, g.nodes[st.nodeID].Clone())
		if st.via != nil {
			record.Edges = append(record.Edges, st.via.Clone())
		}
	}
	return record
}
