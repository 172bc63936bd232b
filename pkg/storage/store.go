// Package storage owns the persisted node/edge collections and the bounded
// traversal primitive. The store is generational: every ingestion builds a
// complete new immutable generation and swaps a single pointer, so readers
// always observe either the pre-rebuild or the post-rebuild graph.
package storage

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-opsgraph/pkg/logging"
)

// GraphStore is the in-memory graph store.
//
// Concurrency model: ingestMu serializes ReplaceGraph calls (single
// writer); mu guards only the generation pointer and the closed flag.
// Read operations grab the current generation under a short RLock and then
// run lock-free against its immutable contents.
type GraphStore struct {
	mu       sync.RWMutex
	ingestMu sync.Mutex

	gen    *generation
	closed bool

	dataDir string
	persist bool

	logger logging.Logger
}

// generation is one fully-built graph state. Never mutated after publish.
type generation struct {
	id        string
	createdAt int64

	nodes map[uint64]*Node
	edges map[uint64]*Edge

	nodesByType   map[EntityType][]uint64
	idByLabelType map[labelTypeKey]uint64
	outgoing      map[uint64][]uint64 // node id -> edge ids, sorted
	incoming      map[uint64][]uint64
}

type labelTypeKey struct {
	label string
	typ   EntityType
}

// Statistics reports store-level counters.
type Statistics struct {
	Nodes        uint64 `json:"nodes"`
	Edges        uint64 `json:"edges"`
	GenerationID string `json:"generation_id"`
	LastRebuild  int64  `json:"last_rebuild"`
}

// ReplaceResult reports what a ReplaceGraph call committed.
type ReplaceResult struct {
	GenerationID string `json:"generation_id"`
	NodesCreated int    `json:"nodes_created"`
	EdgesCreated int    `json:"edges_created"`
}

// NewGraphStore creates an empty in-memory store.
func NewGraphStore(logger logging.Logger) *GraphStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GraphStore{
		gen:    newGeneration(nil, nil),
		logger: logger.With(logging.Component("storage")),
	}
}

// NewPersistentGraphStore creates a store that saves a compressed snapshot
// to dataDir after every rebuild and restores it on startup. A missing
// snapshot is not an error (fresh store).
func NewPersistentGraphStore(dataDir string, logger logging.Logger) (*GraphStore, error) {
	s := NewGraphStore(logger)
	s.dataDir = dataDir
	s.persist = true

	doc, err := loadSnapshot(s.snapshotPath())
	if err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	if doc != nil {
		gen, err := buildGeneration(doc.Nodes, doc.Edges)
		if err != nil {
			return nil, fmt.Errorf("restore snapshot: %w", err)
		}
		gen.id = doc.GenerationID
		gen.createdAt = doc.SavedAt
		s.gen = gen
		s.logger.Info("snapshot restored",
			logging.Generation(gen.id),
			logging.Nodes(len(gen.nodes)),
			logging.Edges(len(gen.edges)),
		)
	}
	return s, nil
}

func newGeneration(nodes map[uint64]*Node, edges map[uint64]*Edge) *generation {
	g := &generation{
		id:            uuid.NewString(),
		createdAt:     time.Now().Unix(),
		nodes:         nodes,
		edges:         edges,
		nodesByType:   make(map[EntityType][]uint64),
		idByLabelType: make(map[labelTypeKey]uint64),
		outgoing:      make(map[uint64][]uint64),
		incoming:      make(map[uint64][]uint64),
	}
	if g.nodes == nil {
		g.nodes = make(map[uint64]*Node)
	}
	if g.edges == nil {
		g.edges = make(map[uint64]*Edge)
	}
	return g
}

// buildGeneration indexes a node/edge batch into a generation, enforcing
// the batch invariants: unique (label, type), unique (source, target, type),
// and both edge endpoints present.
func buildGeneration(nodes []Node, edges []Edge) (*generation, error) {
	g := newGeneration(nil, nil)
	now := time.Now().Unix()

	for i := range nodes {
		n := nodes[i].Clone()
		if n.CreatedAt == 0 {
			n.CreatedAt = now
		}
		if n.UpdatedAt == 0 {
			n.UpdatedAt = now
		}
		if _, exists := g.nodes[n.ID]; exists {
			return nil, fmt.Errorf("%w: node id %d", ErrDuplicateNode, n.ID)
		}
		key := labelTypeKey{label: n.Label, typ: n.Type}
		if _, exists := g.idByLabelType[key]; exists {
			return nil, fmt.Errorf("%w: (%q, %s)", ErrDuplicateNode, n.Label, n.Type)
		}
		g.nodes[n.ID] = n
		g.idByLabelType[key] = n.ID
		g.nodesByType[n.Type] = append(g.nodesByType[n.Type], n.ID)
	}

	type edgeKey struct {
		source, target uint64
		typ            RelationType
	}
	seen := make(map[edgeKey]struct{}, len(edges))

	for i := range edges {
		e := edges[i].Clone()
		if e.CreatedAt == 0 {
			e.CreatedAt = now
		}
		if e.UpdatedAt == 0 {
			e.UpdatedAt = now
		}
		if _, exists := g.edges[e.ID]; exists {
			return nil, fmt.Errorf("%w: edge id %d", ErrDuplicateEdge, e.ID)
		}
		key := edgeKey{source: e.SourceID, target: e.TargetID, typ: e.Type}
		if _, exists := seen[key]; exists {
			return nil, fmt.Errorf("%w: (%d, %d, %s)", ErrDuplicateEdge, e.SourceID, e.TargetID, e.Type)
		}
		if _, exists := g.nodes[e.SourceID]; !exists {
			return nil, fmt.Errorf("%w: source %d of edge %d", ErrMissingEndpoint, e.SourceID, e.ID)
		}
		if _, exists := g.nodes[e.TargetID]; !exists {
			return nil, fmt.Errorf("%w: target %d of edge %d", ErrMissingEndpoint, e.TargetID, e.ID)
		}
		seen[key] = struct{}{}
		g.edges[e.ID] = e
		g.outgoing[e.SourceID] = append(g.outgoing[e.SourceID], e.ID)
		g.incoming[e.TargetID] = append(g.incoming[e.TargetID], e.ID)
	}

	// Sorted id lists keep every read path deterministic.
	for t := range g.nodesByType {
		sort.Slice(g.nodesByType[t], func(a, b int) bool { return g.nodesByType[t][a] < g.nodesByType[t][b] })
	}
	for id := range g.outgoing {
		sort.Slice(g.outgoing[id], func(a, b int) bool { return g.outgoing[id][a] < g.outgoing[id][b] })
	}
	for id := range g.incoming {
		sort.Slice(g.incoming[id], func(a, b int) bool { return g.incoming[id][a] < g.incoming[id][b] })
	}

	return g, nil
}

// ReplaceGraph atomically clears and repopulates the store from one batch.
// On any error the previous generation remains published untouched.
func (s *GraphStore) ReplaceGraph(nodes []Node, edges []Edge) (ReplaceResult, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	if _, err := s.snapshotGen(); err != nil {
		return ReplaceResult{}, err
	}

	gen, err := buildGeneration(nodes, edges)
	if err != nil {
		s.logger.Error("rebuild rejected", logging.Error(err))
		return ReplaceResult{}, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ReplaceResult{}, ErrStoreUnavailable
	}
	s.gen = gen
	s.mu.Unlock()

	s.logger.Info("graph rebuilt",
		logging.Generation(gen.id),
		logging.Nodes(len(gen.nodes)),
		logging.Edges(len(gen.edges)),
	)

	if s.persist {
		if err := saveSnapshot(s.snapshotPath(), gen); err != nil {
			// The in-memory swap already committed; a failed snapshot only
			// affects restart recovery.
			s.logger.Warn("snapshot write failed", logging.Error(err))
		}
	}

	return ReplaceResult{
		GenerationID: gen.id,
		NodesCreated: len(gen.nodes),
		EdgesCreated: len(gen.edges),
	}, nil
}

// snapshotGen returns the current generation, or ErrStoreUnavailable.
func (s *GraphStore) snapshotGen() (*generation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreUnavailable
	}
	return s.gen, nil
}

// GetNode retrieves a node by id.
func (s *GraphStore) GetNode(id uint64) (*Node, error) {
	g, err := s.snapshotGen()
	if err != nil {
		return nil, err
	}
	node, ok := g.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return node.Clone(), nil
}

// FindByType returns nodes of the given type whose label contains filter
// (case-insensitive). An empty filter matches every node of the type.
// Results are ordered by node id.
func (s *GraphStore) FindByType(t EntityType, filter string) ([]*Node, error) {
	g, err := s.snapshotGen()
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, len(g.nodesByType[t]))
	for _, id := range g.nodesByType[t] {
		node := g.nodes[id]
		if filter != "" && !containsFold(node.Label, filter) {
			continue
		}
		nodes = append(nodes, node.Clone())
	}
	return nodes, nil
}

// FindByLabelType looks up the single node with an exact (label, type) pair.
func (s *GraphStore) FindByLabelType(label string, t EntityType) (*Node, error) {
	g, err := s.snapshotGen()
	if err != nil {
		return nil, err
	}
	id, ok := g.idByLabelType[labelTypeKey{label: label, typ: t}]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return g.nodes[id].Clone(), nil
}

// Neighbors returns the nodes adjacent to nodeID, with the connecting edge,
// honoring direction and an optional relation-type filter. Results are
// ordered by edge id.
func (s *GraphStore) Neighbors(nodeID uint64, dir Direction, relTypes []RelationType) ([]Neighbor, error) {
	g, err := s.snapshotGen()
	if err != nil {
		return nil, err
	}
	if _, ok := g.nodes[nodeID]; !ok {
		return nil, ErrNodeNotFound
	}
	return g.neighbors(nodeID, dir, relTypes), nil
}

func (g *generation) neighbors(nodeID uint64, dir Direction, relTypes []RelationType) []Neighbor {
	out := make([]Neighbor, 0)
	if dir == DirectionOutgoing || dir == DirectionBoth {
		for _, edgeID := range g.outgoing[nodeID] {
			edge := g.edges[edgeID]
			if !relTypeMatches(relTypes, edge.Type) {
				continue
			}
			out = append(out, Neighbor{Node: g.nodes[edge.TargetID].Clone(), Edge: edge.Clone()})
		}
	}
	if dir == DirectionIncoming || dir == DirectionBoth {
		for _, edgeID := range g.incoming[nodeID] {
			edge := g.edges[edgeID]
			if !relTypeMatches(relTypes, edge.Type) {
				continue
			}
			out = append(out, Neighbor{Node: g.nodes[edge.SourceID].Clone(), Edge: edge.Clone()})
		}
	}
	return out
}

func relTypeMatches(filter []RelationType, t RelationType) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f == t {
			return true
		}
	}
	return false
}

// Export returns all nodes and edges of the current generation, ordered by
// id. Used by the /graph endpoint and the snapshot writer.
func (s *GraphStore) Export() ([]*Node, []*Edge, error) {
	g, err := s.snapshotGen()
	if err != nil {
		return nil, nil, err
	}
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n.Clone())
	}
	sort.Slice(nodes, func(a, b int) bool { return nodes[a].ID < nodes[b].ID })

	edges := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, e.Clone())
	}
	sort.Slice(edges, func(a, b int) bool { return edges[a].ID < edges[b].ID })

	return nodes, edges, nil
}

// Stats returns store-level counters.
func (s *GraphStore) Stats() (Statistics, error) {
	g, err := s.snapshotGen()
	if err != nil {
		return Statistics{}, err
	}
	return Statistics{
		Nodes:        uint64(len(g.nodes)),
		Edges:        uint64(len(g.edges)),
		GenerationID: g.id,
		LastRebuild:  g.createdAt,
	}, nil
}

// Close marks the store unavailable. Subsequent operations return
// ErrStoreUnavailable.
func (s *GraphStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.gen = nil
	return nil
}

func (s *GraphStore) snapshotPath() string {
	return filepath.Join(s.dataDir, "graph.snapshot")
}

// containsFold reports whether label contains needle, case-insensitively.
func containsFold(label, needle string) bool {
	return strings.Contains(strings.ToLower(label), strings.ToLower(needle))
}
