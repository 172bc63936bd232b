package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBatch() ([]Node, []Edge) {
	nodes := []Node{
		{ID: 1, Label: "Plant A", Type: TypeFacility},
		{ID: 2, Label: "Pump 1", Type: TypeAsset},
		{ID: 3, Label: "WO_1001", Type: TypeWorkOrder},
		{ID: 4, Label: "John Doe", Type: TypePersonnel},
		{ID: 5, Label: "Maintenance", Type: TypeDepartment},
	}
	edges := []Edge{
		{ID: 1, SourceID: 2, TargetID: 1, Type: RelLocatedIn},
		{ID: 2, SourceID: 3, TargetID: 2, Type: RelMaintains},
		{ID: 3, SourceID: 3, TargetID: 4, Type: RelAssignedTo},
		{ID: 4, SourceID: 2, TargetID: 5, Type: RelBelongsTo},
	}
	return nodes, edges
}

func newTestStore(t *testing.T) *GraphStore {
	t.Helper()
	store := NewGraphStore(nil)
	nodes, edges := sampleBatch()
	_, err := store.ReplaceGraph(nodes, edges)
	require.NoError(t, err)
	return store
}

func TestReplaceGraphCounts(t *testing.T) {
	store := NewGraphStore(nil)
	nodes, edges := sampleBatch()

	result, err := store.ReplaceGraph(nodes, edges)
	require.NoError(t, err)
	assert.Equal(t, 5, result.NodesCreated)
	assert.Equal(t, 4, result.EdgesCreated)
	assert.NotEmpty(t, result.GenerationID)
}

func TestReplaceGraphIsAtomicOnError(t *testing.T) {
	store := newTestStore(t)
	before, err := store.Stats()
	require.NoError(t, err)

	// Duplicate (label, type) pair must reject the whole batch.
	_, err = store.ReplaceGraph([]Node{
		{ID: 1, Label: "Pump 1", Type: TypeAsset},
		{ID: 2, Label: "Pump 1", Type: TypeAsset},
	}, nil)
	require.ErrorIs(t, err, ErrDuplicateNode)

	after, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, before.GenerationID, after.GenerationID)
	assert.Equal(t, before.Nodes, after.Nodes)
}

func TestReplaceGraphRejectsMissingEndpoint(t *testing.T) {
	store := NewGraphStore(nil)
	_, err := store.ReplaceGraph(
		[]Node{{ID: 1, Label: "Pump 1", Type: TypeAsset}},
		[]Edge{{ID: 1, SourceID: 1, TargetID: 99, Type: RelLocatedIn}},
	)
	assert.ErrorIs(t, err, ErrMissingEndpoint)
}

func TestReplaceGraphRejectsDuplicateEdgeTriple(t *testing.T) {
	store := NewGraphStore(nil)
	_, err := store.ReplaceGraph(
		[]Node{
			{ID: 1, Label: "Pump 1", Type: TypeAsset},
			{ID: 2, Label: "Plant A", Type: TypeFacility},
		},
		[]Edge{
			{ID: 1, SourceID: 1, TargetID: 2, Type: RelLocatedIn},
			{ID: 2, SourceID: 1, TargetID: 2, Type: RelLocatedIn},
		},
	)
	assert.ErrorIs(t, err, ErrDuplicateEdge)
}

func TestFindByTypeSubstringMatch(t *testing.T) {
	store := newTestStore(t)

	nodes, err := store.FindByType(TypeFacility, "plant a")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Plant A", nodes[0].Label)

	nodes, err = store.FindByType(TypeFacility, "plant b")
	require.NoError(t, err)
	assert.Empty(t, nodes)

	// Empty filter returns everything of the type.
	nodes, err = store.FindByType(TypeAsset, "")
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestNeighborsDirectionAndTypeFilter(t *testing.T) {
	store := newTestStore(t)

	// Incoming MAINTAINS on the asset: the work order.
	nbs, err := store.Neighbors(2, DirectionIncoming, []RelationType{RelMaintains})
	require.NoError(t, err)
	require.Len(t, nbs, 1)
	assert.Equal(t, "WO_1001", nbs[0].Node.Label)

	// Outgoing from the asset: facility and department.
	nbs, err = store.Neighbors(2, DirectionOutgoing, nil)
	require.NoError(t, err)
	assert.Len(t, nbs, 2)

	_, err = store.Neighbors(99, DirectionBoth, nil)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestFindByLabelType(t *testing.T) {
	store := newTestStore(t)

	node, err := store.FindByLabelType("WO_1001", TypeWorkOrder)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), node.ID)

	_, err = store.FindByLabelType("WO_1001", TypeAsset)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestExportIsOrdered(t *testing.T) {
	store := newTestStore(t)

	nodes, edges, err := store.Export()
	require.NoError(t, err)
	require.Len(t, nodes, 5)
	require.Len(t, edges, 4)
	for i := 1; i < len(nodes); i++ {
		assert.Less(t, nodes[i-1].ID, nodes[i].ID)
	}
	for i := 1; i < len(edges); i++ {
		assert.Less(t, edges[i-1].ID, edges[i].ID)
	}
}

func TestCloseMakesStoreUnavailable(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close())

	_, err := store.Stats()
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = store.GetNode(1)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = store.ReplaceGraph(nil, nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	// Close is idempotent.
	assert.NoError(t, store.Close())
}

// Readers racing a rebuild must observe either the old or the new generation,
// never a mix.
func TestConcurrentReadersDuringReplace(t *testing.T) {
	store := newTestStore(t)

	small := []Node{{ID: 1, Label: "Plant B", Type: TypeFacility}}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				stats, err := store.Stats()
				if err != nil {
					t.Errorf("stats failed: %v", err)
					return
				}
				if stats.Nodes != 5 && stats.Nodes != 1 {
					t.Errorf("observed partial generation with %d nodes", stats.Nodes)
					return
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		nodes, edges := sampleBatch()
		if _, err := store.ReplaceGraph(nodes, edges); err != nil {
			t.Fatalf("replace failed: %v", err)
		}
		if _, err := store.ReplaceGraph(small, nil); err != nil {
			t.Fatalf("replace failed: %v", err)
		}
	}
	close(stop)
	wg.Wait()
}

func TestNodeCloneIsolation(t *testing.T) {
	store := newTestStore(t)

	node, err := store.GetNode(1)
	require.NoError(t, err)
	node.Label = "mutated"

	again, err := store.GetNode(1)
	require.NoError(t, err)
	assert.Equal(t, "Plant A", again.Label)
}
