package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraverseFacilityTwoHop(t *testing.T) {
	store := newTestStore(t)

	result, err := store.Traverse(context.Background(), TraverseOptions{
		Seed:          Seed{Type: TypeFacility, LabelFilter: "plant a"},
		Direction:     DirectionIncoming,
		RelationTypes: []RelationType{RelLocatedIn, RelMaintains},
		MaxDepth:      2,
	})
	require.NoError(t, err)
	assert.False(t, result.Truncated)

	// Seed, the asset at depth 1, the work order at depth 2.
	require.Len(t, result.Paths, 3)
	assert.Equal(t, "Plant A", result.Paths[0].End().Label)
	assert.Equal(t, 0, result.Paths[0].Depth())
	assert.Equal(t, "Pump 1", result.Paths[1].End().Label)
	assert.Equal(t, 1, result.Paths[1].Depth())
	assert.Equal(t, "WO_1001", result.Paths[2].End().Label)
	assert.Equal(t, 2, result.Paths[2].Depth())
}

func TestTraverseDepthBound(t *testing.T) {
	store := newTestStore(t)

	result, err := store.Traverse(context.Background(), TraverseOptions{
		Seed:          Seed{Type: TypeFacility},
		Direction:     DirectionIncoming,
		RelationTypes: []RelationType{RelLocatedIn, RelMaintains},
		MaxDepth:      1,
	})
	require.NoError(t, err)
	for _, path := range result.Paths {
		assert.LessOrEqual(t, path.Depth(), 1)
	}
}

func TestTraverseTerminatesOnCycle(t *testing.T) {
	store := NewGraphStore(nil)
	_, err := store.ReplaceGraph(
		[]Node{
			{ID: 1, Label: "A", Type: TypeAsset},
			{ID: 2, Label: "B", Type: TypeAsset},
		},
		[]Edge{
			{ID: 1, SourceID: 1, TargetID: 2, Type: RelRelatesTo},
			{ID: 2, SourceID: 2, TargetID: 1, Type: RelRelatesTo},
		},
	)
	require.NoError(t, err)

	result, err := store.Traverse(context.Background(), TraverseOptions{
		Seed:      Seed{NodeID: 1},
		Direction: DirectionBoth,
		MaxDepth:  10,
	})
	require.NoError(t, err)
	assert.False(t, result.Truncated)

	// A node already on the path is never re-entered, so the cycle yields
	// finitely many paths.
	for _, path := range result.Paths {
		seen := make(map[uint64]struct{})
		for _, node := range path.Nodes {
			_, dup := seen[node.ID]
			assert.False(t, dup, "node revisited on a single path")
			seen[node.ID] = struct{}{}
		}
	}
}

func TestTraverseVisitBudgetTruncates(t *testing.T) {
	store := newTestStore(t)

	result, err := store.Traverse(context.Background(), TraverseOptions{
		Seed:      Seed{Type: TypeFacility},
		Direction: DirectionIncoming,
		MaxDepth:  5,
		MaxVisits: 1,
	})
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Equal(t, 1, result.Visited)
}

func TestTraverseContextDeadlineTruncates(t *testing.T) {
	store := newTestStore(t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	result, err := store.Traverse(ctx, TraverseOptions{
		Seed:      Seed{Type: TypeFacility},
		Direction: DirectionIncoming,
	})
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Empty(t, result.Paths)
}

func TestTraverseMissingSeedIsEmpty(t *testing.T) {
	store := newTestStore(t)

	result, err := store.Traverse(context.Background(), TraverseOptions{
		Seed: Seed{NodeID: 999},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Paths)
	assert.False(t, result.Truncated)
}

func TestTraverseRejectsInvalidDepth(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Traverse(context.Background(), TraverseOptions{
		Seed:     Seed{NodeID: 1},
		MaxDepth: MaxAllowedDepth + 1,
	})
	assert.ErrorIs(t, err, ErrInvalidDepth)
}

func TestTraverseRelationTypeFilter(t *testing.T) {
	store := newTestStore(t)

	// Only LOCATED_IN: the work order must not appear.
	result, err := store.Traverse(context.Background(), TraverseOptions{
		Seed:          Seed{Type: TypeFacility, LabelFilter: "plant a"},
		Direction:     DirectionIncoming,
		RelationTypes: []RelationType{RelLocatedIn},
		MaxDepth:      2,
	})
	require.NoError(t, err)
	for _, path := range result.Paths {
		assert.NotEqual(t, TypeWorkOrder, path.End().Type)
	}
}
