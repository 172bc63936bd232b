package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-opsgraph/pkg/intent"
	"github.com/dd0wney/cluso-opsgraph/pkg/storage"
)

func newTestStore(t *testing.T) *storage.GraphStore {
	t.Helper()
	store := storage.NewGraphStore(nil)

	nodes := []storage.Node{
		{ID: 1, Label: "Plant A", Type: storage.TypeFacility},
		{ID: 2, Label: "Plant B", Type: storage.TypeFacility},
		{ID: 3, Label: "Pump 1", Type: storage.TypeAsset},
		{ID: 4, Label: "Pump 2", Type: storage.TypeAsset},
		{ID: 5, Label: "WO_1001", Type: storage.TypeWorkOrder},
		{ID: 6, Label: "WO_1002", Type: storage.TypeWorkOrder},
		{ID: 7, Label: "John Doe", Type: storage.TypePersonnel},
		{ID: 8, Label: "Maintenance", Type: storage.TypeDepartment},
	}
	edges := []storage.Edge{
		{ID: 1, SourceID: 3, TargetID: 1, Type: storage.RelLocatedIn},
		{ID: 2, SourceID: 4, TargetID: 2, Type: storage.RelLocatedIn},
		{ID: 3, SourceID: 5, TargetID: 3, Type: storage.RelMaintains},
		{ID: 4, SourceID: 6, TargetID: 3, Type: storage.RelMaintains},
		{ID: 5, SourceID: 5, TargetID: 7, Type: storage.RelAssignedTo},
		{ID: 6, SourceID: 6, TargetID: 7, Type: storage.RelAssignedTo},
		{ID: 7, SourceID: 3, TargetID: 8, Type: storage.RelBelongsTo},
	}
	_, err := store.ReplaceGraph(nodes, edges)
	require.NoError(t, err)
	return store
}

func TestRetrieveFacilityContext(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	r := NewRetriever(store, nil, Limits{}, nil)

	payload := r.Retrieve(context.Background(), "What assets are in Plant A?", intent.IntentFacility)

	require.Equal(t, PayloadFacility, payload.Type)
	require.NotNil(t, payload.Facility)
	require.Len(t, payload.Facility.Facilities, 1)

	facility := payload.Facility.Facilities[0]
	assert.Equal(t, "Plant A", facility.Name)
	require.Len(t, facility.Assets, 1)
	assert.Equal(t, "Pump 1", facility.Assets[0].Asset)
	assert.Equal(t, []string{"WO_1001", "WO_1002"}, facility.Assets[0].WorkOrders)
	// Facility, asset, and two work orders.
	assert.Equal(t, 4, payload.NodesVisited)
}

// A configured depth ceiling below the natural facility expansion cuts the
// work order hop.
func TestRetrieveFacilityContextHonorsDepthLimit(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	r := NewRetriever(store, nil, Limits{MaxDepth: 1}, nil)

	payload := r.Retrieve(context.Background(), "What assets are in Plant A?", intent.IntentFacility)

	require.Equal(t, PayloadFacility, payload.Type)
	require.Len(t, payload.Facility.Facilities, 1)
	require.Len(t, payload.Facility.Facilities[0].Assets, 1)
	assert.Empty(t, payload.Facility.Facilities[0].Assets[0].WorkOrders)
}

func TestRetrieveFacilityContextHonorsVisitBudget(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	r := NewRetriever(store, nil, Limits{MaxVisits: 1}, nil)

	payload := r.Retrieve(context.Background(), "What assets are in Plant A?", intent.IntentFacility)

	require.Equal(t, PayloadFacility, payload.Type)
	assert.True(t, payload.Facility.Truncated)
	assert.Equal(t, 1, payload.NodesVisited)
}

func TestRetrieveFacilityListFallbackWithoutName(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	r := NewRetriever(store, nil, Limits{}, nil)

	payload := r.Retrieve(context.Background(), "tell me something", intent.IntentFacility)

	require.Equal(t, PayloadFacilityList, payload.Type)
	require.NotNil(t, payload.FacilityList)
	assert.Equal(t, []string{"Plant A", "Plant B"}, payload.FacilityList.Facilities)
	assert.NotEmpty(t, payload.Note)
}

func TestRetrieveFacilityListFallbackOnNoMatch(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	r := NewRetriever(store, nil, Limits{}, nil)

	payload := r.Retrieve(context.Background(), "what is in Plant Z?", intent.IntentFacility)

	require.Equal(t, PayloadFacilityList, payload.Type)
	assert.Contains(t, payload.Note, "plant z")
}

func TestRetrieveAssetContextDeduplicatesWorkOrders(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	r := NewRetriever(store, nil, Limits{}, nil)

	payload := r.Retrieve(context.Background(), "list all assets", intent.IntentAsset)

	require.Equal(t, PayloadAsset, payload.Type)
	require.NotNil(t, payload.Asset)
	require.Len(t, payload.Asset.Assets, 2)

	// The distinct count must equal the sum of the per-asset lists.
	listed := 0
	for _, asset := range payload.Asset.Assets {
		listed += len(asset.WorkOrders)
	}
	assert.Equal(t, payload.Asset.TotalWorkOrders, listed)
	assert.Equal(t, 2, payload.Asset.TotalWorkOrders)

	pump1 := payload.Asset.Assets[0]
	assert.Equal(t, "Pump 1", pump1.Name)
	assert.Equal(t, "Plant A", pump1.Facility)
	assert.Equal(t, "Maintenance", pump1.Department)
}

func TestRetrieveAssetContextWithNameFilter(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	r := NewRetriever(store, nil, Limits{}, nil)

	payload := r.Retrieve(context.Background(), "tell me about pump 2", intent.IntentAsset)

	require.Equal(t, PayloadAsset, payload.Type)
	require.Len(t, payload.Asset.Assets, 1)
	assert.Equal(t, "Pump 2", payload.Asset.Assets[0].Name)
}

func TestRetrieveMaintenanceContext(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	r := NewRetriever(store, nil, Limits{}, nil)

	payload := r.Retrieve(context.Background(), "show work orders", intent.IntentMaintenance)

	require.Equal(t, PayloadMaintenance, payload.Type)
	require.Len(t, payload.Maintenance.WorkOrders, 2)

	wo := payload.Maintenance.WorkOrders[0]
	assert.Equal(t, "WO_1001", wo.ID)
	assert.Equal(t, "Pump 1", wo.Asset)
	assert.Equal(t, "Plant A", wo.Facility)
	assert.Equal(t, "John Doe", wo.AssignedTo)
	assert.False(t, payload.Maintenance.Truncated)
}

func TestRetrievePersonnelContext(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	r := NewRetriever(store, nil, Limits{}, nil)

	payload := r.Retrieve(context.Background(), "who does maintenance", intent.IntentPersonnel)

	require.Equal(t, PayloadPersonnel, payload.Type)
	require.Len(t, payload.Personnel.People, 1)

	person := payload.Personnel.People[0]
	assert.Equal(t, "John Doe", person.Name)
	assert.Equal(t, []string{"WO_1001", "WO_1002"}, person.WorkOrders)
	// Both work orders maintain the same pump; it appears once.
	assert.Equal(t, []string{"Pump 1"}, person.Assets)
}

func TestRetrieveGeneralContext(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	r := NewRetriever(store, nil, Limits{}, nil)

	payload := r.Retrieve(context.Background(), "what do you know", intent.IntentGeneral)

	require.Equal(t, PayloadGeneral, payload.Type)
	require.NotNil(t, payload.General)
	assert.Len(t, payload.General.Samples, 8)
	assert.Equal(t, "Plant A", payload.General.Samples[0].Label)
	assert.NotEmpty(t, payload.General.Samples[0].Neighbors)
}

func TestRetrieveDegradesWhenStoreClosed(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close())
	r := NewRetriever(store, nil, Limits{}, nil)

	for _, it := range []intent.Intent{
		intent.IntentFacility,
		intent.IntentAsset,
		intent.IntentMaintenance,
		intent.IntentPersonnel,
		intent.IntentGeneral,
	} {
		payload := r.Retrieve(context.Background(), "in plant a", it)
		assert.Equal(t, PayloadUnavailable, payload.Type, "intent %s", it)
		assert.NotEmpty(t, payload.Note)
	}
}

func TestRetrieveResultIsDeterministic(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	r := NewRetriever(store, nil, Limits{}, nil)

	first := r.Retrieve(context.Background(), "What assets are in Plant A?", intent.IntentFacility)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, r.Retrieve(context.Background(), "What assets are in Plant A?", intent.IntentFacility))
	}
}
