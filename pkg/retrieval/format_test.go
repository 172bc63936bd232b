package retrieval

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFacilityContext(t *testing.T) {
	payload := ContextPayload{
		Type: PayloadFacility,
		Facility: &FacilityContext{
			Facilities: []FacilitySummary{
				{
					Name: "Plant A",
					Assets: []AssetWorkOrders{
						{Asset: "Pump 1", WorkOrders: []string{"WO_1001"}},
						{Asset: "Pump 2", WorkOrders: []string{}},
					},
				},
				{Name: "Plant B", Assets: []AssetWorkOrders{}},
			},
		},
	}

	out := Format(payload)
	assert.Contains(t, out, "Plant A:")
	assert.Contains(t, out, "• Pump 1")
	assert.Contains(t, out, "Maintained by: Work Order 1001")
	assert.Contains(t, out, "No work orders reference this asset.")
	assert.Contains(t, out, "No assets found in this facility.")
}

func TestFormatStatesAbsenceExplicitly(t *testing.T) {
	payload := ContextPayload{
		Type: PayloadAsset,
		Asset: &AssetContext{
			Assets: []AssetDetail{
				{Name: "Pump 1", WorkOrders: []string{}},
			},
		},
	}

	out := Format(payload)
	assert.Contains(t, out, "Location unknown.")
	assert.Contains(t, out, "No work orders reference this asset.")
	assert.Contains(t, out, "Total distinct work orders: 0")
}

func TestFormatCapsWorkOrderLists(t *testing.T) {
	ids := make([]string, 14)
	for i := range ids {
		ids[i] = fmt.Sprintf("WO_%d", i+1)
	}
	payload := ContextPayload{
		Type: PayloadAsset,
		Asset: &AssetContext{
			Assets:          []AssetDetail{{Name: "Pump 1", Facility: "Plant A", WorkOrders: ids}},
			TotalWorkOrders: 14,
		},
	}

	out := Format(payload)
	assert.Contains(t, out, "and 4 more")
	assert.Equal(t, maxListedWorkOrders, strings.Count(out, "Work Order "))
}

func TestFormatTranslatesWorkOrderPrefix(t *testing.T) {
	payload := ContextPayload{
		Type: PayloadMaintenance,
		Maintenance: &MaintenanceContext{
			WorkOrders: []WorkOrderDetail{
				{ID: "WO_1001", Asset: "Pump 1", Facility: "Plant A", AssignedTo: "John Doe"},
				{ID: "WO_1002"},
			},
		},
	}

	out := Format(payload)
	assert.Contains(t, out, "Work Order 1001:")
	assert.Contains(t, out, "Maintains: Pump 1 (Asset)")
	assert.Contains(t, out, "Located in: Plant A (Facility)")
	assert.Contains(t, out, "Assigned to: John Doe")
	assert.Contains(t, out, "No asset linked to this work order.")
	assert.Contains(t, out, "Unassigned.")
	assert.NotContains(t, out, "WO_")
}

func TestFormatFacilityList(t *testing.T) {
	out := Format(ContextPayload{
		Type:         PayloadFacilityList,
		FacilityList: &FacilityList{Facilities: []string{"Plant A", "Plant B"}},
		Note:         "no facility name recognized in the question",
	})
	assert.Contains(t, out, "Known facilities:")
	assert.Contains(t, out, "• Plant A")
	assert.Contains(t, out, "Note: no facility name recognized")

	out = Format(ContextPayload{
		Type:         PayloadFacilityList,
		FacilityList: &FacilityList{},
	})
	assert.Contains(t, out, "No facilities found in the knowledge graph.")
}

func TestFormatPersonnel(t *testing.T) {
	out := Format(ContextPayload{
		Type: PayloadPersonnel,
		Personnel: &PersonnelContext{
			People: []PersonnelDetail{
				{Name: "John Doe", WorkOrders: []string{"WO_1001"}, Assets: []string{"Pump 1"}},
				{Name: "Jane Roe", WorkOrders: []string{}},
			},
		},
	})
	assert.Contains(t, out, "John Doe:")
	assert.Contains(t, out, "Assigned: Work Order 1001")
	assert.Contains(t, out, "Works on: Pump 1")
	assert.Contains(t, out, "No work orders assigned.")
}

func TestFormatUnavailable(t *testing.T) {
	out := Format(ContextPayload{Type: PayloadUnavailable, Note: "knowledge graph data is currently unavailable"})
	assert.Contains(t, out, "currently unavailable")
}

func TestFormatIsDeterministic(t *testing.T) {
	payload := ContextPayload{
		Type: PayloadGeneral,
		General: &GeneralContext{
			Samples: []NodeNeighborhood{
				{Label: "Pump 1", Type: "Asset", Neighbors: []NeighborsRef{
					{Relation: "LOCATED_IN", Label: "Plant A", Type: "Facility"},
				}},
			},
		},
	}
	first := Format(payload)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Format(payload))
	}
	assert.Contains(t, first, "LOCATED_IN → Plant A (Facility)")
}
