package retrieval

// PayloadType discriminates the context payload variants so the formatter
// can dispatch without re-inspecting the query.
type PayloadType string

const (
	PayloadFacility     PayloadType = "facility_context"
	PayloadFacilityList PayloadType = "facility_list"
	PayloadAsset        PayloadType = "asset_context"
	PayloadMaintenance  PayloadType = "maintenance_context"
	PayloadPersonnel    PayloadType = "personnel_context"
	PayloadGeneral      PayloadType = "general_context"
	PayloadUnavailable  PayloadType = "unavailable"
)

// ContextPayload is a tagged union: Type names the single populated variant.
type ContextPayload struct {
	Type PayloadType `json:"type"`

	Facility     *FacilityContext    `json:"facility,omitempty"`
	FacilityList *FacilityList       `json:"facility_list,omitempty"`
	Asset        *AssetContext       `json:"asset,omitempty"`
	Maintenance  *MaintenanceContext `json:"maintenance,omitempty"`
	Personnel    *PersonnelContext   `json:"personnel,omitempty"`
	General      *GeneralContext     `json:"general,omitempty"`

	// Note carries retrieval-level context such as fallback reasons.
	Note string `json:"note,omitempty"`

	// NodesVisited counts the nodes the backing query expanded. Kept for
	// metrics; not part of the serialized context.
	NodesVisited int `json:"-"`
}

// FacilityContext aggregates assets and their work orders per facility.
type FacilityContext struct {
	Facilities []FacilitySummary `json:"facilities"`
	Truncated  bool              `json:"truncated,omitempty"`
}

// FacilitySummary is one facility with the assets located in it.
type FacilitySummary struct {
	Name   string            `json:"name"`
	Assets []AssetWorkOrders `json:"assets"`
}

// AssetWorkOrders is an asset and the work orders maintaining it.
type AssetWorkOrders struct {
	Asset      string   `json:"asset"`
	WorkOrders []string `json:"work_orders"`
}

// FacilityList is the disambiguation fallback: the full set of known
// facility labels, returned when no facility name could be extracted or
// matched.
type FacilityList struct {
	Facilities []string `json:"facilities"`
}

// AssetContext describes assets with their facility, department, and the
// deduplicated set of work orders that maintain them. Each work order
// appears exactly once across the whole payload; TotalWorkOrders is the
// cardinality of that deduplicated set.
type AssetContext struct {
	Assets          []AssetDetail `json:"assets"`
	TotalWorkOrders int           `json:"total_work_orders"`
}

// AssetDetail is one asset's immediate context.
type AssetDetail struct {
	Name       string   `json:"name"`
	Facility   string   `json:"facility,omitempty"`
	Department string   `json:"department,omitempty"`
	WorkOrders []string `json:"work_orders"`
}

// MaintenanceContext describes work orders with their asset, facility, and
// assignee.
type MaintenanceContext struct {
	WorkOrders []WorkOrderDetail `json:"work_orders"`
	Truncated  bool              `json:"truncated,omitempty"`
}

// WorkOrderDetail is one work order's immediate context.
type WorkOrderDetail struct {
	ID         string `json:"id"`
	Asset      string `json:"asset,omitempty"`
	Facility   string `json:"facility,omitempty"`
	AssignedTo string `json:"assigned_to,omitempty"`
}

// PersonnelContext describes people with their assigned work orders and the
// assets those work orders maintain.
type PersonnelContext struct {
	People []PersonnelDetail `json:"people"`
}

// PersonnelDetail is one person's assignments.
type PersonnelDetail struct {
	Name       string   `json:"name"`
	WorkOrders []string `json:"work_orders"`
	Assets     []string `json:"assets"`
}

// GeneralContext is a bounded sample of nodes with their immediate
// neighbors, used when no sharper intent applies.
type GeneralContext struct {
	Samples []NodeNeighborhood `json:"samples"`
}

// NodeNeighborhood is one node and its adjacent entities.
type NodeNeighborhood struct {
	Label     string         `json:"label"`
	Type      string         `json:"type"`
	Neighbors []NeighborsRef `json:"neighbors"`
}

// NeighborsRef is one adjacency of a sampled node.
type NeighborsRef struct {
	Relation string `json:"relation"`
	Label    string `json:"label"`
	Type     string `json:"type"`
}
