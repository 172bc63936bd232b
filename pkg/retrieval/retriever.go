// Package retrieval maps a classified query to one parametrized traversal
// of the graph store and packages the result as a typed context payload for
// the downstream text generator.
package retrieval

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-opsgraph/pkg/intent"
	"github.com/dd0wney/cluso-opsgraph/pkg/logging"
	"github.com/dd0wney/cluso-opsgraph/pkg/storage"
)

// Result-size bounds. These keep the rendered context inside the external
// generator's input budget.
const (
	maintenanceLimit   = 15
	generalSampleLimit = 15

	// facilityHops is the natural depth of the facility expansion:
	// Facility <- Asset <- WorkOrder.
	facilityHops = 2
)

// Limits bounds the traversals behind each context query. Zero values fall
// back to the storage defaults.
type Limits struct {
	MaxDepth  int
	MaxVisits int
}

// Retriever answers intent-routed context queries against a graph store.
type Retriever struct {
	store  *storage.GraphStore
	params ParamExtractor
	limits Limits
	logger logging.Logger
}

// NewRetriever creates a retriever. A nil extractor selects the default
// keyword heuristic.
func NewRetriever(store *storage.GraphStore, params ParamExtractor, limits Limits, logger logging.Logger) *Retriever {
	if params == nil {
		params = NewKeywordParamExtractor()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Retriever{
		store:  store,
		params: params,
		limits: limits,
		logger: logger.With(logging.Component("retrieval")),
	}
}

// Retrieve selects and executes the traversal for the given intent. Store
// failures degrade to an explicit Unavailable payload; Retrieve never
// surfaces a raw store error to the caller.
func (r *Retriever) Retrieve(ctx context.Context, query string, it intent.Intent) ContextPayload {
	switch it {
	case intent.IntentFacility:
		return r.facilityContext(ctx, query)
	case intent.IntentAsset:
		return r.assetContext(query)
	case intent.IntentMaintenance:
		return r.maintenanceContext()
	case intent.IntentPersonnel:
		return r.personnelContext()
	default:
		return r.generalContext()
	}
}

func (r *Retriever) facilityContext(ctx context.Context, query string) ContextPayload {
	name := r.params.Extract(query, CategoryFacility)
	if name == "" {
		return r.facilityList("no facility name recognized in the question")
	}

	// Facility <- LOCATED_IN <- Asset <- MAINTAINS <- WorkOrder, one
	// incoming expansion per matched facility, clamped to the configured
	// depth ceiling.
	depth := facilityHops
	if r.limits.MaxDepth > 0 && r.limits.MaxDepth < depth {
		depth = r.limits.MaxDepth
	}
	result, err := r.store.Traverse(ctx, storage.TraverseOptions{
		Seed:          storage.Seed{Type: storage.TypeFacility, LabelFilter: name},
		Direction:     storage.DirectionIncoming,
		RelationTypes: []storage.RelationType{storage.RelLocatedIn, storage.RelMaintains},
		MaxDepth:      depth,
		MaxVisits:     r.limits.MaxVisits,
	})
	if err != nil {
		return r.unavailable(err)
	}
	if len(result.Paths) == 0 {
		return r.facilityList(fmt.Sprintf("no facility matching %q", name))
	}

	fc := &FacilityContext{Truncated: result.Truncated}
	byFacility := make(map[string]int)         // facility label -> index in fc.Facilities
	byAsset := make(map[string]map[string]int) // facility label -> asset label -> index

	for _, path := range result.Paths {
		switch path.Depth() {
		case 0:
			label := path.End().Label
			if _, ok := byFacility[label]; !ok {
				byFacility[label] = len(fc.Facilities)
				byAsset[label] = make(map[string]int)
				fc.Facilities = append(fc.Facilities, FacilitySummary{Name: label, Assets: []AssetWorkOrders{}})
			}
		case 1:
			if path.Edges[0].Type != storage.RelLocatedIn {
				continue
			}
			facility := path.Nodes[0].Label
			asset := path.End().Label
			fi := byFacility[facility]
			if _, ok := byAsset[facility][asset]; !ok {
				byAsset[facility][asset] = len(fc.Facilities[fi].Assets)
				fc.Facilities[fi].Assets = append(fc.Facilities[fi].Assets, AssetWorkOrders{Asset: asset, WorkOrders: []string{}})
			}
		case 2:
			if path.Edges[0].Type != storage.RelLocatedIn || path.Edges[1].Type != storage.RelMaintains {
				continue
			}
			facility := path.Nodes[0].Label
			asset := path.Nodes[1].Label
			fi := bumpFacility(fc, byFacility, byAsset, facility)
			ai, ok := byAsset[facility][asset]
			if !ok {
				continue
			}
			fc.Facilities[fi].Assets[ai].WorkOrders = append(fc.Facilities[fi].Assets[ai].WorkOrders, path.End().Label)
		}
	}

	r.logger.Debug("facility context built",
		logging.Facility(name),
		logging.Int("facilities", len(fc.Facilities)),
	)
	return ContextPayload{Type: PayloadFacility, Facility: fc, NodesVisited: result.Visited}
}

func bumpFacility(fc *FacilityContext, byFacility map[string]int, byAsset map[string]map[string]int, facility string) int {
	fi, ok := byFacility[facility]
	if !ok {
		fi = len(fc.Facilities)
		byFacility[facility] = fi
		byAsset[facility] = make(map[string]int)
		fc.Facilities = append(fc.Facilities, FacilitySummary{Name: facility, Assets: []AssetWorkOrders{}})
	}
	return fi
}

// facilityList is the disambiguation fallback: never silently return
// nothing when a partial answer (the facility roster) is possible.
func (r *Retriever) facilityList(note string) ContextPayload {
	facilities, err := r.store.FindByType(storage.TypeFacility, "")
	if err != nil {
		return r.unavailable(err)
	}
	labels := make([]string, 0, len(facilities))
	for _, f := range facilities {
		labels = append(labels, f.Label)
	}
	return ContextPayload{
		Type:         PayloadFacilityList,
		FacilityList: &FacilityList{Facilities: labels},
		Note:         note,
		NodesVisited: len(labels),
	}
}

func (r *Retriever) assetContext(query string) ContextPayload {
	filter := r.params.Extract(query, CategoryAsset)
	assets, err := r.store.FindByType(storage.TypeAsset, filter)
	if err != nil {
		return r.unavailable(err)
	}
	note := ""
	if filter != "" && len(assets) == 0 {
		note = fmt.Sprintf("no asset matching %q; listing all assets", filter)
		assets, err = r.store.FindByType(storage.TypeAsset, "")
		if err != nil {
			return r.unavailable(err)
		}
	}

	ac := &AssetContext{Assets: make([]AssetDetail, 0, len(assets))}
	// A work order reachable through several relationship paths must be
	// counted exactly once across the whole payload.
	seenWorkOrders := make(map[uint64]struct{})

	for _, asset := range assets {
		detail := AssetDetail{Name: asset.Label, WorkOrders: []string{}}

		if nbs, err := r.store.Neighbors(asset.ID, storage.DirectionOutgoing, []storage.RelationType{storage.RelLocatedIn}); err != nil {
			return r.unavailable(err)
		} else if len(nbs) > 0 {
			detail.Facility = nbs[0].Node.Label
		}

		if nbs, err := r.store.Neighbors(asset.ID, storage.DirectionOutgoing, []storage.RelationType{storage.RelBelongsTo}); err != nil {
			return r.unavailable(err)
		} else if len(nbs) > 0 {
			detail.Department = nbs[0].Node.Label
		}

		nbs, err := r.store.Neighbors(asset.ID, storage.DirectionIncoming, []storage.RelationType{storage.RelMaintains})
		if err != nil {
			return r.unavailable(err)
		}
		for _, nb := range nbs {
			if _, dup := seenWorkOrders[nb.Node.ID]; dup {
				continue
			}
			seenWorkOrders[nb.Node.ID] = struct{}{}
			detail.WorkOrders = append(detail.WorkOrders, nb.Node.Label)
		}

		ac.Assets = append(ac.Assets, detail)
	}
	ac.TotalWorkOrders = len(seenWorkOrders)

	return ContextPayload{Type: PayloadAsset, Asset: ac, Note: note, NodesVisited: len(ac.Assets)}
}

func (r *Retriever) maintenanceContext() ContextPayload {
	workOrders, err := r.store.FindByType(storage.TypeWorkOrder, "")
	if err != nil {
		return r.unavailable(err)
	}

	mc := &MaintenanceContext{WorkOrders: make([]WorkOrderDetail, 0, len(workOrders))}
	if len(workOrders) > maintenanceLimit {
		workOrders = workOrders[:maintenanceLimit]
		mc.Truncated = true
	}

	for _, wo := range workOrders {
		detail := WorkOrderDetail{ID: wo.Label}

		nbs, err := r.store.Neighbors(wo.ID, storage.DirectionOutgoing, []storage.RelationType{storage.RelMaintains})
		if err != nil {
			return r.unavailable(err)
		}
		if len(nbs) > 0 {
			detail.Asset = nbs[0].Node.Label
			fnbs, err := r.store.Neighbors(nbs[0].Node.ID, storage.DirectionOutgoing, []storage.RelationType{storage.RelLocatedIn})
			if err != nil {
				return r.unavailable(err)
			}
			if len(fnbs) > 0 {
				detail.Facility = fnbs[0].Node.Label
			}
		}

		anbs, err := r.store.Neighbors(wo.ID, storage.DirectionOutgoing, []storage.RelationType{storage.RelAssignedTo})
		if err != nil {
			return r.unavailable(err)
		}
		if len(anbs) > 0 {
			detail.AssignedTo = anbs[0].Node.Label
		}

		mc.WorkOrders = append(mc.WorkOrders, detail)
	}

	return ContextPayload{Type: PayloadMaintenance, Maintenance: mc, NodesVisited: len(mc.WorkOrders)}
}

func (r *Retriever) personnelContext() ContextPayload {
	people, err := r.store.FindByType(storage.TypePersonnel, "")
	if err != nil {
		return r.unavailable(err)
	}

	pc := &PersonnelContext{People: make([]PersonnelDetail, 0, len(people))}
	for _, person := range people {
		detail := PersonnelDetail{Name: person.Label, WorkOrders: []string{}, Assets: []string{}}

		nbs, err := r.store.Neighbors(person.ID, storage.DirectionIncoming, []storage.RelationType{storage.RelAssignedTo})
		if err != nil {
			return r.unavailable(err)
		}
		seenAssets := make(map[uint64]struct{})
		for _, nb := range nbs {
			if nb.Node.Type != storage.TypeWorkOrder {
				continue
			}
			detail.WorkOrders = append(detail.WorkOrders, nb.Node.Label)

			maintained, err := r.store.Neighbors(nb.Node.ID, storage.DirectionOutgoing, []storage.RelationType{storage.RelMaintains})
			if err != nil {
				return r.unavailable(err)
			}
			for _, m := range maintained {
				if _, dup := seenAssets[m.Node.ID]; dup {
					continue
				}
				seenAssets[m.Node.ID] = struct{}{}
				detail.Assets = append(detail.Assets, m.Node.Label)
			}
		}

		pc.People = append(pc.People, detail)
	}

	return ContextPayload{Type: PayloadPersonnel, Personnel: pc, NodesVisited: len(pc.People)}
}

func (r *Retriever) generalContext() ContextPayload {
	nodes, _, err := r.store.Export()
	if err != nil {
		return r.unavailable(err)
	}
	if len(nodes) > generalSampleLimit {
		nodes = nodes[:generalSampleLimit]
	}

	gc := &GeneralContext{Samples: make([]NodeNeighborhood, 0, len(nodes))}
	for _, node := range nodes {
		sample := NodeNeighborhood{
			Label:     node.Label,
			Type:      string(node.Type),
			Neighbors: []NeighborsRef{},
		}
		nbs, err := r.store.Neighbors(node.ID, storage.DirectionBoth, nil)
		if err != nil {
			return r.unavailable(err)
		}
		for _, nb := range nbs {
			sample.Neighbors = append(sample.Neighbors, NeighborsRef{
				Relation: string(nb.Edge.Type),
				Label:    nb.Node.Label,
				Type:     string(nb.Node.Type),
			})
		}
		gc.Samples = append(gc.Samples, sample)
	}

	return ContextPayload{Type: PayloadGeneral, General: gc, NodesVisited: len(gc.Samples)}
}

func (r *Retriever) unavailable(err error) ContextPayload {
	r.logger.Error("store unavailable during retrieval", logging.Error(err))
	return ContextPayload{
		Type: PayloadUnavailable,
		Note: "knowledge graph data is currently unavailable",
	}
}
