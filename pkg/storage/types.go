package storage

import "fmt"

// EntityType is the closed set of node types the extractor can produce.
type EntityType string

const (
	TypeAsset       EntityType = "Asset"
	TypeFacility    EntityType = "Facility"
	TypeDepartment  EntityType = "Department"
	TypeWorkOrder   EntityType = "WorkOrder"
	TypePersonnel   EntityType = "Personnel"
	TypeWorkstation EntityType = "Workstation"
)

// EntityTypes lists all known entity types in a fixed order.
var EntityTypes = []EntityType{
	TypeAsset,
	TypeFacility,
	TypeDepartment,
	TypeWorkOrder,
	TypePersonnel,
	TypeWorkstation,
}

// ParseEntityType returns the EntityType for s, or an error if s is not one
// of the known types.
func ParseEntityType(s string) (EntityType, error) {
	for _, t := range EntityTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// RelationType is the closed set of edge types.
type RelationType string

const (
	RelLocatedIn  RelationType = "LOCATED_IN"
	RelBelongsTo  RelationType = "BELONGS_TO"
	RelMaintains  RelationType = "MAINTAINS"
	RelAssignedTo RelationType = "ASSIGNED_TO"
	RelHasName    RelationType = "HAS_NAME"
	// RelRelatesTo is the generic fallback for relationships whose type
	// string is not one of the named relations.
	RelRelatesTo RelationType = "RELATES_TO"
)

// RelationTypes lists all known relation types in a fixed order.
var RelationTypes = []RelationType{
	RelLocatedIn,
	RelBelongsTo,
	RelMaintains,
	RelAssignedTo,
	RelHasName,
	RelRelatesTo,
}

// NormalizeRelationType maps s onto the closed relation enumeration,
// falling back to RELATES_TO for unknown type strings.
func NormalizeRelationType(s string) RelationType {
	for _, t := range RelationTypes {
		if string(t) == s {
			return t
		}
	}
	return RelRelatesTo
}

// Node represents a typed vertex in the graph.
type Node struct {
	ID         uint64            `json:"id"`
	Label      string            `json:"label"`
	Type       EntityType        `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
	CreatedAt  int64             `json:"created_at"`
	UpdatedAt  int64             `json:"updated_at"`
}

// Edge represents a typed, directed relationship between two nodes.
type Edge struct {
	ID         uint64            `json:"id"`
	SourceID   uint64            `json:"source_id"`
	TargetID   uint64            `json:"target_id"`
	Type       RelationType      `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
	CreatedAt  int64             `json:"created_at"`
	UpdatedAt  int64             `json:"updated_at"`
}

// Clone creates a deep copy of a node
func (n *Node) Clone() *Node {
	clone := &Node{
		ID:        n.ID,
		Label:     n.Label,
		Type:      n.Type,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if n.Properties != nil {
		clone.Properties = make(map[string]string, len(n.Properties))
		for k, v := range n.Properties {
			clone.Properties[k] = v
		}
	}
	return clone
}

// Clone creates a deep copy of an edge
func (e *Edge) Clone() *Edge {
	clone := &Edge{
		ID:        e.ID,
		SourceID:  e.SourceID,
		TargetID:  e.TargetID,
		Type:      e.Type,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.Properties != nil {
		clone.Properties = make(map[string]string, len(e.Properties))
		for k, v := range e.Properties {
			clone.Properties[k] = v
		}
	}
	return clone
}

// Neighbor pairs a node with the edge that reaches it.
type Neighbor struct {
	Node *Node
	Edge *Edge
}
