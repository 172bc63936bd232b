package api

import (
	"github.com/dd0wney/cluso-opsgraph/pkg/extract"
	"github.com/dd0wney/cluso-opsgraph/pkg/retrieval"
	"github.com/dd0wney/cluso-opsgraph/pkg/storage"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// IngestResponse reports one upload or rebuild.
type IngestResponse struct {
	GenerationID         string `json:"generation_id"`
	NodesCreated         int    `json:"nodes_created"`
	EdgesCreated         int    `json:"edges_created"`
	RowsProcessed        int    `json:"rows_processed"`
	RowsSkipped          int    `json:"rows_skipped"`
	DroppedRelationships int    `json:"dropped_relationships"`
	DuplicateEdges       int    `json:"duplicate_edges"`
	Time                 string `json:"time"`
}

// OntologyResponse echoes an extracted ontology without committing it, so
// callers can review or edit it before a rebuild.
type OntologyResponse struct {
	Entities      []extract.Entity       `json:"entities"`
	Relationships []extract.Relationship `json:"relationships"`
	Columns       []string               `json:"columns"`
	RowsProcessed int                    `json:"rows_processed"`
	RowsSkipped   int                    `json:"rows_skipped"`
}

// RebuildRequest carries a pre-extracted ontology for a direct rebuild.
type RebuildRequest struct {
	Entities      []RebuildEntity       `json:"entities" validate:"dive"`
	Relationships []RebuildRelationship `json:"relationships" validate:"dive"`
}

// RebuildEntity is one entity in a rebuild request.
type RebuildEntity struct {
	Label string `json:"label" validate:"required"`
	Type  string `json:"type" validate:"required"`
}

// RebuildRelationship is one relationship in a rebuild request.
type RebuildRelationship struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Type   string `json:"type" validate:"required"`
}

// ChatRequest is a natural-language question.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// ChatResponse returns the generated answer plus the exact retrieval context
// it was grounded on, so callers can audit what the model saw.
type ChatResponse struct {
	Response string                   `json:"response"`
	Intent   string                   `json:"intent"`
	Context  retrieval.ContextPayload `json:"context"`
	Time     string                   `json:"time"`
}

// GraphResponse is the full graph export.
type GraphResponse struct {
	Nodes []*storage.Node `json:"nodes"`
	Edges []*storage.Edge `json:"edges"`
}

// StatsResponse mirrors storage statistics plus process uptime.
type StatsResponse struct {
	Nodes        uint64 `json:"nodes"`
	Edges        uint64 `json:"edges"`
	GenerationID string `json:"generation_id"`
	Uptime       string `json:"uptime"`
}
