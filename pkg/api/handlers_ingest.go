package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dd0wney/cluso-opsgraph/pkg/builder"
	"github.com/dd0wney/cluso-opsgraph/pkg/extract"
	"github.com/dd0wney/cluso-opsgraph/pkg/logging"
	"github.com/dd0wney/cluso-opsgraph/pkg/storage"
)

// handleUpload ingests a tabular file (CSV or XLSX), extracts the ontology,
// and atomically replaces the graph with the rebuilt one.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	rows, err := s.readUploadRows(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// dry_run extracts and echoes the ontology without touching the graph,
	// so callers can review it and commit via /graph/rebuild.
	if v := r.URL.Query().Get("dry_run"); v == "1" || v == "true" {
		ont, stats := extract.ExtractOntology(rows, s.logger)
		s.respondJSON(w, http.StatusOK, OntologyResponse{
			Entities:      ont.Entities,
			Relationships: ont.Relationships,
			Columns:       ont.Columns,
			RowsProcessed: stats.RowsProcessed,
			RowsSkipped:   stats.RowsSkipped,
		})
		return
	}

	s.ingest(w, rows)
}

// readUploadRows pulls tabular rows out of the request: a multipart "file"
// part when present, otherwise the raw body treated as CSV.
func (s *Server) readUploadRows(r *http.Request) ([]extract.Row, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer file.Close()

		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".xlsx":
			return extract.ReadXLSX(file)
		default:
			return extract.ReadCSV(file)
		}
	}
	return extract.ReadCSV(r.Body)
}

// handleRebuild replaces the graph from a pre-extracted ontology document.
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req RebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ont := extract.Ontology{
		Entities:      make([]extract.Entity, 0, len(req.Entities)),
		Relationships: make([]extract.Relationship, 0, len(req.Relationships)),
	}
	for _, e := range req.Entities {
		entityType, err := storage.ParseEntityType(e.Type)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		ont.Entities = append(ont.Entities, extract.Entity{Label: e.Label, Type: entityType})
	}
	for _, rel := range req.Relationships {
		ont.Relationships = append(ont.Relationships, extract.Relationship{
			SourceLabel: rel.Source,
			TargetLabel: rel.Target,
			Type:        storage.NormalizeRelationType(rel.Type),
		})
	}

	s.rebuild(w, ont, extract.Stats{})
}

func (s *Server) ingest(w http.ResponseWriter, rows []extract.Row) {
	ont, stats := extract.ExtractOntology(rows, s.logger)
	s.rebuild(w, ont, stats)
}

func (s *Server) rebuild(w http.ResponseWriter, ont extract.Ontology, stats extract.Stats) {
	start := time.Now()

	built := builder.Build(ont, s.logger)
	result, err := s.store.ReplaceGraph(built.Nodes, built.Edges)
	if err != nil {
		s.metricsRegistry.RecordRebuild("error", time.Since(start), 0, 0)
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	elapsed := time.Since(start)
	s.metricsRegistry.RecordRebuild("ok", elapsed, result.NodesCreated, result.EdgesCreated)
	s.metricsRegistry.RecordIngest(elapsed, stats.RowsProcessed, stats.RowsSkipped, built.DroppedRelationships, built.DuplicateEdges)

	s.logger.Info("graph rebuilt",
		logging.Generation(result.GenerationID),
		logging.Nodes(result.NodesCreated),
		logging.Edges(result.EdgesCreated),
		logging.Rows(stats.RowsProcessed),
		logging.SkippedRows(stats.RowsSkipped),
		logging.Dropped(built.DroppedRelationships),
	)

	s.respondJSON(w, http.StatusOK, IngestResponse{
		GenerationID:         result.GenerationID,
		NodesCreated:         result.NodesCreated,
		EdgesCreated:         result.EdgesCreated,
		RowsProcessed:        stats.RowsProcessed,
		RowsSkipped:          stats.RowsSkipped,
		DroppedRelationships: built.DroppedRelationships,
		DuplicateEdges:       built.DuplicateEdges,
		Time:                 elapsed.String(),
	})
}
