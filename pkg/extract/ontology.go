// Package extract turns tabular maintenance records into an ontology: a
// deduplicated list of typed entities plus the relationships observed
// between them, prior to any id assignment.
package extract

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-opsgraph/pkg/logging"
	"github.com/dd0wney/cluso-opsgraph/pkg/storage"
)

// Column names recognized in the input. Anything else is carried through in
// Ontology.Columns for traceability but contributes no entities.
const (
	ColWorkOrderID     = "Work Order ID"
	ColAssetID         = "Asset ID"
	ColAssetName       = "Asset Name"
	ColFacilityName    = "Facility Name"
	ColDepartment      = "Department"
	ColAssignedTo      = "Assigned To"
	ColWorkstationName = "Workstation Name"
)

// WorkOrderPrefix disambiguates work order labels from raw ids shared with
// other entity types.
const WorkOrderPrefix = "WO_"

// Row is one tabular record, keyed by column name. Values may be absent,
// nil, or scalar; non-scalar values mark the row malformed.
type Row map[string]any

// Entity is a typed entity referenced by label.
type Entity struct {
	Label string             `json:"label"`
	Type  storage.EntityType `json:"type"`
}

// Relationship is a typed relationship between two entities, referenced by
// label. Endpoint resolution happens later, in the builder.
type Relationship struct {
	SourceLabel string               `json:"source"`
	TargetLabel string               `json:"target"`
	Type        storage.RelationType `json:"type"`
}

// Ontology is the extractor's output.
type Ontology struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	Columns       []string       `json:"columns"`
}

// Stats reports what extraction skipped.
type Stats struct {
	RowsProcessed int `json:"rows_processed"`
	RowsSkipped   int `json:"rows_skipped"`
}

// RowError marks a row whose values could not be read as scalars.
type RowError struct {
	Index  int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column %q: %v", e.Index, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Ontology extraction. Entities are deduplicated on (label, type) and sorted
// by label then type, so downstream id assignment is reproducible for
// identical input. Relationships keep row order and are NOT deduplicated
// here; the builder collapses them after endpoint resolution.
func ExtractOntology(rows []Row, logger logging.Logger) (Ontology, Stats) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Component("extract"))

	seen := make(map[Entity]struct{})
	entities := make([]Entity, 0)
	relationships := make([]Relationship, 0)
	columns := make(map[string]struct{})
	stats := Stats{}

	addEntity := func(label string, t storage.EntityType) {
		e := Entity{Label: label, Type: t}
		if _, dup := seen[e]; dup {
			return
		}
		seen[e] = struct{}{}
		entities = append(entities, e)
	}

	for i, row := range rows {
		for col := range row {
			columns[col] = struct{}{}
		}

		fields, err := readRow(i, row)
		if err != nil {
			stats.RowsSkipped++
			logger.Warn("skipping malformed row", logging.Int("row", i), logging.Error(err))
			continue
		}
		stats.RowsProcessed++

		// Entity rules, one per recognized column.
		if fields.assetID != "" && fields.assetName != "" {
			addEntity(fields.assetName, storage.TypeAsset)
		}
		if fields.facility != "" {
			addEntity(fields.facility, storage.TypeFacility)
		}
		if fields.department != "" {
			addEntity(fields.department, storage.TypeDepartment)
		}
		if fields.workOrderID != "" {
			addEntity(WorkOrderPrefix+fields.workOrderID, storage.TypeWorkOrder)
		}
		if fields.assignedTo != "" {
			addEntity(fields.assignedTo, storage.TypePersonnel)
		}
		if fields.workstation != "" {
			addEntity(fields.workstation, storage.TypeWorkstation)
		}

		// Relationship rules, evaluated when both endpoints are present in
		// the row. Endpoints reference labels; rows missing the entity rule
		// inputs (e.g. an asset name without an asset id) still emit the
		// relationship and rely on the builder to drop what cannot resolve.
		if fields.assetName != "" && fields.facility != "" {
			relationships = append(relationships, Relationship{
				SourceLabel: fields.assetName,
				TargetLabel: fields.facility,
				Type:        storage.RelLocatedIn,
			})
		}
		if fields.assetName != "" && fields.department != "" {
			relationships = append(relationships, Relationship{
				SourceLabel: fields.assetName,
				TargetLabel: fields.department,
				Type:        storage.RelBelongsTo,
			})
		}
		if fields.workOrderID != "" && fields.assetName != "" {
			relationships = append(relationships, Relationship{
				SourceLabel: WorkOrderPrefix + fields.workOrderID,
				TargetLabel: fields.assetName,
				Type:        storage.RelMaintains,
			})
		}
		if fields.workOrderID != "" && fields.assignedTo != "" {
			relationships = append(relationships, Relationship{
				SourceLabel: WorkOrderPrefix + fields.workOrderID,
				TargetLabel: fields.assignedTo,
				Type:        storage.RelAssignedTo,
			})
		}
		if fields.workstation != "" && fields.department != "" {
			relationships = append(relationships, Relationship{
				SourceLabel: fields.workstation,
				TargetLabel: fields.department,
				Type:        storage.RelAssignedTo,
			})
		}
	}

	sort.Slice(entities, func(a, b int) bool {
		if entities[a].Label != entities[b].Label {
			return entities[a].Label < entities[b].Label
		}
		return entities[a].Type < entities[b].Type
	})

	cols := make([]string, 0, len(columns))
	for col := range columns {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	if stats.RowsSkipped > 0 {
		logger.Warn("extraction finished with skipped rows",
			logging.Rows(stats.RowsProcessed),
			logging.SkippedRows(stats.RowsSkipped),
		)
	}

	return Ontology{
		Entities:      entities,
		Relationships: relationships,
		Columns:       cols,
	}, stats
}

type rowFields struct {
	workOrderID string
	assetID     string
	assetName   string
	facility    string
	department  string
	assignedTo  string
	workstation string
}

func readRow(index int, row Row) (rowFields, error) {
	var f rowFields
	var err error
	read := func(col string) string {
		if err != nil {
			return ""
		}
		v, readErr := scalarField(row, col)
		if readErr != nil {
			err = &RowError{Index: index, Column: col, Err: readErr}
			return ""
		}
		return v
	}

	f.workOrderID = read(ColWorkOrderID)
	f.assetID = read(ColAssetID)
	f.assetName = read(ColAssetName)
	f.facility = read(ColFacilityName)
	f.department = read(ColDepartment)
	f.assignedTo = read(ColAssignedTo)
	f.workstation = read(ColWorkstationName)
	return f, err
}

// scalarField reads a column as a trimmed string. Absent, nil, and blank
// values all read as "" (skipped silently); non-scalar values are an error.
func scalarField(row Row, col string) (string, error) {
	v, ok := row[col]
	if !ok || v == nil {
		return "", nil
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
