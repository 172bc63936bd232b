package retrieval

import (
	"fmt"
	"strings"
)

// maxListedWorkOrders caps per-item work order lists in the rendered text.
const maxListedWorkOrders = 10

// Format renders a context payload as deterministic plain text for the
// generator prompt. It is a pure function: the same payload always renders
// to the same bytes, and absent data is stated explicitly rather than
// omitted.
func Format(payload ContextPayload) string {
	var b strings.Builder

	switch payload.Type {
	case PayloadFacility:
		formatFacility(&b, payload.Facility)
	case PayloadFacilityList:
		formatFacilityList(&b, payload.FacilityList)
	case PayloadAsset:
		formatAsset(&b, payload.Asset)
	case PayloadMaintenance:
		formatMaintenance(&b, payload.Maintenance)
	case PayloadPersonnel:
		formatPersonnel(&b, payload.Personnel)
	case PayloadGeneral:
		formatGeneral(&b, payload.General)
	case PayloadUnavailable:
		b.WriteString("Knowledge graph data is currently unavailable. No context could be retrieved.\n")
	default:
		b.WriteString("No context available for this question.\n")
	}

	if payload.Note != "" {
		fmt.Fprintf(&b, "Note: %s\n", payload.Note)
	}
	return b.String()
}

func formatFacility(b *strings.Builder, fc *FacilityContext) {
	b.WriteString("Facility Information:\n")
	if fc == nil || len(fc.Facilities) == 0 {
		b.WriteString("No facilities found in the knowledge graph.\n")
		return
	}
	for _, facility := range fc.Facilities {
		fmt.Fprintf(b, "\n%s:\n", facility.Name)
		if len(facility.Assets) == 0 {
			b.WriteString("  No assets found in this facility.\n")
			continue
		}
		for _, asset := range facility.Assets {
			fmt.Fprintf(b, "  • %s\n", asset.Asset)
			if len(asset.WorkOrders) == 0 {
				b.WriteString("      No work orders reference this asset.\n")
				continue
			}
			fmt.Fprintf(b, "      Maintained by: %s\n", joinWorkOrders(asset.WorkOrders))
		}
	}
	if fc.Truncated {
		b.WriteString("\n(Result truncated: traversal budget reached.)\n")
	}
}

func formatFacilityList(b *strings.Builder, fl *FacilityList) {
	if fl == nil || len(fl.Facilities) == 0 {
		b.WriteString("No facilities found in the knowledge graph.\n")
		return
	}
	b.WriteString("I could not match a specific facility. Known facilities:\n")
	for _, name := range fl.Facilities {
		fmt.Fprintf(b, "• %s\n", name)
	}
}

func formatAsset(b *strings.Builder, ac *AssetContext) {
	b.WriteString("Asset Information:\n")
	if ac == nil || len(ac.Assets) == 0 {
		b.WriteString("No assets found in the knowledge graph.\n")
		return
	}
	for _, asset := range ac.Assets {
		fmt.Fprintf(b, "\n%s:\n", asset.Name)
		if asset.Facility != "" {
			fmt.Fprintf(b, "  Located in: %s (Facility)\n", asset.Facility)
		} else {
			b.WriteString("  Location unknown.\n")
		}
		if asset.Department != "" {
			fmt.Fprintf(b, "  Belongs to: %s (Department)\n", asset.Department)
		}
		if len(asset.WorkOrders) == 0 {
			b.WriteString("  No work orders reference this asset.\n")
		} else {
			fmt.Fprintf(b, "  Work orders: %s\n", joinWorkOrders(asset.WorkOrders))
		}
	}
	fmt.Fprintf(b, "\nTotal distinct work orders: %d\n", ac.TotalWorkOrders)
}

func formatMaintenance(b *strings.Builder, mc *MaintenanceContext) {
	b.WriteString("Work Order Information:\n")
	if mc == nil || len(mc.WorkOrders) == 0 {
		b.WriteString("No work orders found in the knowledge graph.\n")
		return
	}
	for _, wo := range mc.WorkOrders {
		fmt.Fprintf(b, "\n%s:\n", displayWorkOrder(wo.ID))
		if wo.Asset != "" {
			fmt.Fprintf(b, "  Maintains: %s (Asset)\n", wo.Asset)
		} else {
			b.WriteString("  No asset linked to this work order.\n")
		}
		if wo.Facility != "" {
			fmt.Fprintf(b, "  Located in: %s (Facility)\n", wo.Facility)
		}
		if wo.AssignedTo != "" {
			fmt.Fprintf(b, "  Assigned to: %s\n", wo.AssignedTo)
		} else {
			b.WriteString("  Unassigned.\n")
		}
	}
	if mc.Truncated {
		fmt.Fprintf(b, "\n(Showing the first %d work orders.)\n", maintenanceLimit)
	}
}

func formatPersonnel(b *strings.Builder, pc *PersonnelContext) {
	b.WriteString("Personnel Information:\n")
	if pc == nil || len(pc.People) == 0 {
		b.WriteString("No personnel found in the knowledge graph.\n")
		return
	}
	for _, person := range pc.People {
		fmt.Fprintf(b, "\n%s:\n", person.Name)
		if len(person.WorkOrders) == 0 {
			b.WriteString("  No work orders assigned.\n")
			continue
		}
		fmt.Fprintf(b, "  Assigned: %s\n", joinWorkOrders(person.WorkOrders))
		if len(person.Assets) > 0 {
			fmt.Fprintf(b, "  Works on: %s\n", strings.Join(person.Assets, ", "))
		}
	}
}

func formatGeneral(b *strings.Builder, gc *GeneralContext) {
	b.WriteString("Knowledge Graph Overview:\n")
	if gc == nil || len(gc.Samples) == 0 {
		b.WriteString("The knowledge graph is empty.\n")
		return
	}
	for _, sample := range gc.Samples {
		fmt.Fprintf(b, "• %s (%s)\n", sample.Label, sample.Type)
		for _, nb := range sample.Neighbors {
			fmt.Fprintf(b, "    %s → %s (%s)\n", nb.Relation, nb.Label, nb.Type)
		}
	}
}

// joinWorkOrders renders a bounded, comma-joined work order list with the
// storage prefix translated to readable text.
func joinWorkOrders(ids []string) string {
	shown := ids
	more := 0
	if len(shown) > maxListedWorkOrders {
		more = len(shown) - maxListedWorkOrders
		shown = shown[:maxListedWorkOrders]
	}
	parts := make([]string, 0, len(shown))
	for _, id := range shown {
		parts = append(parts, displayWorkOrder(id))
	}
	out := strings.Join(parts, ", ")
	if more > 0 {
		out += fmt.Sprintf(", and %d more", more)
	}
	return out
}

// displayWorkOrder turns the internal "WO_" label prefix into prose.
func displayWorkOrder(id string) string {
	if rest, ok := strings.CutPrefix(id, "WO_"); ok {
		return "Work Order " + rest
	}
	return id
}
