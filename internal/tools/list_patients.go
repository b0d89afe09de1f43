package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// PatientLister lists the patient folders of the workspace.
type PatientLister interface {
	ListPatients(ctx context.Context) ([]string, error)
}

// ListPatientsTool handles the clinic_list_patients MCP tool.
type ListPatientsTool struct {
	store PatientLister
}

// NewListPatientsTool creates a ListPatientsTool.
func NewListPatientsTool(store PatientLister) *ListPatientsTool {
	return &ListPatientsTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ListPatientsTool) Definition() mcp.Tool {
	return mcp.NewTool("clinic_list_patients",
		mcp.WithDescription("List the patients of the selected workspace, alphabetically."),
	)
}

// Handle processes the clinic_list_patients tool call.
func (t *ListPatientsTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := t.store.ListPatients(ctx)
	if err != nil {
		return errorResult("listing patients", err), nil
	}
	if len(names) == 0 {
		return mcp.NewToolResultText("No patients yet. Create one with clinic_save_patient."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Patients (%d)\n\n", len(names))
	for _, n := range names {
		fmt.Fprintf(&sb, "- %s\n", n)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
