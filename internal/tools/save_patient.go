package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clinimap/internal/appstate"
	"github.com/HendryAvila/clinimap/internal/records"
	"github.com/HendryAvila/clinimap/internal/workspace"
)

// SavePatientTool handles the clinic_save_patient MCP tool.
// It creates a new patient and opens it.
type SavePatientTool struct {
	state *appstate.State
}

// NewSavePatientTool creates a SavePatientTool.
func NewSavePatientTool(state *appstate.State) *SavePatientTool {
	return &SavePatientTool{state: state}
}

// Definition returns the MCP tool definition for registration.
func (t *SavePatientTool) Definition() mcp.Tool {
	return mcp.NewTool("clinic_save_patient",
		mcp.WithDescription(
			"Create a patient record (dados.json plus its folder tree) and open it. "+
				"Fails if a patient with the same folder name already exists.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Patient full name. Characters invalid in folder names become '_'"),
		),
		mcp.WithString("sex",
			mcp.Description("M, F or Outro"),
		),
		mcp.WithNumber("age",
			mcp.Description("Age in years"),
		),
	)
}

// Handle processes the clinic_save_patient tool call.
func (t *SavePatientTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	sex := records.Sex(strings.TrimSpace(req.GetString("sex", "")))
	age := intArg(req, "age", 0)
	if age < 0 {
		return mcp.NewToolResultError("'age' must not be negative"), nil
	}

	p, err := t.state.CreatePatient(ctx, name, sex, age)
	if err != nil {
		return errorResult("creating patient", err), nil
	}

	var sb strings.Builder
	sb.WriteString("## Patient Created\n\n")
	fmt.Fprintf(&sb, "- **Name:** %s\n", p.Name)
	fmt.Fprintf(&sb, "- **ID:** %s\n", p.ID)
	fmt.Fprintf(&sb, "- **Folder:** `%s`\n", workspace.PatientPath(p.Name))
	sb.WriteString("\nNext: clinic_new_session to start the first session.")
	return mcp.NewToolResultText(sb.String()), nil
}
