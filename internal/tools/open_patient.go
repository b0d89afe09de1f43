package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clinimap/internal/appstate"
	"github.com/HendryAvila/clinimap/internal/records"
)

// OpenPatientTool handles the clinic_open_patient MCP tool.
type OpenPatientTool struct {
	state *appstate.State
}

// NewOpenPatientTool creates an OpenPatientTool.
func NewOpenPatientTool(state *appstate.State) *OpenPatientTool {
	return &OpenPatientTool{state: state}
}

// Definition returns the MCP tool definition for registration.
func (t *OpenPatientTool) Definition() mcp.Tool {
	return mcp.NewTool("clinic_open_patient",
		mcp.WithDescription(
			"Open a patient and its sessions, most recent first. "+
				"The most recent session becomes the one being edited. "+
				"Pass 'session_id' to edit another session instead.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Patient name as listed by clinic_list_patients"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session to select after opening"),
		),
	)
}

// Handle processes the clinic_open_patient tool call.
func (t *OpenPatientTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	p, err := t.state.OpenPatient(ctx, name)
	var loadErr *records.LoadError
	if err != nil && !errors.As(err, &loadErr) {
		return errorResult("opening patient", err), nil
	}

	if id := strings.TrimSpace(req.GetString("session_id", "")); id != "" {
		if err := t.state.SelectSession(id); err != nil {
			return errorResult("selecting session", err), nil
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Patient: %s\n\n", p.Name)
	fmt.Fprintf(&sb, "- **ID:** %s\n", p.ID)
	if p.Sex != "" {
		fmt.Fprintf(&sb, "- **Sex:** %s\n", p.Sex)
	}
	fmt.Fprintf(&sb, "- **Age:** %d\n", p.Age)
	fmt.Fprintf(&sb, "- **Sessions:** %d\n\n", len(p.Sessions))

	if loadErr != nil {
		fmt.Fprintf(&sb, "⚠️ %d session file(s) could not be read:\n", len(loadErr.Failures))
		for _, f := range loadErr.Failures {
			fmt.Fprintf(&sb, "- `%s`: %v\n", f.File, f.Err)
		}
		sb.WriteString("\n")
	}

	if active := t.state.ActiveSession(); active != nil {
		sb.WriteString("Editing:\n\n")
		writeSessionSummary(&sb, *active, true)
	}
	for _, s := range p.Sessions {
		writeSessionSummary(&sb, s, false)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
