package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clinimap/internal/appstate"
	"github.com/HendryAvila/clinimap/internal/workspace"
)

// SelectWorkspaceTool handles the clinic_select_workspace MCP tool.
type SelectWorkspaceTool struct {
	state *appstate.State
}

// NewSelectWorkspaceTool creates a SelectWorkspaceTool.
func NewSelectWorkspaceTool(state *appstate.State) *SelectWorkspaceTool {
	return &SelectWorkspaceTool{state: state}
}

// Definition returns the MCP tool definition for registration.
func (t *SelectWorkspaceTool) Definition() mcp.Tool {
	return mcp.NewTool("clinic_select_workspace",
		mcp.WithDescription(
			"Grant the folder where clinical records are kept. "+
				"Creates 'Processos Clinicos/Pacientes' inside it if missing. "+
				"Without 'path', the folder configured at startup is used. "+
				"Every other clinic_ tool needs a workspace.",
		),
		mcp.WithString("path",
			mcp.Description("Absolute path of the workspace folder"),
		),
	)
}

// Handle processes the clinic_select_workspace tool call.
func (t *SelectWorkspaceTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := strings.TrimSpace(req.GetString("path", ""))

	var (
		name string
		err  error
	)
	if path == "" {
		name, err = t.state.SelectWorkspace(ctx)
	} else {
		name, err = t.state.SelectWorkspaceFrom(ctx, workspace.PathPicker{Path: path})
	}
	if err != nil {
		return errorResult("selecting workspace", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"## Workspace Selected\n\n**Folder:** %s\n\nRecords live under `%s`.",
		name, workspace.PatientsPath(),
	)), nil
}
