package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clinimap/internal/appstate"
	"github.com/HendryAvila/clinimap/internal/records"
)

// SaveTool handles the clinic_save MCP tool.
type SaveTool struct {
	state *appstate.State
}

// NewSaveTool creates a SaveTool.
func NewSaveTool(state *appstate.State) *SaveTool {
	return &SaveTool{state: state}
}

// Definition returns the MCP tool definition for registration.
func (t *SaveTool) Definition() mcp.Tool {
	return mcp.NewTool("clinic_save",
		mcp.WithDescription(
			"Write the session being edited to its file, then the patient record. "+
				"Autosave does the same periodically when enabled.",
		),
	)
}

// Handle processes the clinic_save tool call.
func (t *SaveTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := t.state.Save(ctx); err != nil {
		return errorResult("saving", err), nil
	}
	p := t.state.ActivePatient()
	s := t.state.ActiveSession()
	return mcp.NewToolResultText(fmt.Sprintf(
		"## Saved\n\n- **Patient:** %s (revision %d)\n- **Session:** %s → `%s` (revision %d)\n",
		p.Name, p.Revision, s.Date.UTC().Format(dateLayout), records.SessionFileName(s.Date), s.Revision,
	)), nil
}
