package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clinimap/internal/appstate"
	"github.com/HendryAvila/clinimap/internal/records"
)

// AddProcessTool handles the clinic_add_process MCP tool.
type AddProcessTool struct {
	state *appstate.State
}

// NewAddProcessTool creates an AddProcessTool.
func NewAddProcessTool(state *appstate.State) *AddProcessTool {
	return &AddProcessTool{state: state}
}

// Definition returns the MCP tool definition for registration.
func (t *AddProcessTool) Definition() mcp.Tool {
	return mcp.NewTool("clinic_add_process",
		mcp.WithDescription(
			"Place a clinical process on the session being edited. "+
				"Changes stay in memory until clinic_save or the next autosave.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("What was observed, in the clinician's words"),
		),
		mcp.WithString("dimension",
			mcp.Required(),
			mcp.Description("One of: "+dimensionList()),
		),
		mcp.WithNumber("x",
			mcp.Description("Horizontal position on the map"),
		),
		mcp.WithNumber("y",
			mcp.Description("Vertical position on the map"),
		),
	)
}

// Handle processes the clinic_add_process tool call.
func (t *AddProcessTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := strings.TrimSpace(req.GetString("text", ""))
	if text == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}
	dim := records.Dimension(strings.TrimSpace(req.GetString("dimension", "")))
	if !records.ValidDimension(dim) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"invalid dimension %q. Valid values: %s", dim, dimensionList(),
		)), nil
	}
	pos := records.Position{X: floatArg(req, "x", 0), Y: floatArg(req, "y", 0)}

	p, err := t.state.AddProcess(ctx, text, dim, pos)
	if err != nil {
		return errorResult("adding process", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"## Process Added\n\n- **ID:** %s\n- **Text:** %s\n- **Dimension:** %s\n- **Color:** %s\n",
		p.ID, p.Text, p.Dimension, p.Color,
	)), nil
}
