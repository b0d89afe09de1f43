package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clinimap/internal/appstate"
	"github.com/HendryAvila/clinimap/internal/records"
)

// EditProcessTool handles the clinic_edit_process MCP tool: update or
// delete one process of the session being edited.
type EditProcessTool struct {
	state *appstate.State
}

// NewEditProcessTool creates an EditProcessTool.
func NewEditProcessTool(state *appstate.State) *EditProcessTool {
	return &EditProcessTool{state: state}
}

// Definition returns the MCP tool definition for registration.
func (t *EditProcessTool) Definition() mcp.Tool {
	return mcp.NewTool("clinic_edit_process",
		mcp.WithDescription(
			"Update or delete a process of the session being edited. "+
				"Deleting a process also deletes every connection touching it. "+
				"Omitted fields keep their current value.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Process ID"),
		),
		mcp.WithString("action",
			mcp.Description("update (default) or delete"),
		),
		mcp.WithString("text",
			mcp.Description("New text"),
		),
		mcp.WithString("dimension",
			mcp.Description("New dimension: "+dimensionList()),
		),
		mcp.WithNumber("x",
			mcp.Description("New horizontal position"),
		),
		mcp.WithNumber("y",
			mcp.Description("New vertical position"),
		),
	)
}

// Handle processes the clinic_edit_process tool call.
func (t *EditProcessTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	switch action := req.GetString("action", "update"); action {
	case "delete":
		if err := t.state.DeleteProcess(ctx, id); err != nil {
			return errorResult("deleting process", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Process %s deleted with its connections.", id)), nil
	case "update", "":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q: use update or delete", action)), nil
	}

	sess := t.state.ActiveSession()
	if sess == nil {
		return errorResult("updating process", appstate.ErrNoActiveSession), nil
	}
	var cur *records.Process
	for i := range sess.Processes {
		if sess.Processes[i].ID == id {
			cur = &sess.Processes[i]
			break
		}
	}
	if cur == nil {
		return errorResult("updating process", fmt.Errorf("%w: %s", appstate.ErrProcessNotFound, id)), nil
	}

	next := *cur
	if text := strings.TrimSpace(req.GetString("text", "")); text != "" {
		next.Text = text
	}
	if dim := strings.TrimSpace(req.GetString("dimension", "")); dim != "" {
		next.Dimension = records.Dimension(dim)
	}
	next.Position.X = floatArg(req, "x", cur.Position.X)
	next.Position.Y = floatArg(req, "y", cur.Position.Y)

	updated, err := t.state.UpdateProcess(ctx, next)
	if err != nil {
		return errorResult("updating process", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"## Process Updated\n\n- **ID:** %s\n- **Text:** %s\n- **Dimension:** %s\n- **Position:** (%.0f, %.0f)\n",
		updated.ID, updated.Text, updated.Dimension, updated.Position.X, updated.Position.Y,
	)), nil
}
