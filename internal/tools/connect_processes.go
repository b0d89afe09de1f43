package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clinimap/internal/appstate"
	"github.com/HendryAvila/clinimap/internal/records"
)

// ConnectProcessesTool handles the clinic_connect_processes MCP tool.
// With 'delete' set it removes a connection instead.
type ConnectProcessesTool struct {
	state *appstate.State
}

// NewConnectProcessesTool creates a ConnectProcessesTool.
func NewConnectProcessesTool(state *appstate.State) *ConnectProcessesTool {
	return &ConnectProcessesTool{state: state}
}

// Definition returns the MCP tool definition for registration.
func (t *ConnectProcessesTool) Definition() mcp.Tool {
	return mcp.NewTool("clinic_connect_processes",
		mcp.WithDescription(
			"Link two processes of the session being edited, or remove a link. "+
				"Kinds: causal, correlacional, temporal, bidirectional.",
		),
		mcp.WithString("from",
			mcp.Description("Source process ID"),
		),
		mcp.WithString("to",
			mcp.Description("Target process ID"),
		),
		mcp.WithString("kind",
			mcp.Description("Connection kind (default: causal)"),
		),
		mcp.WithString("label",
			mcp.Description("Optional label shown on the link"),
		),
		mcp.WithString("delete",
			mcp.Description("ID of a connection to remove; other fields are ignored"),
		),
	)
}

// Handle processes the clinic_connect_processes tool call.
func (t *ConnectProcessesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if id := strings.TrimSpace(req.GetString("delete", "")); id != "" {
		if err := t.state.DeleteConnection(ctx, id); err != nil {
			return errorResult("removing connection", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Connection %s removed.", id)), nil
	}

	from := strings.TrimSpace(req.GetString("from", ""))
	to := strings.TrimSpace(req.GetString("to", ""))
	if from == "" || to == "" {
		return mcp.NewToolResultError("'from' and 'to' are required"), nil
	}
	kind := records.ConnectionKind(req.GetString("kind", string(records.KindCausal)))

	c, err := t.state.AddConnection(ctx, from, to, kind, strings.TrimSpace(req.GetString("label", "")))
	if err != nil {
		return errorResult("connecting processes", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"## Connection Added\n\n- **ID:** %s\n- **From:** %s\n- **To:** %s\n- **Kind:** %s\n",
		c.ID, c.From, c.To, c.Kind,
	)), nil
}
