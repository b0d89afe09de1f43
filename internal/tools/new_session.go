package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clinimap/internal/appstate"
	"github.com/HendryAvila/clinimap/internal/records"
)

// NewSessionTool handles the clinic_new_session MCP tool.
type NewSessionTool struct {
	state *appstate.State
}

// NewNewSessionTool creates a NewSessionTool.
func NewNewSessionTool(state *appstate.State) *NewSessionTool {
	return &NewSessionTool{state: state}
}

// Definition returns the MCP tool definition for registration.
func (t *NewSessionTool) Definition() mcp.Tool {
	return mcp.NewTool("clinic_new_session",
		mcp.WithDescription(
			"Start an empty session for the open patient and save it. "+
				"Sessions are stored one file per day: a second session on the same "+
				"day replaces the first file.",
		),
		mcp.WithString("date",
			mcp.Description("Session date, YYYY-MM-DD (default: today)"),
		),
	)
}

// Handle processes the clinic_new_session tool call.
func (t *NewSessionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, _, err := parseDate(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sess, err := t.state.NewSession(ctx, date)
	if err != nil {
		return errorResult("creating session", err), nil
	}

	var sb strings.Builder
	sb.WriteString("## Session Created\n\n")
	writeSessionSummary(&sb, *sess, false)
	sb.WriteString("**File:** `" + records.SessionFileName(sess.Date) + "`\n\n")
	sb.WriteString("Next: clinic_add_process to place processes on the map.")
	return mcp.NewToolResultText(sb.String()), nil
}
