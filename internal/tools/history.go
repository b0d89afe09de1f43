package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clinimap/internal/records"
)

// EventLog is the read side of the activity history.
type EventLog interface {
	Recent(ctx context.Context, limit int) ([]records.Event, error)
	ForEntity(ctx context.Context, entityID string, limit int) ([]records.Event, error)
}

// HistoryTool handles the clinic_history MCP tool. It works with a nil
// log and reports the history as unavailable.
type HistoryTool struct {
	log EventLog
}

// NewHistoryTool creates a HistoryTool.
func NewHistoryTool(log EventLog) *HistoryTool {
	return &HistoryTool{log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("clinic_history",
		mcp.WithDescription(
			"Show recent activity: patients and sessions saved, processes and "+
				"connections edited, exports. Newest first.",
		),
		mcp.WithString("entity_id",
			mcp.Description("Only events of this patient, session, process or connection ID"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max events (default: 20)"),
		),
	)
}

// Handle processes the clinic_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.log == nil {
		return mcp.NewToolResultError("activity history is not available: the history database could not be opened"), nil
	}

	limit := intArg(req, "limit", 0)
	entityID := strings.TrimSpace(req.GetString("entity_id", ""))

	var (
		events []records.Event
		err    error
	)
	if entityID != "" {
		events, err = t.log.ForEntity(ctx, entityID, limit)
	} else {
		events, err = t.log.Recent(ctx, limit)
	}
	if err != nil {
		return errorResult("reading history", err), nil
	}
	if len(events) == 0 {
		return mcp.NewToolResultText("No activity recorded yet."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Activity (%d)\n\n", len(events))
	for _, ev := range events {
		fmt.Fprintf(&sb, "- %s **%s** %s `%s`",
			ev.Timestamp.UTC().Format("2006-01-02 15:04:05"), ev.Kind, ev.Entity, ev.EntityID)
		if len(ev.Data) > 0 {
			fmt.Fprintf(&sb, " %s", ev.Data)
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}
