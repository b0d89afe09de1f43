package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clinimap/internal/appstate"
	"github.com/HendryAvila/clinimap/internal/records"
	"github.com/HendryAvila/clinimap/internal/search"
)

// SessionLoader reads the session files of a patient.
type SessionLoader interface {
	LoadSessions(ctx context.Context, patientName string) ([]records.Session, error)
}

// SearchTool handles the clinic_search MCP tool.
type SearchTool struct {
	state *appstate.State
	store SessionLoader
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(state *appstate.State, store SessionLoader) *SearchTool {
	return &SearchTool{state: state, store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("clinic_search",
		mcp.WithDescription(
			"Search the process texts of a patient's sessions. Matching is "+
				"case-insensitive and literal. Results are ranked by the number of "+
				"occurrences, matches shown in bold.",
		),
		mcp.WithString("term",
			mcp.Required(),
			mcp.Description("Text to look for"),
		),
		mcp.WithString("patient",
			mcp.Description("Patient name (default: the open patient, unsaved edits included). Other patients are searched in their saved files"),
		),
		mcp.WithString("dimension",
			mcp.Description("Only processes of this dimension"),
		),
		mcp.WithString("from",
			mcp.Description("Only sessions on or after this date (YYYY-MM-DD)"),
		),
		mcp.WithString("to",
			mcp.Description("Only sessions on or before this date (YYYY-MM-DD)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 20)"),
		),
	)
}

// Handle processes the clinic_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term := req.GetString("term", "")
	if strings.TrimSpace(term) == "" {
		return mcp.NewToolResultError("'term' is required"), nil
	}
	filter := search.Filter{}
	if dim := strings.TrimSpace(req.GetString("dimension", "")); dim != "" {
		if !records.ValidDimension(records.Dimension(dim)) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid dimension %q. Valid values: %s", dim, dimensionList())), nil
		}
		filter.Dimensions = []records.Dimension{records.Dimension(dim)}
	}
	var err error
	if filter.From, _, err = parseDate(req.GetString("from", "")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var bareTo bool
	if filter.To, bareTo, err = parseDate(req.GetString("to", "")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if bareTo {
		filter.To = filter.To.Add(24*time.Hour - time.Nanosecond)
	}

	name, sessions, fromFiles, loadErr, err := t.sessionsFor(ctx, req.GetString("patient", ""))
	if err != nil {
		return errorResult("searching", err), nil
	}
	sessions = narrow(sessions, filter)

	results := search.Search(term, sessions)
	limit := intArg(req, "limit", 20)
	if limit <= 0 {
		limit = 20
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search: %q in %s\n\n", term, name)
	if fromFiles {
		sb.WriteString("Patient not open: searched the saved session files.\n\n")
	}
	if loadErr != nil {
		fmt.Fprintf(&sb, "⚠️ %d session file(s) could not be read and were not searched.\n\n", len(loadErr.Failures))
	}
	if len(results) == 0 {
		sb.WriteString("No matches.")
		return mcp.NewToolResultText(sb.String()), nil
	}

	fmt.Fprintf(&sb, "%d match(es)", len(results))
	if len(results) > limit {
		fmt.Fprintf(&sb, ", showing %d", limit)
		results = results[:limit]
	}
	sb.WriteString("\n\n")
	for _, r := range results {
		fmt.Fprintf(&sb, "- %s [%s] %s (%d×) `%s`\n",
			r.Session.Date.UTC().Format(dateLayout), r.Process.Dimension,
			renderHighlight(r.Process.Text, term), r.Relevance, r.Process.ID)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// sessionsFor returns the sessions to search. The open patient is
// searched in memory, unsaved edits included; any other named patient is
// read from its saved session files.
func (t *SearchTool) sessionsFor(ctx context.Context, name string) (string, []records.Session, bool, *records.LoadError, error) {
	name = strings.TrimSpace(name)
	if open := t.state.ActivePatient(); open != nil && (name == "" || name == open.Name) {
		sessions, err := t.state.LoadedSessions()
		return open.Name, sessions, false, nil, err
	}
	if name == "" {
		return "", nil, false, nil, appstate.ErrNoActivePatient
	}

	sessions, err := t.store.LoadSessions(ctx, name)
	var loadErr *records.LoadError
	if err != nil && !errors.As(err, &loadErr) {
		return "", nil, false, nil, err
	}
	return name, sessions, true, loadErr, nil
}

// narrow keeps, per session, only the processes the filter accepts.
// Sessions left without processes are dropped.
func narrow(sessions []records.Session, f search.Filter) []records.Session {
	if len(f.Dimensions) == 0 && f.From.IsZero() && f.To.IsZero() {
		return sessions
	}
	out := make([]records.Session, 0, len(sessions))
	for _, s := range sessions {
		kept := f.Apply([]records.Session{s})
		if len(kept) == 0 {
			continue
		}
		s.Processes = kept
		out = append(out, s)
	}
	return out
}

func renderHighlight(text, term string) string {
	var sb strings.Builder
	for _, frag := range search.Highlight(text, term) {
		if frag.Match {
			sb.WriteString("**" + frag.Text + "**")
			continue
		}
		sb.WriteString(frag.Text)
	}
	return sb.String()
}
