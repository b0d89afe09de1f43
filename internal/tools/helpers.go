// Package tools implements the MCP tool handlers of the clinical records
// server.
//
// Each tool is a struct holding its dependencies, with a Definition for
// registration and a Handle method compatible with mcp-go's
// CallToolRequest signature. One file per tool.
//
// Tools never return Go errors for user-level failures: those become tool
// error results so the assistant can read and react to them.
package tools

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clinimap/internal/appstate"
	"github.com/HendryAvila/clinimap/internal/records"
	"github.com/HendryAvila/clinimap/internal/workspace"
)

// dateLayout is the date format accepted by tools.
const dateLayout = "2006-01-02"

// parseDate accepts YYYY-MM-DD or RFC 3339. Empty returns the zero time.
// bare reports whether s was a date without a time of day.
func parseDate(s string) (t time.Time, bare bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return t, false, nil
}

// errorResult turns err into a tool error result with a hint for the
// errors an assistant can act on.
func errorResult(action string, err error) *mcp.CallToolResult {
	msg := fmt.Sprintf("%s: %v", action, err)
	switch {
	case errors.Is(err, workspace.ErrWorkspaceNotSelected):
		msg += "\n\nCall clinic_select_workspace first."
	case errors.Is(err, workspace.ErrFeatureUnavailable):
		msg += "\n\nPass an explicit 'path' to clinic_select_workspace."
	case errors.Is(err, appstate.ErrNoActivePatient):
		msg += "\n\nOpen a patient with clinic_open_patient or create one with clinic_save_patient."
	case errors.Is(err, appstate.ErrNoActiveSession):
		msg += "\n\nCreate a session with clinic_new_session."
	case errors.Is(err, records.ErrRevisionConflict):
		msg += "\n\nThe document was changed elsewhere. Re-open the patient before saving again."
	}
	return mcp.NewToolResultError(msg)
}

// activePatientName returns name, or the open patient's name when name is
// blank.
func activePatientName(state *appstate.State, name string) (string, error) {
	if name = strings.TrimSpace(name); name != "" {
		return name, nil
	}
	p := state.ActivePatient()
	if p == nil {
		return "", appstate.ErrNoActivePatient
	}
	return p.Name, nil
}

func dimensionList() string {
	names := make([]string, len(records.Dimensions))
	for i, d := range records.Dimensions {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}

// writeSessionSummary renders one session as a markdown section.
func writeSessionSummary(sb *strings.Builder, s records.Session, detailed bool) {
	fmt.Fprintf(sb, "### Session %s\n", s.Date.UTC().Format(dateLayout))
	fmt.Fprintf(sb, "- **ID:** %s\n", s.ID)
	fmt.Fprintf(sb, "- **Processes:** %d | **Connections:** %d\n", len(s.Processes), len(s.Connections))
	if s.Notes != "" {
		fmt.Fprintf(sb, "- **Notes:** %s\n", s.Notes)
	}
	if !detailed {
		sb.WriteString("\n")
		return
	}

	texts := make(map[string]string, len(s.Processes))
	for _, p := range s.Processes {
		texts[p.ID] = p.Text
		fmt.Fprintf(sb, "  - [%s] %s `%s`\n", p.Dimension, p.Text, p.ID)
	}
	for _, c := range s.Connections {
		label := ""
		if c.Label != "" {
			label = fmt.Sprintf(" (%s)", c.Label)
		}
		fmt.Fprintf(sb, "  - %s --%s--> %s%s\n", orID(texts, c.From), c.Kind, orID(texts, c.To), label)
	}
	sb.WriteString("\n")
}

func orID(texts map[string]string, id string) string {
	if t, ok := texts[id]; ok && t != "" {
		return t
	}
	return id
}

// intArg extracts an integer argument from the request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// floatArg is intArg for coordinates.
func floatArg(req mcp.CallToolRequest, key string, defaultVal float64) float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return v
}
