// Package resources implements MCP resource handlers for the clinical
// records server.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (clinic://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clinimap/internal/appstate"
	"github.com/HendryAvila/clinimap/internal/config"
	"github.com/HendryAvila/clinimap/internal/records"
)

// StatusURI addresses the workspace status resource.
const StatusURI = "clinic://workspace/status"

// Handler manages clinic resource endpoints.
type Handler struct {
	state *appstate.State
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(state *appstate.State) *Handler {
	return &Handler{state: state}
}

// Status is the JSON document served at StatusURI.
type Status struct {
	WorkspaceSelected bool                 `json:"workspaceSelected"`
	Configuration     config.Configuration `json:"configuracao"`
	Patient           *PatientStatus       `json:"paciente,omitempty"`
	Session           *SessionStatus       `json:"sessao,omitempty"`
	CanEdit           bool                 `json:"canEdit"`
	PendingChanges    bool                 `json:"pendingChanges"`
}

// PatientStatus summarises the open patient.
type PatientStatus struct {
	ID       string `json:"id"`
	Name     string `json:"nome"`
	Sessions int    `json:"sessoes"`
	Revision int64  `json:"revisao"`
}

// SessionStatus summarises the session being edited.
type SessionStatus struct {
	ID          string                    `json:"id"`
	Date        string                    `json:"data"`
	Processes   int                       `json:"processos"`
	Connections int                       `json:"conexoes"`
	ByDimension map[records.Dimension]int `json:"porDimensao"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

// StatusResource returns the MCP resource definition for the workspace status.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		StatusURI,
		"Clinical Workspace Status",
		mcp.WithResourceDescription("Selected workspace, open patient and session, unsaved changes"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStatus returns the current working state as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.state == nil {
		return errorResource(req.Params.URI, "state not initialised"), nil
	}

	data, err := json.MarshalIndent(h.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// Snapshot builds the status document.
func (h *Handler) Snapshot() Status {
	cfg := h.state.Configuration()
	st := Status{
		WorkspaceSelected: cfg.Workspace != "",
		Configuration:     cfg,
		CanEdit:           h.state.CanEdit(),
		PendingChanges:    h.state.HasPendingChanges(),
	}
	if p := h.state.ActivePatient(); p != nil {
		st.Patient = &PatientStatus{ID: p.ID, Name: p.Name, Sessions: len(p.Sessions), Revision: p.Revision}
	}
	if s := h.state.ActiveSession(); s != nil {
		by := make(map[records.Dimension]int)
		for _, proc := range s.Processes {
			by[proc.Dimension]++
		}
		st.Session = &SessionStatus{
			ID:          s.ID,
			Date:        s.Date.UTC().Format("2006-01-02"),
			Processes:   len(s.Processes),
			Connections: len(s.Connections),
			ByDimension: by,
			UpdatedAt:   s.UpdatedAt,
		}
	}
	return st
}
