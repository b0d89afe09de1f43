package resources

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clinimap/internal/appstate"
	"github.com/HendryAvila/clinimap/internal/config"
	"github.com/HendryAvila/clinimap/internal/records"
	"github.com/HendryAvila/clinimap/internal/workspace"
)

func readStatus(t *testing.T, h *Handler) Status {
	t.Helper()
	req := mcp.ReadResourceRequest{}
	req.Params.URI = StatusURI

	contents, err := h.HandleStatus(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleStatus failed: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok || text.MIMEType != "application/json" {
		t.Fatalf("unexpected contents %#v", contents[0])
	}
	var st Status
	if err := json.Unmarshal([]byte(text.Text), &st); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return st
}

func TestStatus_NothingSelected(t *testing.T) {
	ws := workspace.NewManager(workspace.StaticPicker(workspace.NewMemDir("consultorio")))
	h := NewHandler(appstate.New(records.NewStore(ws), ws, config.Default()))

	st := readStatus(t, h)
	if st.WorkspaceSelected || st.Patient != nil || st.Session != nil || st.CanEdit {
		t.Errorf("expected empty status, got %+v", st)
	}
	if !st.Configuration.AutoSave {
		t.Error("configuration should be included")
	}
}

func TestStatus_OpenSession(t *testing.T) {
	ctx := context.Background()
	ws := workspace.NewManager(workspace.StaticPicker(workspace.NewMemDir("consultorio")))
	state := appstate.New(records.NewStore(ws), ws, config.Default())
	if _, err := state.SelectWorkspace(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := state.CreatePatient(ctx, "Ana", records.SexFemale, 30); err != nil {
		t.Fatal(err)
	}
	if _, err := state.NewSession(ctx, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	_, _ = state.AddProcess(ctx, "a", records.DimensionAffect, records.Position{})
	_, _ = state.AddProcess(ctx, "b", records.DimensionAffect, records.Position{})

	st := readStatus(t, NewHandler(state))
	if !st.WorkspaceSelected || st.Configuration.Workspace != "consultorio" {
		t.Errorf("workspace = %+v", st.Configuration)
	}
	if st.Patient == nil || st.Patient.Name != "Ana" {
		t.Fatalf("patient = %+v", st.Patient)
	}
	if st.Session == nil || st.Session.Date != "2026-04-01" || st.Session.ByDimension[records.DimensionAffect] != 2 {
		t.Errorf("session = %+v", st.Session)
	}
	if !st.CanEdit || !st.PendingChanges {
		t.Errorf("canEdit = %v, pending = %v", st.CanEdit, st.PendingChanges)
	}
}

func TestStatusResource_Definition(t *testing.T) {
	r := NewHandler(nil).StatusResource()
	if r.URI != StatusURI {
		t.Errorf("URI = %s, want %s", r.URI, StatusURI)
	}
}
