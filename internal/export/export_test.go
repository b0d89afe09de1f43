package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/HendryAvila/clinimap/internal/config"
	"github.com/HendryAvila/clinimap/internal/records"
	"github.com/HendryAvila/clinimap/internal/workspace"
)

// --- Helpers ---

// fakeDestination records every Create and keeps written bytes in memory.
type fakeDestination struct {
	mu       sync.Mutex
	names    []string
	buf      bytes.Buffer
	writeErr error
	closed   bool
}

func (d *fakeDestination) Create(_ context.Context, name string) (io.WriteCloser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names = append(d.names, name)
	return d, nil
}

func (d *fakeDestination) Write(p []byte) (int, error) {
	if d.writeErr != nil {
		return 0, d.writeErr
	}
	return d.buf.Write(p)
}

func (d *fakeDestination) Close() error {
	d.closed = true
	return nil
}

type eventSink struct {
	events []records.Event
}

func (s *eventSink) Record(_ context.Context, ev records.Event) {
	s.events = append(s.events, ev)
}

func withFixedTime(t *testing.T, now time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = orig })
}

func newTestStore(t *testing.T) *records.Store {
	t.Helper()
	m := workspace.NewManager(workspace.StaticPicker(workspace.NewMemDir("consultorio")))
	if _, err := m.Select(context.Background()); err != nil {
		t.Fatalf("setup: select workspace: %v", err)
	}
	return records.NewStore(m)
}

func seedPatient(t *testing.T, store *records.Store, name string, sessionDays ...int) *records.Patient {
	t.Helper()
	ctx := context.Background()
	p := records.NewPatient(name, records.SexFemale, 41)
	if err := store.SavePatient(ctx, p); err != nil {
		t.Fatalf("setup: save patient: %v", err)
	}
	for _, d := range sessionDays {
		s := records.NewSession(p.ID, time.Date(2026, 4, d, 10, 0, 0, 0, time.UTC))
		s.Processes = append(s.Processes, records.NewProcess(s.ID, "ansiedade", records.DimensionAffect, records.Position{}))
		if err := store.SaveSession(ctx, name, s); err != nil {
			t.Fatalf("setup: save session: %v", err)
		}
	}
	return p
}

func settings() config.Configuration {
	return config.Default().Configuration("consultorio")
}

// --- ExportPatient ---

func TestExportPatient_JSON(t *testing.T) {
	now := time.Date(2026, 5, 2, 18, 0, 0, 0, time.UTC)
	withFixedTime(t, now)

	store := newTestStore(t)
	p := seedPatient(t, store, "Maria Silva", 3, 10)
	dest := &fakeDestination{}
	sink := &eventSink{}

	name, err := NewExporter(store, dest, settings, WithRecorder(sink)).
		ExportPatient(context.Background(), "Maria Silva", FormatJSON)
	if err != nil {
		t.Fatalf("ExportPatient failed: %v", err)
	}

	if name != "Maria Silva_backup_2026-05-02.json" {
		t.Errorf("file name = %s", name)
	}
	if diff := cmp.Diff([]string{name}, dest.names); diff != "" {
		t.Errorf("destination names (-want +got):\n%s", diff)
	}
	if !dest.closed {
		t.Error("writer should be closed")
	}

	var env Envelope
	if err := json.Unmarshal(dest.buf.Bytes(), &env); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if env.Version != "1.0.0" {
		t.Errorf("versao = %s, want 1.0.0", env.Version)
	}
	if env.Patient.ID != p.ID {
		t.Errorf("paciente.id = %s, want %s", env.Patient.ID, p.ID)
	}
	if len(env.Sessions) != 2 {
		t.Fatalf("sessoes = %d, want 2", len(env.Sessions))
	}
	if !env.Sessions[0].Date.After(env.Sessions[1].Date) {
		t.Error("sessions should be most recent first")
	}
	if env.Configuration.Workspace != "consultorio" || !env.Configuration.AutoSave {
		t.Errorf("configuracao = %+v", env.Configuration)
	}
	if !env.ExportedAt.Equal(now) {
		t.Errorf("dataExport = %v, want %v", env.ExportedAt, now)
	}

	if !bytes.Contains(dest.buf.Bytes(), []byte("\n  \"paciente\"")) {
		t.Error("output should be indented with two spaces")
	}

	if len(sink.events) != 1 || sink.events[0].Kind != records.EventExport || sink.events[0].EntityID != p.ID {
		t.Errorf("events = %+v, want one export event for the patient", sink.events)
	}
}

func TestExportPatient_NoSessionsGivesEmptyArray(t *testing.T) {
	store := newTestStore(t)
	seedPatient(t, store, "Joao")
	dest := &fakeDestination{}

	if _, err := NewExporter(store, dest, nil).ExportPatient(context.Background(), "Joao", FormatJSON); err != nil {
		t.Fatalf("ExportPatient failed: %v", err)
	}
	if !bytes.Contains(dest.buf.Bytes(), []byte(`"sessoes": []`)) {
		t.Errorf("expected empty sessoes array, got:\n%s", dest.buf.String())
	}
}

func TestExportPatient_UnknownPatient(t *testing.T) {
	dest := &fakeDestination{}
	_, err := NewExporter(newTestStore(t), dest, settings).
		ExportPatient(context.Background(), "Ninguem", FormatJSON)

	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("err = %v, want ErrPatientNotFound", err)
	}
	if len(dest.names) != 0 {
		t.Error("destination must not be touched for an unknown patient")
	}
}

func TestExportPatient_PDFIsNoOp(t *testing.T) {
	store := newTestStore(t)
	seedPatient(t, store, "Ana")
	dest := &fakeDestination{}

	if _, err := NewExporter(store, dest, settings).ExportPatient(context.Background(), "Ana", FormatPDF); err != nil {
		t.Fatalf("pdf export failed: %v", err)
	}
	if len(dest.names) != 0 || dest.buf.Len() != 0 {
		t.Error("pdf export should not write anything")
	}
}

func TestExportPatient_PDFUnknownPatient(t *testing.T) {
	dest := &fakeDestination{}
	_, err := NewExporter(newTestStore(t), dest, settings).
		ExportPatient(context.Background(), "ninguem", FormatPDF)
	if !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("err = %v, want ErrPatientNotFound", err)
	}
	if len(dest.names) != 0 {
		t.Error("nothing should be created for an unknown patient")
	}
}

func TestExportPatient_UnsupportedFormat(t *testing.T) {
	dest := &fakeDestination{}
	_, err := NewExporter(newTestStore(t), dest, settings).
		ExportPatient(context.Background(), "Ana", Format("xml"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExportPatient_WriteFailure(t *testing.T) {
	store := newTestStore(t)
	seedPatient(t, store, "Ana")
	boom := errors.New("disk full")
	dest := &fakeDestination{writeErr: boom}
	sink := &eventSink{}

	_, err := NewExporter(store, dest, settings, WithRecorder(sink)).
		ExportPatient(context.Background(), "Ana", FormatJSON)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped disk full", err)
	}
	if len(sink.events) != 0 {
		t.Error("failed export must not be recorded")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"pdf", FormatPDF, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestFileName_Sanitized(t *testing.T) {
	got := FileName("Ana/Paula", time.Date(2026, 1, 2, 23, 0, 0, 0, time.FixedZone("BRT", -3*3600)))
	if got != "Ana_Paula_backup_2026-01-03.json" {
		t.Errorf("FileName = %s", got)
	}
}

// --- FileDestination ---

func TestFileDestination_WritesAtomically(t *testing.T) {
	dir := t.TempDir()
	w, err := FileDestination{Dir: dir}.Create(context.Background(), "a.json")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte(`{"ok":true}`)); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "a.json")); !os.IsNotExist(err) {
		t.Error("target should not exist before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "a.json"))
	if err != nil || string(data) != `{"ok":true}` {
		t.Errorf("content = %q, %v", data, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("leftover files: %d entries", len(entries))
	}
}

func TestFileDestination_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "custom.json")
	w, err := FileDestination{Path: path}.Create(context.Background(), "ignored.json")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, _ = w.Write([]byte("{}"))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("explicit path not written: %v", err)
	}
}

func TestFileDestination_NoDir(t *testing.T) {
	if _, err := (FileDestination{}).Create(context.Background(), "a.json"); err == nil {
		t.Error("expected error without Dir or Path")
	}
}

func TestExportPatient_ToFileDestination(t *testing.T) {
	withFixedTime(t, time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC))
	store := newTestStore(t)
	seedPatient(t, store, "Carlos", 1)
	dir := t.TempDir()

	name, err := NewExporter(store, FileDestination{Dir: dir}, settings).
		ExportPatient(context.Background(), "Carlos", FormatJSON)
	if err != nil {
		t.Fatalf("ExportPatient failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if env.Patient.Name != "Carlos" || len(env.Sessions) != 1 {
		t.Errorf("envelope = %s / %d sessions", env.Patient.Name, len(env.Sessions))
	}
}
