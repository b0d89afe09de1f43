// Package export produces the single-file backup of one patient: the
// patient document, all of its sessions and the settings in effect.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/clinimap/internal/config"
	"github.com/HendryAvila/clinimap/internal/records"
	"github.com/HendryAvila/clinimap/internal/workspace"
)

// SchemaVersion is written into every export envelope.
const SchemaVersion = "1.0.0"

// Format is an export output format.
type Format string

const (
	FormatJSON Format = "json"
	// FormatPDF is accepted and produces nothing.
	FormatPDF Format = "pdf"
)

var (
	// ErrPatientNotFound is returned when the patient has no readable document.
	ErrPatientNotFound = records.ErrPatientNotFound

	// ErrUnsupportedFormat is returned for formats other than json and pdf.
	ErrUnsupportedFormat = errors.New("export: unsupported format")
)

// ParseFormat maps a user-supplied name to a Format. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Envelope is the exported document.
type Envelope struct {
	Patient       records.Patient      `json:"paciente"`
	Sessions      []records.Session    `json:"sessoes"`
	Configuration config.Configuration `json:"configuracao"`
	ExportedAt    time.Time            `json:"dataExport"`
	Version       string               `json:"versao"`
}

// Source is the read side of the document store.
type Source interface {
	LoadPatient(ctx context.Context, name string) (*records.Patient, error)
	LoadSessions(ctx context.Context, patientName string) ([]records.Session, error)
}

// Destination hands out the writer an export is written to. Close commits
// the file.
type Destination interface {
	Create(ctx context.Context, suggestedName string) (io.WriteCloser, error)
}

// FileName is the suggested name for a backup of patientName taken at t.
func FileName(patientName string, t time.Time) string {
	return fmt.Sprintf("%s_backup_%s.json", workspace.Sanitize(patientName), t.UTC().Format("2006-01-02"))
}

// Exporter builds and writes patient backups.
type Exporter struct {
	source   Source
	dest     Destination
	settings func() config.Configuration
	recorder records.Recorder
	logger   *zap.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithRecorder receives an export event after each successful export.
func WithRecorder(r records.Recorder) Option {
	return func(e *Exporter) { e.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter creates an Exporter. settings supplies the configuration
// snapshot at export time and may be nil.
func NewExporter(source Source, dest Destination, settings func() config.Configuration, opts ...Option) *Exporter {
	e := &Exporter{
		source:   source,
		dest:     dest,
		settings: settings,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExportPatient writes the backup of patientName in the given format and
// returns the suggested file name used. Unreadable session files fail the
// export instead of producing a partial backup.
func (e *Exporter) ExportPatient(ctx context.Context, patientName string, format Format) (string, error) {
	if format != FormatJSON && format != FormatPDF {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	patient, err := e.source.LoadPatient(ctx, patientName)
	if err != nil {
		return "", fmt.Errorf("export: loading patient: %w", err)
	}
	if patient == nil {
		return "", fmt.Errorf("%w: %q", ErrPatientNotFound, patientName)
	}
	if format == FormatPDF {
		return "", nil
	}

	sessions, err := e.source.LoadSessions(ctx, patientName)
	if err != nil {
		return "", fmt.Errorf("export: loading sessions: %w", err)
	}
	if sessions == nil {
		sessions = []records.Session{}
	}

	now := timeNow().UTC()
	env := Envelope{
		Patient:    *patient,
		Sessions:   sessions,
		ExportedAt: now,
		Version:    SchemaVersion,
	}
	if e.settings != nil {
		env.Configuration = e.settings()
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: marshaling: %w", err)
	}

	name := FileName(patientName, now)
	w, err := e.dest.Create(ctx, name)
	if err != nil {
		return "", fmt.Errorf("export: opening destination: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("export: writing %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("export: committing %s: %w", name, err)
	}

	e.logger.Info("patient exported",
		zap.String("patient", patientName),
		zap.String("file", name),
		zap.Int("sessions", len(sessions)))
	if e.recorder != nil {
		e.recorder.Record(ctx, records.NewEvent(records.EventExport, records.EntityPatient, patient.ID,
			map[string]any{"arquivo": name, "sessoes": len(sessions)}))
	}
	return name, nil
}

var timeNow = time.Now
