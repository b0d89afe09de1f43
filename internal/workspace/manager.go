// Package workspace owns the directory the clinician grants to the
// application and the fixed folder layout inside it.
//
// The grant is a capability (Dir) obtained once through a Picker and kept
// for the life of the process. Nothing is persisted: every run must ask
// for the folder again.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	"go.uber.org/zap"
)

// Sentinel errors returned by the Manager.
var (
	// ErrFeatureUnavailable means no directory picker is available at all.
	ErrFeatureUnavailable = errors.New("workspace: folder access is not supported here")

	// ErrPermissionDenied means the user cancelled or refused the grant.
	ErrPermissionDenied = errors.New("workspace: folder access denied")

	// ErrWorkspaceNotSelected means an operation ran before Select succeeded.
	ErrWorkspaceNotSelected = errors.New("workspace: no folder selected")
)

const (
	// RootFolder is created at the top of the granted directory.
	RootFolder = "Processos Clinicos"
	// PatientsFolder holds one folder per patient.
	PatientsFolder = "Pacientes"
	// SessionsFolder holds one document per session day.
	SessionsFolder = "Sessões"
	// TestsFolder, NetworkFolder and DataFolder are reserved for future use.
	TestsFolder   = "Testes"
	NetworkFolder = "Rede"
	DataFolder    = "Dados"

	// PatientFile is the patient document inside the patient folder.
	PatientFile = "dados.json"
)

// patientSubfolders are created lazily the first time a patient is saved.
var patientSubfolders = []string{SessionsFolder, TestsFolder, NetworkFolder, DataFolder}

// PatientsPath returns the path of the patients folder relative to the grant.
func PatientsPath() string {
	return path.Join(RootFolder, PatientsFolder)
}

// PatientPath returns the folder of the named patient.
func PatientPath(patientName string) string {
	return path.Join(PatientsPath(), Sanitize(patientName))
}

// PatientFilePath returns the path of the patient's dados.json.
func PatientFilePath(patientName string) string {
	return path.Join(PatientPath(patientName), PatientFile)
}

// SessionsPath returns the sessions folder of the named patient.
func SessionsPath(patientName string) string {
	return path.Join(PatientPath(patientName), SessionsFolder)
}

// Manager holds the directory grant and guarantees the folder layout.
// It moves from Uninitialized to Ready on the first successful Select and
// never back.
type Manager struct {
	picker Picker
	logger *zap.Logger

	mu  sync.RWMutex
	dir Dir
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for layout events.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager that asks picker for the folder. A nil
// picker makes the Manager unsupported.
func NewManager(picker Picker, opts ...Option) *Manager {
	m := &Manager{picker: picker, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Supported reports whether a folder can be requested at all. Callers
// check it once at startup; false is not a retryable condition.
func (m *Manager) Supported() bool {
	return m.picker != nil
}

// Select asks the configured picker for the folder.
func (m *Manager) Select(ctx context.Context) (string, error) {
	if !m.Supported() {
		return "", ErrFeatureUnavailable
	}
	return m.SelectFrom(ctx, m.picker)
}

// SelectFrom asks picker for the folder, creates the clinical records
// layout in it and keeps the grant. It returns the folder's display name.
// A successful call replaces any earlier grant.
func (m *Manager) SelectFrom(ctx context.Context, picker Picker) (string, error) {
	if picker == nil {
		return "", ErrFeatureUnavailable
	}

	dir, err := picker.Pick(ctx)
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) || errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	if err := dir.MkdirAll(PatientsPath()); err != nil {
		_ = dir.Close()
		return "", fmt.Errorf("creating %s: %w", PatientsPath(), err)
	}

	m.mu.Lock()
	prev := m.dir
	m.dir = dir
	m.mu.Unlock()

	if prev != nil && prev != dir {
		_ = prev.Close()
	}

	m.logger.Info("workspace selected", zap.String("folder", dir.Name()))
	return dir.Name(), nil
}

// Dir returns the granted directory.
func (m *Manager) Dir() (Dir, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.dir == nil {
		return nil, ErrWorkspaceNotSelected
	}
	return m.dir, nil
}

// Name returns the display name of the granted folder, or "" before Select.
func (m *Manager) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.dir == nil {
		return ""
	}
	return m.dir.Name()
}

// EnsurePatientTree creates the patient folder and its fixed subfolders.
// Creation is idempotent.
func (m *Manager) EnsurePatientTree(ctx context.Context, patientName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, err := m.Dir()
	if err != nil {
		return err
	}

	base := PatientPath(patientName)
	for _, sub := range patientSubfolders {
		if err := dir.MkdirAll(path.Join(base, sub)); err != nil {
			return fmt.Errorf("creating %s: %w", path.Join(base, sub), err)
		}
	}
	return nil
}

// Close drops the grant. Only shutdown and tests need it.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dir == nil {
		return nil
	}
	err := m.dir.Close()
	m.dir = nil
	return err
}
