// Package appstate holds the working state of the editor: the active
// patient, the session being edited and the settings in effect. It is the
// only writer of documents during an interactive run and applies the
// session-then-patient save order.
package appstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/clinimap/internal/config"
	"github.com/HendryAvila/clinimap/internal/records"
	"github.com/HendryAvila/clinimap/internal/workspace"
)

var (
	ErrNoActivePatient    = errors.New("appstate: no patient open")
	ErrNoActiveSession    = errors.New("appstate: no session selected")
	ErrPatientExists      = errors.New("appstate: patient already exists")
	ErrSessionNotFound    = errors.New("appstate: session not found")
	ErrProcessNotFound    = errors.New("appstate: process not found")
	ErrConnectionNotFound = errors.New("appstate: connection not found")
)

var timeNow = time.Now

// Store is the document store used by State.
type Store interface {
	SavePatient(ctx context.Context, p *records.Patient) error
	LoadPatient(ctx context.Context, name string) (*records.Patient, error)
	SaveSession(ctx context.Context, patientName string, s *records.Session) error
	LoadSessions(ctx context.Context, patientName string) ([]records.Session, error)
}

// Workspace is the folder grant used by State.
type Workspace interface {
	Select(ctx context.Context) (string, error)
	SelectFrom(ctx context.Context, picker workspace.Picker) (string, error)
	Name() string
}

// State is safe for concurrent use.
type State struct {
	store    Store
	ws       Workspace
	recorder records.Recorder
	logger   *zap.Logger

	mu      sync.Mutex
	cfg     config.Config
	patient *records.Patient
	session *records.Session

	// saveMu serialises Save so manual saves and autosave never interleave.
	saveMu sync.Mutex
}

// Option configures a State.
type Option func(*State)

// WithRecorder receives process and connection events.
func WithRecorder(r records.Recorder) Option {
	return func(s *State) { s.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *State) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty State.
func New(store Store, ws Workspace, cfg config.Config, opts ...Option) *State {
	s := &State{
		store:  store,
		ws:     ws,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─── Workspace & settings ───────────────────────────────────────────────────

// SelectWorkspace asks the workspace picker for a folder.
func (s *State) SelectWorkspace(ctx context.Context) (string, error) {
	return s.ws.Select(ctx)
}

// SelectWorkspaceFrom grants the folder returned by picker. The open
// patient is closed: it belongs to the previous workspace.
func (s *State) SelectWorkspaceFrom(ctx context.Context, picker workspace.Picker) (string, error) {
	name, err := s.ws.SelectFrom(ctx, picker)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.patient, s.session = nil, nil
	s.mu.Unlock()
	return name, nil
}

// Settings returns the settings in effect.
func (s *State) Settings() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Configuration returns the snapshot written into exports. Its workspace
// name is empty until a folder is granted.
func (s *State) Configuration() config.Configuration {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	return cfg.Configuration(s.ws.Name())
}

// ─── Patients & sessions ────────────────────────────────────────────────────

// OpenPatient makes name the active patient. Its embedded session list is
// replaced by the session files, and the most recent one is selected.
//
// A *records.LoadError is returned together with the patient when some
// session files could not be read; the state is still updated.
func (s *State) OpenPatient(ctx context.Context, name string) (*records.Patient, error) {
	p, err := s.store.LoadPatient(ctx, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %q", records.ErrPatientNotFound, name)
	}

	sessions, err := s.store.LoadSessions(ctx, name)
	var loadErr *records.LoadError
	if err != nil && !errors.As(err, &loadErr) {
		return nil, err
	}
	if sessions == nil {
		sessions = []records.Session{}
	}
	p.Sessions = sessions

	s.mu.Lock()
	s.patient = p
	s.session = nil
	if len(sessions) > 0 {
		first := cloneSession(sessions[0])
		s.session = &first
	}
	out := clonePatient(*p)
	s.mu.Unlock()

	s.logger.Info("patient opened", zap.String("patient", name), zap.Int("sessions", len(sessions)))
	if loadErr != nil {
		return &out, loadErr
	}
	return &out, nil
}

// CreatePatient saves a new patient document and makes it active.
func (s *State) CreatePatient(ctx context.Context, name string, sex records.Sex, age int) (*records.Patient, error) {
	existing, err := s.store.LoadPatient(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %q", ErrPatientExists, name)
	}

	p := records.NewPatient(name, sex, age)
	if err := s.store.SavePatient(ctx, p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.patient = p
	s.session = nil
	out := clonePatient(*p)
	s.mu.Unlock()
	return &out, nil
}

// NewSession creates a session dated date (now when zero) for the active
// patient, selects it and saves.
func (s *State) NewSession(ctx context.Context, date time.Time) (*records.Session, error) {
	if date.IsZero() {
		date = timeNow()
	}

	s.mu.Lock()
	if s.patient == nil {
		s.mu.Unlock()
		return nil, ErrNoActivePatient
	}
	sess := records.NewSession(s.patient.ID, date)
	s.session = sess
	s.mu.Unlock()

	if err := s.Save(ctx); err != nil {
		return nil, err
	}
	return s.ActiveSession(), nil
}

// SelectSession makes the session with id the one being edited.
func (s *State) SelectSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.patient == nil {
		return ErrNoActivePatient
	}
	for _, sess := range s.patient.Sessions {
		if sess.ID == id {
			c := cloneSession(sess)
			s.session = &c
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// ActivePatient returns a copy of the open patient, or nil.
func (s *State) ActivePatient() *records.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.patient == nil {
		return nil
	}
	c := clonePatient(*s.patient)
	return &c
}

// ActiveSession returns a copy of the session being edited, or nil.
func (s *State) ActiveSession() *records.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	c := cloneSession(*s.session)
	return &c
}

// LoadedSessions returns copies of the open patient's sessions with the
// active session's unsaved edits in place, most recent first.
func (s *State) LoadedSessions() ([]records.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.patient == nil {
		return nil, ErrNoActivePatient
	}
	p := clonePatient(*s.patient)
	if s.session != nil {
		upsertSession(&p, cloneSession(*s.session))
	}
	return p.Sessions, nil
}

// CanEdit reports whether a patient is open with a session selected.
func (s *State) CanEdit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patient != nil && s.session != nil
}

// HasPendingChanges reports whether the active session was modified after
// its creation. Saving does not clear it.
func (s *State) HasPendingChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil && s.session.UpdatedAt.After(s.session.CreatedAt)
}

// ─── Save ───────────────────────────────────────────────────────────────────

// Save writes the active session, then the patient with that session
// upserted into its embedded list.
func (s *State) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.patient == nil {
		s.mu.Unlock()
		return ErrNoActivePatient
	}
	if s.session == nil {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	patient := clonePatient(*s.patient)
	session := cloneSession(*s.session)
	s.mu.Unlock()

	if err := s.store.SaveSession(ctx, patient.Name, &session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	upsertSession(&patient, session)
	patient.UpdatedAt = timeNow().UTC()
	if err := s.store.SavePatient(ctx, &patient); err != nil {
		s.writeBack(nil, &session)
		return fmt.Errorf("saving patient: %w", err)
	}

	s.writeBack(&patient, &session)
	s.logger.Debug("saved",
		zap.String("patient", patient.Name),
		zap.String("session", session.ID),
		zap.Int64("revision", session.Revision))
	return nil
}

// writeBack stores the revisions assigned by a save. Content edited
// meanwhile is kept.
func (s *State) writeBack(patient *records.Patient, session *records.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.patient == nil {
		return
	}
	if s.session != nil && s.session.ID == session.ID {
		s.session.Revision = session.Revision
	}
	if patient == nil || s.patient.ID != patient.ID {
		return
	}
	s.patient.Revision = patient.Revision
	s.patient.UpdatedAt = patient.UpdatedAt
	saved := *session
	if s.session != nil && s.session.ID == session.ID {
		saved = cloneSession(*s.session)
	}
	upsertSession(s.patient, saved)
}

// RunAutosave saves the active session every configured interval until ctx
// is done. It returns at once when autosave is disabled. Failures are
// logged.
func (s *State) RunAutosave(ctx context.Context) {
	cfg := s.Settings()
	if !cfg.AutoSave || cfg.AutoSaveInterval() <= 0 {
		return
	}

	ticker := time.NewTicker(cfg.AutoSaveInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.CanEdit() {
				continue
			}
			if err := s.Save(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("autosave failed", zap.Error(err))
			}
		}
	}
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func upsertSession(p *records.Patient, sess records.Session) {
	for i := range p.Sessions {
		if p.Sessions[i].ID == sess.ID {
			p.Sessions[i] = sess
			records.SortSessions(p.Sessions)
			return
		}
	}
	p.Sessions = append(p.Sessions, sess)
	records.SortSessions(p.Sessions)
}

func cloneSession(s records.Session) records.Session {
	s.Processes = append([]records.Process(nil), s.Processes...)
	s.Connections = append([]records.Connection(nil), s.Connections...)
	if s.Processes == nil {
		s.Processes = []records.Process{}
	}
	if s.Connections == nil {
		s.Connections = []records.Connection{}
	}
	return s
}

func clonePatient(p records.Patient) records.Patient {
	sessions := make([]records.Session, len(p.Sessions))
	for i, sess := range p.Sessions {
		sessions[i] = cloneSession(sess)
	}
	p.Sessions = sessions
	return p
}
