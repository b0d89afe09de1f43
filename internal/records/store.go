package records

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/HendryAvila/clinimap/internal/workspace"
	"go.uber.org/zap"
)

// LoadPolicy decides what LoadSessions does with a session file it
// cannot parse.
type LoadPolicy string

const (
	// LoadAbort discards the whole listing on the first bad file.
	LoadAbort LoadPolicy = "abort"
	// LoadSkip returns every good file and reports the bad ones.
	LoadSkip LoadPolicy = "skip"
)

// ParseLoadPolicy maps a config value to a LoadPolicy. Empty means LoadAbort.
func ParseLoadPolicy(s string) (LoadPolicy, error) {
	switch LoadPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", LoadAbort:
		return LoadAbort, nil
	case LoadSkip:
		return LoadSkip, nil
	}
	return "", fmt.Errorf("invalid session load policy %q: must be abort or skip", s)
}

// Workspace is the part of workspace.Manager the Store depends on.
type Workspace interface {
	Dir() (workspace.Dir, error)
	EnsurePatientTree(ctx context.Context, patientName string) error
}

// Store reads and writes patient and session documents as indented JSON
// files inside the workspace.
//
// Every document carries a revision. Saving a document whose id matches
// the stored copy but whose revision does not is rejected with
// ErrRevisionConflict; a different id at the same path (two sessions on
// one day, two names that sanitize alike) is overwritten.
type Store struct {
	ws            Workspace
	policy        LoadPolicy
	revisionCheck bool
	recorder      Recorder
	logger        *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLoadPolicy sets how LoadSessions treats unreadable files.
func WithLoadPolicy(p LoadPolicy) StoreOption {
	return func(s *Store) { s.policy = p }
}

// WithoutRevisionCheck disables the revision conflict check: the last
// writer always wins.
func WithoutRevisionCheck() StoreOption {
	return func(s *Store) { s.revisionCheck = false }
}

// WithRecorder sets the activity recorder notified after each save.
func WithRecorder(r Recorder) StoreOption {
	return func(s *Store) { s.recorder = r }
}

// WithStoreLogger sets the logger.
func WithStoreLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a Store on top of ws.
func NewStore(ws Workspace, opts ...StoreOption) *Store {
	s := &Store{
		ws:            ws,
		policy:        LoadAbort,
		revisionCheck: true,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRecorder replaces the activity recorder. Passing nil disables it.
func (s *Store) SetRecorder(r Recorder) {
	s.recorder = r
}

// --- Patients ---

// SavePatient writes the patient's dados.json, creating the patient
// folder tree on first save. The embedded session list is written as it
// is at call time. On success p.Revision is advanced.
func (s *Store) SavePatient(ctx context.Context, p *Patient) error {
	if p == nil {
		return fmt.Errorf("%w: nil patient", ErrInvalidDocument)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkPatientName(p.Name); err != nil {
		return err
	}
	if err := Validate(p); err != nil {
		return err
	}

	dir, err := s.ws.Dir()
	if err != nil {
		return err
	}
	if err := s.ws.EnsurePatientTree(ctx, p.Name); err != nil {
		return fmt.Errorf("%w: preparing folder of %q: %w", ErrStorageWriteFailed, p.Name, err)
	}

	target := workspace.PatientFilePath(p.Name)
	created, err := s.checkRevision(dir, target, p.ID, p.Revision)
	if err != nil {
		return err
	}

	next := *p
	next.Revision++
	if err := writeDocument(dir, target, &next); err != nil {
		return err
	}
	p.Revision = next.Revision

	s.logger.Debug("patient saved", zap.String("patient", p.Name), zap.Int64("revision", p.Revision))
	notify(ctx, s.recorder, NewEvent(kindFor(created), EntityPatient, p.ID, map[string]any{
		"nome":    p.Name,
		"revisao": p.Revision,
	}))
	return nil
}

// LoadPatient reads the named patient. It returns nil, nil when the
// patient folder or file is missing and also when the file is corrupt;
// the two cases are only told apart in the log.
func (s *Store) LoadPatient(ctx context.Context, name string) (*Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.ws.Dir()
	if err != nil {
		return nil, err
	}
	if checkPatientName(name) != nil {
		return nil, nil
	}

	target := workspace.PatientFilePath(name)
	data, err := dir.ReadFile(target)
	if err != nil {
		if !workspace.IsNotExist(err) {
			s.logger.Warn("reading patient failed", zap.String("file", target), zap.Error(err))
		}
		return nil, nil
	}

	var p Patient
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn("corrupt patient document", zap.String("file", target), zap.Error(err))
		return nil, nil
	}
	return &p, nil
}

// ListPatients returns the names of the patient folders in ascending
// order. Files next to the folders are ignored.
func (s *Store) ListPatients(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.ws.Dir()
	if err != nil {
		return nil, err
	}

	entries, err := dir.ReadDir(workspace.PatientsPath())
	if err != nil {
		if workspace.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("listing patients: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// --- Sessions ---

// SaveSession writes the session to Sessões/sessao_<date>.json of the
// named patient. Sessions on the same day share the file. On success
// sess.Revision is advanced.
func (s *Store) SaveSession(ctx context.Context, patientName string, sess *Session) error {
	if sess == nil {
		return fmt.Errorf("%w: nil session", ErrInvalidDocument)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkPatientName(patientName); err != nil {
		return err
	}
	if err := Validate(sess); err != nil {
		return err
	}

	dir, err := s.ws.Dir()
	if err != nil {
		return err
	}
	folder := workspace.SessionsPath(patientName)
	if err := dir.MkdirAll(folder); err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrStorageWriteFailed, folder, err)
	}

	target := path.Join(folder, SessionFileName(sess.Date))
	created, err := s.checkRevision(dir, target, sess.ID, sess.Revision)
	if err != nil {
		return err
	}

	next := *sess
	next.Revision++
	if err := writeDocument(dir, target, &next); err != nil {
		return err
	}
	sess.Revision = next.Revision

	if dangling := DanglingConnections(*sess); len(dangling) > 0 {
		s.logger.Warn("session has connections to unknown processes",
			zap.String("session", sess.ID), zap.Strings("connections", dangling))
	}
	s.logger.Debug("session saved", zap.String("patient", patientName), zap.String("file", target))
	notify(ctx, s.recorder, NewEvent(kindFor(created), EntitySession, sess.ID, map[string]any{
		"paciente": patientName,
		"arquivo":  SessionFileName(sess.Date),
		"revisao":  sess.Revision,
	}))
	return nil
}

// LoadSessions reads every .json file in the patient's Sessões folder and
// returns the sessions sorted by descending date. A missing folder yields
// no sessions and no error.
//
// Unreadable files are reported through a *LoadError. Under LoadAbort the
// listing stops at the first one and no sessions are returned; under
// LoadSkip the readable sessions are returned alongside the error.
func (s *Store) LoadSessions(ctx context.Context, patientName string) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.ws.Dir()
	if err != nil {
		return nil, err
	}
	if checkPatientName(patientName) != nil {
		return []Session{}, nil
	}

	folder := workspace.SessionsPath(patientName)
	entries, err := dir.ReadDir(folder)
	if err != nil {
		if workspace.IsNotExist(err) {
			return []Session{}, nil
		}
		return []Session{}, &LoadError{
			Patient:  patientName,
			Policy:   s.policy,
			Failures: []LoadFailure{{File: folder, Err: err}},
		}
	}

	sessions := make([]Session, 0, len(entries))
	var failures []LoadFailure
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		file := path.Join(folder, e.Name())

		sess, err := readSession(dir, file)
		if err != nil {
			s.logger.Warn("unreadable session document", zap.String("file", file), zap.Error(err))
			failures = append(failures, LoadFailure{File: e.Name(), Err: err})
			if s.policy == LoadAbort {
				return []Session{}, &LoadError{Patient: patientName, Policy: s.policy, Failures: failures}
			}
			continue
		}
		sessions = append(sessions, sess)
	}

	SortSessions(sessions)

	if len(failures) > 0 {
		return sessions, &LoadError{Patient: patientName, Policy: s.policy, Failures: failures}
	}
	return sessions, nil
}

// SortSessions orders sessions by descending date, keeping the relative
// order of sessions on the same instant.
func SortSessions(sessions []Session) {
	slices.SortStableFunc(sessions, func(a, b Session) int {
		return b.Date.Compare(a.Date)
	})
}

// --- helpers ---

func readSession(dir workspace.Dir, file string) (Session, error) {
	var sess Session
	data, err := dir.ReadFile(file)
	if err != nil {
		return sess, err
	}
	if err := json.Unmarshal(data, &sess); err != nil {
		return sess, fmt.Errorf("parsing: %w", err)
	}
	return sess, nil
}

// docHeader is the part of any stored document the revision check reads.
type docHeader struct {
	ID       string `json:"id"`
	Revision int64  `json:"revisao"`
}

// checkRevision compares the incoming document with the stored one at
// target. It reports whether target did not exist yet.
func (s *Store) checkRevision(dir workspace.Dir, target, id string, revision int64) (bool, error) {
	data, err := dir.ReadFile(target)
	if err != nil {
		if workspace.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("%w: reading %s: %w", ErrStorageWriteFailed, target, err)
	}
	if !s.revisionCheck {
		return false, nil
	}

	var stored docHeader
	if err := json.Unmarshal(data, &stored); err != nil {
		// A corrupt file carries no revision to protect.
		return false, nil
	}
	if stored.ID == id && stored.Revision != revision {
		return false, fmt.Errorf("%w: %s is at revision %d, save was based on %d",
			ErrRevisionConflict, target, stored.Revision, revision)
	}
	return false, nil
}

func writeDocument(dir workspace.Dir, target string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrStorageWriteFailed, target, err)
	}
	if err := dir.WriteFile(target, data); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWriteFailed, err)
	}
	return nil
}

func checkPatientName(name string) error {
	if !workspace.ValidSegment(workspace.Sanitize(name)) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func kindFor(created bool) EventKind {
	if created {
		return EventCreate
	}
	return EventUpdate
}
