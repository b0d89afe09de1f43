package records

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the Store.
var (
	// ErrStorageWriteFailed wraps any failure while writing a document.
	// The previous content of the target file is left in place.
	ErrStorageWriteFailed = errors.New("records: write failed")

	// ErrInvalidName is returned when a patient name sanitizes to a key
	// that cannot be a folder name.
	ErrInvalidName = errors.New("records: invalid patient name")

	// ErrInvalidDocument is returned when a document fails validation.
	ErrInvalidDocument = errors.New("records: invalid document")

	// ErrRevisionConflict is returned when the stored copy of a document
	// was saved by someone else since the caller loaded it.
	ErrRevisionConflict = errors.New("records: document changed since it was loaded")

	// ErrPatientNotFound is returned by callers that need a patient to exist.
	ErrPatientNotFound = errors.New("records: patient not found")
)

// LoadFailure describes one session file that could not be read or parsed.
type LoadFailure struct {
	File string
	Err  error
}

// LoadError reports the session files LoadSessions could not use.
type LoadError struct {
	Patient  string
	Policy   LoadPolicy
	Failures []LoadFailure
}

func (e *LoadError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.File, f.Err))
	}
	verb := "skipped"
	if e.Policy == LoadAbort {
		verb = "aborted on"
	}
	return fmt.Sprintf("records: loading sessions of %q %s %d unreadable file(s): %s",
		e.Patient, verb, len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes the individual failures to errors.Is / errors.As.
func (e *LoadError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
