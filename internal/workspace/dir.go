package workspace

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir is a capability handle on a directory granted by the user.
// Every name is slash-separated and relative to the handle; a Dir never
// resolves a name outside the directory it was granted on.
type Dir interface {
	// Name is the display name of the granted directory.
	Name() string
	MkdirAll(name string) error
	ReadFile(name string) ([]byte, error)
	// WriteFile replaces name with data. Content becomes visible only once
	// fully written; on failure the previous content is left in place.
	WriteFile(name string, data []byte) error
	ReadDir(name string) ([]fs.DirEntry, error)
	Stat(name string) (fs.FileInfo, error)
	Close() error
}

// OSDir is a Dir backed by an os.Root, so the granted directory is the
// boundary for every path operation.
type OSDir struct {
	root *os.Root
	name string
}

// OpenOSDir opens path as a capability-scoped directory.
func OpenOSDir(path string) (*OSDir, error) {
	root, err := os.OpenRoot(path)
	if err != nil {
		return nil, err
	}
	return &OSDir{root: root, name: filepath.Base(filepath.Clean(path))}, nil
}

// Name returns the base name of the granted directory.
func (d *OSDir) Name() string { return d.name }

// MkdirAll creates name and any missing parents.
func (d *OSDir) MkdirAll(name string) error {
	return d.root.MkdirAll(filepath.FromSlash(name), 0o755)
}

// ReadFile reads the whole file.
func (d *OSDir) ReadFile(name string) ([]byte, error) {
	return d.root.ReadFile(filepath.FromSlash(name))
}

// WriteFile stages data in a temporary sibling and renames it over name.
func (d *OSDir) WriteFile(name string, data []byte) error {
	target := filepath.FromSlash(name)
	tmp := target + ".tmp-" + randomSuffix()

	f, err := d.root.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = d.root.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = d.root.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = d.root.Remove(tmp)
		return err
	}
	if err := d.root.Rename(tmp, target); err != nil {
		_ = d.root.Remove(tmp)
		return err
	}
	return nil
}

// ReadDir lists the entries of name sorted by file name.
func (d *OSDir) ReadDir(name string) ([]fs.DirEntry, error) {
	f, err := d.root.Open(filepath.FromSlash(name))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}
	sortEntries(entries)
	return entries, nil
}

// Stat describes name.
func (d *OSDir) Stat(name string) (fs.FileInfo, error) {
	return d.root.Stat(filepath.FromSlash(name))
}

// Close releases the root handle.
func (d *OSDir) Close() error {
	return d.root.Close()
}

// IsNotExist reports whether err means a missing file or folder.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func randomSuffix() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", os.Getpid())
	}
	return hex.EncodeToString(b[:])
}
