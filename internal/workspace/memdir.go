package workspace

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemDir is an in-memory Dir. It backs tests and sandboxed runs that must
// not touch the real disk.
type MemDir struct {
	// FailWrite, when set, is consulted before every WriteFile; a non-nil
	// result aborts the write and leaves the previous content untouched.
	FailWrite func(name string) error

	mu    sync.RWMutex
	name  string
	dirs  map[string]time.Time
	files map[string]memFile
}

type memFile struct {
	data    []byte
	modTime time.Time
}

// NewMemDir creates an empty in-memory directory with the given display name.
func NewMemDir(name string) *MemDir {
	return &MemDir{
		name:  name,
		dirs:  map[string]time.Time{".": time.Now()},
		files: make(map[string]memFile),
	}
}

// Name returns the display name.
func (d *MemDir) Name() string { return d.name }

// MkdirAll creates name and any missing parents.
func (d *MemDir) MkdirAll(name string) error {
	p, err := cleanMemPath("mkdir", name)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for cur := p; cur != "."; cur = path.Dir(cur) {
		if _, ok := d.files[cur]; ok {
			return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
		}
	}
	for cur := p; cur != "."; cur = path.Dir(cur) {
		if _, ok := d.dirs[cur]; !ok {
			d.dirs[cur] = time.Now()
		}
	}
	return nil
}

// ReadFile returns a copy of the file content.
func (d *MemDir) ReadFile(name string) ([]byte, error) {
	p, err := cleanMemPath("open", name)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	f, ok := d.files[p]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), f.data...), nil
}

// WriteFile replaces the file content. The parent folder must exist.
func (d *MemDir) WriteFile(name string, data []byte) error {
	p, err := cleanMemPath("write", name)
	if err != nil {
		return err
	}
	if d.FailWrite != nil {
		if err := d.FailWrite(p); err != nil {
			return &fs.PathError{Op: "write", Path: name, Err: err}
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.dirs[path.Dir(p)]; !ok {
		return &fs.PathError{Op: "write", Path: name, Err: fs.ErrNotExist}
	}
	if _, ok := d.dirs[p]; ok {
		return &fs.PathError{Op: "write", Path: name, Err: fs.ErrInvalid}
	}
	d.files[p] = memFile{data: append([]byte(nil), data...), modTime: time.Now()}
	return nil
}

// ReadDir lists the direct children of name sorted by file name.
func (d *MemDir) ReadDir(name string) ([]fs.DirEntry, error) {
	p, err := cleanMemPath("readdir", name)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, ok := d.dirs[p]; !ok {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}

	var entries []fs.DirEntry
	for dir, mod := range d.dirs {
		if dir != "." && path.Dir(dir) == p {
			entries = append(entries, fs.FileInfoToDirEntry(memInfo{name: path.Base(dir), dir: true, modTime: mod}))
		}
	}
	for file, f := range d.files {
		if path.Dir(file) == p {
			entries = append(entries, fs.FileInfoToDirEntry(memInfo{name: path.Base(file), size: int64(len(f.data)), modTime: f.modTime}))
		}
	}
	sortEntries(entries)
	return entries, nil
}

// Stat describes name.
func (d *MemDir) Stat(name string) (fs.FileInfo, error) {
	p, err := cleanMemPath("stat", name)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if mod, ok := d.dirs[p]; ok {
		return memInfo{name: path.Base(p), dir: true, modTime: mod}, nil
	}
	if f, ok := d.files[p]; ok {
		return memInfo{name: path.Base(p), size: int64(len(f.data)), modTime: f.modTime}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// Close is a no-op.
func (d *MemDir) Close() error { return nil }

func cleanMemPath(op, name string) (string, error) {
	p := path.Clean(name)
	if path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrPermission}
	}
	return p, nil
}

func sortEntries(entries []fs.DirEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
}

type memInfo struct {
	name    string
	size    int64
	dir     bool
	modTime time.Time
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) ModTime() time.Time { return i.modTime }
func (i memInfo) IsDir() bool        { return i.dir }
func (i memInfo) Sys() any           { return nil }

func (i memInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}
