package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileDestination writes exports to the local filesystem. When Path is
// set it is used verbatim; otherwise the suggested name is joined to Dir.
// The file appears only when Close succeeds after every Write did.
type FileDestination struct {
	Dir  string
	Path string
}

// Create implements Destination.
func (d FileDestination) Create(ctx context.Context, suggestedName string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target := d.Path
	if target == "" {
		if d.Dir == "" {
			return nil, errors.New("export: no destination directory")
		}
		target = filepath.Join(d.Dir, suggestedName)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("export: creating destination directory: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return nil, err
	}
	return &atomicFile{f: f, target: target}, nil
}

type atomicFile struct {
	f      *os.File
	target string
	failed bool
	closed bool
}

func (a *atomicFile) Write(p []byte) (int, error) {
	n, err := a.f.Write(p)
	if err != nil {
		a.failed = true
	}
	return n, err
}

func (a *atomicFile) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	tmp := a.f.Name()
	if a.failed {
		_ = a.f.Close()
		_ = os.Remove(tmp)
		return errors.New("export: write failed, nothing committed")
	}
	if err := a.f.Sync(); err != nil {
		_ = a.f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := a.f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, a.target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
