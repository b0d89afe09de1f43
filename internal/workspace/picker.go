package workspace

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Picker asks the user to grant access to a directory. Cancelling or
// denying the grant must be reported as ErrPermissionDenied.
type Picker interface {
	Pick(ctx context.Context) (Dir, error)
}

// PickerFunc adapts a function to the Picker interface.
type PickerFunc func(ctx context.Context) (Dir, error)

// Pick calls f.
func (f PickerFunc) Pick(ctx context.Context) (Dir, error) { return f(ctx) }

// PathPicker grants the directory at Path. It is how a path typed on the
// command line, set in the config file or passed to a tool call becomes a
// workspace grant. An empty Path means the user gave no answer.
type PathPicker struct {
	Path string
}

// Pick opens Path as a capability-scoped directory.
func (p PathPicker) Pick(ctx context.Context) (Dir, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimSpace(p.Path)
	if path == "" {
		return nil, fmt.Errorf("%w: no folder chosen", ErrPermissionDenied)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a folder", ErrPermissionDenied, path)
	}

	dir, err := OpenOSDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return dir, nil
}

// StaticPicker always grants the same Dir. Useful with a MemDir.
func StaticPicker(dir Dir) Picker {
	return PickerFunc(func(ctx context.Context) (Dir, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return dir, nil
	})
}
