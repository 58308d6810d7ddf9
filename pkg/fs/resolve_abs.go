package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Getwd returns the process working directory.
func (f *realFS) Getwd() (string, error) {
	return os.Getwd()
}

// ResolveAbs returns the absolute, symlink-free form of path.
// Paths that do not exist yet are returned in their absolute, cleaned form.
func (f *realFS) ResolveAbs(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPathResolution, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", fmt.Errorf("%w: %w", ErrPathResolution, err)
	}

	return resolved, nil
}
