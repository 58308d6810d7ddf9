//go:build windows

package fs

import (
	"os"
	"path/filepath"
)

// FileLock acquires a file lock and returns an unlock function.
// This is a best-effort implementation for Windows since flock is not available: the lock
// file only signals that the target is in use.
func (f *realFS) FileLock(filename string) (func(), error) {
	lockPath := filename + ".lock"

	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, err
	}

	lockFile, err := os.Create(lockPath)
	if err != nil {
		return nil, err
	}

	unlock := func() {
		_ = lockFile.Close()
		_ = os.Remove(lockPath)
	}

	return unlock, nil
}
