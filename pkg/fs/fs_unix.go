//go:build !windows

package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// FileLock acquires an exclusive file lock and returns an unlock function.
// This implementation uses syscall.Flock which is available on Unix systems and blocks
// until the lock is granted.
func (f *realFS) FileLock(filename string) (func(), error) {
	lockPath := filename + ".lock"

	// Ensure parent directory exists before creating lock file
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, err
	}

	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		_ = lockFile.Close()
		return nil, fmt.Errorf("%w: %w", ErrFileLock, err)
	}

	// The lock file is left in place: removing it would let a waiter lock an unlinked inode
	// while a newcomer locks a fresh file.
	unlock := func() {
		_ = syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)
		_ = lockFile.Close()
	}

	return unlock, nil
}
