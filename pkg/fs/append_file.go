package fs

import (
	"os"
	"path/filepath"
)

// AppendFile appends data to a file, creating it and its parent directories when needed.
func (f *realFS) AppendFile(filename string, data []byte, perm os.FileMode) error {
	if err := f.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}

	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, perm)
	if err != nil {
		return err
	}

	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}
