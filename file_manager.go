package codemod

import (
	"os"
)

// Writer persists the final text of a patched file.
type Writer interface {
	WriteFile(path string, content []byte) error
}

// FileManager writes straight to disk, keeping the file's permissions.
type FileManager struct{}

func NewFileManager() *FileManager {
	return &FileManager{}
}

func (m *FileManager) WriteFile(path string, content []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// dryRunWriter discards every write.
type dryRunWriter struct{}

func (dryRunWriter) WriteFile(string, []byte) error { return nil }
