package codemod

import (
	"fmt"
	"os"
	"path/filepath"
)

type PathResolver struct {
	wd string
}

// NewPathResolver resolves relative paths against dir, or the working
// directory when dir is empty.
func NewPathResolver(dir string) (*PathResolver, error) {
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("could not resolve directory %q: %w", dir, err)
		}
		return &PathResolver{wd: abs}, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not get current working directory: %w", err)
	}
	return &PathResolver{wd: wd}, nil
}

func (r *PathResolver) Resolve(relativePath string) string {
	if filepath.IsAbs(relativePath) {
		return filepath.Clean(relativePath)
	}
	return filepath.Join(r.wd, relativePath)
}

func ReadSourceFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return content, nil
}
