package util

import (
	"os"
	"path/filepath"
)

// EnsureDir creates a directory (and parents) if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// AbsPath resolves path against the working directory, falling back to a
// default when path is blank.
func AbsPath(path, fallback string) (string, error) {
	if path == "" {
		path = fallback
	}
	return filepath.Abs(path)
}
