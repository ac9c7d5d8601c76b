package fsutils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// CreateDir creates a directory (and any parents) if it doesn't exist.
func CreateDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteFileAtomic writes content to a temporary file next to path and renames
// it into place, so readers never observe a partially written file.
func WriteFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file %q: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %q: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move %q into place: %w", path, err)
	}
	return nil
}

// FileExists checks if a path exists and is a regular file (not a directory).
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

var nonFilenameRegex = regexp.MustCompile(`[^a-z0-9_.-]+`)
var collapseUnderscoreRegex = regexp.MustCompile(`_+`)

// SanitizeFilename converts a string into a safe lowercase file name: spaces
// and disallowed characters become underscores, runs of underscores collapse.
func SanitizeFilename(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	sanitized := nonFilenameRegex.ReplaceAllString(lower, "_")
	collapsed := collapseUnderscoreRegex.ReplaceAllString(sanitized, "_")

	if collapsed == "" && name != "" {
		return "_"
	}
	return collapsed
}
