package storage

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ErrNotFound is returned by Load for a key that was never saved (or was deleted).
// It wraps os.ErrNotExist so callers may test for either.
var ErrNotFound = fmt.Errorf("storage: key not found: %w", os.ErrNotExist)

// ErrInvalidKey is returned for keys outside [A-Za-z0-9._-] or starting with a dot.
var ErrInvalidKey = errors.New("storage: invalid key")

// Store persists JSON documents by string key.
// Implementations must be safe for concurrent use.
type Store interface {
	// Load decodes the document stored under key into v.
	Load(key string, v any) error

	// Save encodes v as JSON and stores it under key, replacing any previous value.
	Save(key string, v any) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Keys lists stored keys with the given prefix, sorted.
	Keys(prefix string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidKey reports whether key can be used with any Store.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key) && !strings.HasPrefix(key, ".")
}

func checkKey(key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Open returns the store selected by driver: "json" (a directory of files) or
// "sqlite" (a single database file).
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", "json":
		return NewJSONStore(path)
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}
