package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go-page-builder/pkg/fsutils"
)

// JSONStore implements Store with one indented JSON file per key.
type JSONStore struct {
	// BasePath is the directory where the <key>.json files are stored.
	BasePath string

	mu sync.RWMutex
}

// NewJSONStore creates a new JSONStore instance.
// It ensures the base storage directory exists.
func NewJSONStore(basePath string) (*JSONStore, error) {
	if err := fsutils.CreateDir(basePath); err != nil {
		return nil, fmt.Errorf("failed to create storage directory '%s': %w", basePath, err)
	}
	return &JSONStore{BasePath: basePath}, nil
}

// GetBasePath returns the base path of the JSON store.
func (js *JSONStore) GetBasePath() string {
	return js.BasePath
}

func (js *JSONStore) path(key string) string {
	return filepath.Join(js.BasePath, key+".json")
}

// Save writes v to <key>.json, replacing the file atomically.
func (js *JSONStore) Save(key string, v any) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	js.mu.Lock()
	defer js.mu.Unlock()
	filePath := js.path(key)
	if err := fsutils.WriteFileAtomic(filePath, data); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}
	return nil
}

// Load reads <key>.json into v.
func (js *JSONStore) Load(key string, v any) error {
	if err := checkKey(key); err != nil {
		return err
	}

	js.mu.RLock()
	filePath := js.path(key)
	data, err := os.ReadFile(filePath)
	js.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal data from %s: %w", filePath, err)
	}
	return nil
}

// Delete removes <key>.json. A missing file is not an error.
func (js *JSONStore) Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	js.mu.Lock()
	defer js.mu.Unlock()
	filePath := js.path(key)
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}
	return nil
}

// Keys scans BasePath for *.json files whose key has the given prefix.
func (js *JSONStore) Keys(prefix string) ([]string, error) {
	js.mu.RLock()
	files, err := os.ReadDir(js.BasePath)
	js.mu.RUnlock()
	if err != nil {
		// If the base path itself doesn't exist yet, return empty list, no error
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read storage directory %s: %w", js.BasePath, err)
	}

	keys := []string{}
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		key := strings.TrimSuffix(file.Name(), ".json")
		if ValidKey(key) && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for the file store.
func (js *JSONStore) Close() error { return nil }
