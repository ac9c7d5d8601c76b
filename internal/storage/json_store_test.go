package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

type record struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Tags    []string  `json:"tags"`
	Created time.Time `json:"created"`
}

// Helper function to create a sample record for testing
func createSampleRecord(id, name string) *record {
	return &record{
		ID:      id,
		Name:    name,
		Tags:    []string{"landing", "draft"},
		Created: time.Now().Truncate(time.Second).UTC(),
	}
}

// stores returns one fresh instance of every Store implementation.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	tempDir := t.TempDir()

	jsonStore, err := NewJSONStore(filepath.Join(tempDir, ".test_data"))
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}
	sqliteStore, err := NewSQLiteStore(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{"json": jsonStore, "sqlite": sqliteStore}
}

func TestNewJSONStore(t *testing.T) {
	tempDir := t.TempDir()
	dataPath := filepath.Join(tempDir, ".test_data")

	store, err := NewJSONStore(dataPath)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}

	// Check if the base directory was created
	if _, err := os.Stat(dataPath); os.IsNotExist(err) {
		t.Errorf("NewJSONStore() did not create the base directory: %s", dataPath)
	}
	if store.GetBasePath() != dataPath {
		t.Errorf("GetBasePath() returned %q, want %q", store.GetBasePath(), dataPath)
	}
}

func TestJSONStoreWritesOneFilePerKey(t *testing.T) {
	dataPath := filepath.Join(t.TempDir(), ".test_data")
	store, err := NewJSONStore(dataPath)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}

	if err := store.Save("project-1", createSampleRecord("1", "One")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	expectedFilePath := filepath.Join(dataPath, "project-1.json")
	if _, err := os.Stat(expectedFilePath); os.IsNotExist(err) {
		t.Fatalf("Save() did not create the expected file: %s", expectedFilePath)
	}
}

func TestSaveLoad(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			original := createSampleRecord("abc", "Save Load")
			if err := store.Save("record-abc", original); err != nil {
				t.Fatalf("Save() failed: %v", err)
			}

			var loaded record
			if err := store.Load("record-abc", &loaded); err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			loaded.Created = loaded.Created.UTC()
			if !reflect.DeepEqual(*original, loaded) {
				t.Errorf("Load() does not match original.\nOriginal: %+v\nLoaded:   %+v", *original, loaded)
			}

			// Overwrite
			original.Name = "Renamed"
			if err := store.Save("record-abc", original); err != nil {
				t.Fatalf("Save() overwrite failed: %v", err)
			}
			if err := store.Load("record-abc", &loaded); err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if loaded.Name != "Renamed" {
				t.Errorf("Name = %q after overwrite, want %q", loaded.Name, "Renamed")
			}
		})
	}
}

func TestLoad_NotFound(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var r record
			err := store.Load("does-not-exist", &r)
			if err == nil {
				t.Fatal("Load() succeeded for a missing key, expected error")
			}
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Load() returned %q, expected ErrNotFound", err)
			}
			// Use errors.Is to check if the error (or any wrapped error) is os.ErrNotExist
			if !errors.Is(err, os.ErrNotExist) {
				t.Errorf("Load() returned %q, expected an error wrapping os.ErrNotExist", err)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Save("to-delete", createSampleRecord("d", "Delete")); err != nil {
				t.Fatalf("Setup failed: Save() failed: %v", err)
			}
			if err := store.Delete("to-delete"); err != nil {
				t.Fatalf("Delete() failed: %v", err)
			}

			var r record
			if err := store.Load("to-delete", &r); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("Load() after delete returned %v, expected an error wrapping os.ErrNotExist", err)
			}

			// Idempotent delete
			if err := store.Delete("to-delete"); err != nil {
				t.Errorf("second Delete() failed: %v", err)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"project-b", "builder-datasources", "project-a"} {
				if err := store.Save(key, createSampleRecord(key, key)); err != nil {
					t.Fatalf("Setup failed: Save(%q) failed: %v", key, err)
				}
			}

			got, err := store.Keys("project-")
			if err != nil {
				t.Fatalf("Keys() failed: %v", err)
			}
			want := []string{"project-a", "project-b"}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Keys(project-) = %v, want %v", got, want)
			}

			all, err := store.Keys("")
			if err != nil {
				t.Fatalf("Keys() failed: %v", err)
			}
			if len(all) != 3 {
				t.Errorf("Keys(\"\") returned %d keys, want 3", len(all))
			}
		})
	}
}

func TestInvalidKeys(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../escape", "a/b", ".hidden", "with space"} {
				if err := store.Save(key, "x"); !errors.Is(err, ErrInvalidKey) {
					t.Errorf("Save(%q) returned %v, expected ErrInvalidKey", key, err)
				}
			}
		})
	}
}

func TestOpen(t *testing.T) {
	tempDir := t.TempDir()

	s, err := Open("json", filepath.Join(tempDir, "data"))
	if err != nil {
		t.Fatalf("Open(json) failed: %v", err)
	}
	if _, ok := s.(*JSONStore); !ok {
		t.Errorf("Open(json) returned %T", s)
	}

	s, err = Open("sqlite", filepath.Join(tempDir, "data.db"))
	if err != nil {
		t.Fatalf("Open(sqlite) failed: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("Open(sqlite) returned %T", s)
	}

	if _, err := Open("postgres", "x"); err == nil {
		t.Error("Open(postgres) should fail")
	}
}
