package keyvalue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore implements Store backed by a JSON file. Values survive process
// restarts, which is what gives guest identity and the cached session id
// their cross-visit stability.
type FileStore struct {
	mu    sync.Mutex
	path  string
	items map[string]string
}

// NewFileStore opens or creates the store at path.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("keyvalue: creating state directory: %w", err)
	}

	items := make(map[string]string)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("keyvalue: parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// First run, nothing stored yet.
	default:
		return nil, fmt.Errorf("keyvalue: reading %s: %w", path, err)
	}

	return &FileStore{path: path, items: items}, nil
}

// Get returns the stored value for key.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.items[key]
	return value, ok
}

// Set stores value under key and writes the file through.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return s.persist()
}

// Delete removes key and writes the file through.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return s.persist()
}

func (s *FileStore) persist() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return fmt.Errorf("keyvalue: encoding state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("keyvalue: writing %s: %w", s.path, err)
	}
	return nil
}
