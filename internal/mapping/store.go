package mapping

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/thesavant42/rvspecs/internal/models"
	"github.com/titanous/json5"
)

// Store loads and saves the full domain mapping collection
type Store interface {
	Load() (models.DomainMappings, error)
	Save(models.DomainMappings) error
}

// =============================================================================
// File store
// =============================================================================

// FileStore keeps mappings in a human-editable JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path; the file need not exist yet
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the mapping file. A missing file is an empty collection.
// Comments and trailing commas from hand edits are tolerated.
func (s *FileStore) Load() (models.DomainMappings, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return models.DomainMappings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read domain mappings: %w", err)
	}

	mappings := models.DomainMappings{}
	if len(data) == 0 {
		return mappings, nil
	}
	if err := json5.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("failed to parse domain mappings %s: %w", s.path, err)
	}
	for sld, dm := range mappings {
		if dm == nil {
			delete(mappings, sld)
		}
	}
	return mappings, nil
}

// Save writes a pretty-printed snapshot, replacing the file atomically
func (s *FileStore) Save(mappings models.DomainMappings) error {
	data, err := json.MarshalIndent(mappings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode domain mappings: %w", err)
	}
	return writeFileAtomic(s.path, append(data, '\n'))
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// Memory store
// =============================================================================

// MemoryStore is an in-process Store, mostly for tests
type MemoryStore struct {
	mu       sync.Mutex
	data     []byte
	saves    int
	FailSave error // returned by Save when set
}

// NewMemoryStore seeds a store with initial mappings
func NewMemoryStore(initial models.DomainMappings) *MemoryStore {
	s := &MemoryStore{}
	if initial != nil {
		s.data, _ = json.Marshal(initial)
	}
	return s
}

// Load returns a deep copy of the last saved snapshot
func (s *MemoryStore) Load() (models.DomainMappings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mappings := models.DomainMappings{}
	if len(s.data) == 0 {
		return mappings, nil
	}
	if err := json.Unmarshal(s.data, &mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}

// Save stores a snapshot
func (s *MemoryStore) Save(mappings models.DomainMappings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSave != nil {
		return s.FailSave
	}
	data, err := json.Marshal(mappings)
	if err != nil {
		return err
	}
	s.data = data
	s.saves++
	return nil
}

// Saves returns how many snapshots were written
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
