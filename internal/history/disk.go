package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DiskStore writes entries as JSON files to a lazily-created directory.
// The default directory is stable across processes so that `runpane show`
// can find runs recorded by earlier invocations.
type DiskStore struct {
	mu      sync.Mutex
	dir     string
	created bool
}

// NewDiskStore creates a DiskStore rooted at the default run directory
// under the system temp dir. The directory is created lazily on first Save.
func NewDiskStore() *DiskStore {
	return NewDiskStoreAt(filepath.Join(os.TempDir(), "runpane-runs"))
}

// NewDiskStoreAt creates a DiskStore rooted at dir.
func NewDiskStoreAt(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Save writes an entry as a JSON file to disk.
func (s *DiskStore) Save(e *Entry) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshalling run %s: %w", e.ID, err)
	}
	path := filepath.Join(s.dir, e.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run %s: %w", e.ID, err)
	}
	return nil
}

// Load reads an entry from disk.
func (s *DiskStore) Load(runID string) (*Entry, error) {
	path := filepath.Join(s.dir, runID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", runID, err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshalling run %s: %w", runID, err)
	}
	return &e, nil
}

func (s *DiskStore) ensureDir() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}
	s.created = true
	return nil
}
