package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"
)

// FileStore keeps the snapshot in a JSON file on local disk.
type FileStore struct {
	path string
	mu   sync.Mutex // serializes writers sharing the .tmp file
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

// Load reads the snapshot file. A missing file yields ErrNotFound and
// undecodable content yields ErrCorrupt.
func (s *FileStore) Load(_ context.Context) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return snap, fmt.Errorf("open %s: %w", s.path, ErrNotFound)
		}
		return snap, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode %s: %w: %v", s.path, ErrCorrupt, err)
	}
	return snap, nil
}

// Save writes the snapshot to a temporary file and renames it over the
// previous one, so a failed write never leaves a half-written snapshot behind.
func (s *FileStore) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap.Meta.Storage = "json_file"
	snap.Meta.Version = Version
	snap.Meta.Timestamp = time.Now()
	tmp := s.path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
