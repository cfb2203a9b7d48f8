package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps settings blobs as files under a directory, one file per
// key. Writes go through a temp file and rename so a crash never leaves a
// half-written blob behind.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, fmt.Errorf("settings key required")
	}

	path := s.path(key)
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("stat settings %s: %w", key, err)
	}
	if stat.IsDir() {
		return nil, false, fmt.Errorf("settings path %s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read settings %s: %w", key, err)
	}
	return data, true, nil
}

func (s *FileStore) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("settings key required")
	}

	if s.dir != "" && s.dir != "." {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write settings tmp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename settings %s: %w", key, err)
	}
	return nil
}
