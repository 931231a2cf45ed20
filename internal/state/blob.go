package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/SoarinFerret/DayTracker/internal/tracker"
)

// ErrBlobNotFound is returned by BlobStore.Read for a key never written.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is a string-keyed store of opaque documents.
type BlobStore interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
}

// FileBlobStore keeps each key in <dir>/<key>.json.
type FileBlobStore struct {
	dir string
}

// NewFileBlobStore creates dir if needed.
func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", tracker.ErrStorageUnavailable, dir, err)
	}
	return &FileBlobStore{dir: dir}, nil
}

func (s *FileBlobStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileBlobStore) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("%w: read %s: %w", tracker.ErrStorageUnavailable, key, err)
	}
	return data, nil
}

// Write replaces the blob atomically.
func (s *FileBlobStore) Write(key string, data []byte) error {
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %w", tracker.ErrStorageUnavailable, key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: replace %s: %w", tracker.ErrStorageUnavailable, key, err)
	}
	return nil
}

// MemoryBlobStore is an in-process BlobStore.
type MemoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	// Fail makes every Write return ErrStorageUnavailable.
	Fail bool
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Read(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryBlobStore) Write(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return fmt.Errorf("%w: write %s", tracker.ErrStorageUnavailable, key)
	}
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}
