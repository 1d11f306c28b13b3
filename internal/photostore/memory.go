package photostore

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
)

// MemoryStore keeps photos in memory. Intended for tests and local runs.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte
	// SaveErr and DeleteErr, when set, are returned instead of performing
	// the operation.
	SaveErr   error
	DeleteErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

func (s *MemoryStore) Driver() Driver { return DriverMemory }

func (s *MemoryStore) EnsureDirectory(context.Context) error { return nil }

func (s *MemoryStore) Save(_ context.Context, fileName string, r io.Reader) error {
	name, err := checkName(fileName)
	if err != nil {
		return domain.NewStorageWriteError("cannot store photo", err)
	}
	if s.SaveErr != nil {
		return domain.NewStorageWriteError("cannot store photo", s.SaveErr)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return domain.NewStorageWriteError("cannot store photo", err)
	}
	s.mu.Lock()
	s.files[name] = buf.Bytes()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, fileName string) error {
	name, err := checkName(fileName)
	if err != nil {
		return err
	}
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	delete(s.files, name)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, fileName string) (bool, error) {
	name, err := checkName(fileName)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	_, ok := s.files[name]
	s.mu.RUnlock()
	return ok, nil
}

// Bytes returns a copy of a stored file, or nil.
func (s *MemoryStore) Bytes(fileName string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.files[fileName]
	if !ok {
		return nil
	}
	return bytes.Clone(b)
}

// Len returns the number of stored files.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
