package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure DocumentStorage implements the interface.
var _ driven.DocumentStorage = (*DocumentStorage)(nil)

// DocumentStorage is an in-memory implementation of driven.DocumentStorage.
type DocumentStorage struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewDocumentStorage creates a new in-memory document storage.
func NewDocumentStorage() *DocumentStorage {
	return &DocumentStorage{
		files: make(map[string][]byte),
	}
}

// Init is a no-op.
func (s *DocumentStorage) Init(_ context.Context) error {
	return nil
}

// Save stores a copy of content under the sanitised name.
func (s *DocumentStorage) Save(_ context.Context, filename string, content []byte) (string, error) {
	name, err := domain.SanitizeFilename(filename)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), content...)
	return name, nil
}

// List returns stored names sorted ascending.
func (s *DocumentStorage) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Read returns a copy of the stored content.
func (s *DocumentStorage) Read(_ context.Context, filename string) ([]byte, error) {
	name, err := domain.SanitizeFilename(filename)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	return append([]byte(nil), content...), nil
}

// Delete removes a stored file. Returns false if absent.
func (s *DocumentStorage) Delete(_ context.Context, filename string) (bool, error) {
	name, err := domain.SanitizeFilename(filename)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[name]; !ok {
		return false, nil
	}
	delete(s.files, name)
	return true, nil
}
