// Package filesystem stores uploaded documents as flat files in one directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Storage implements the interface.
var _ driven.DocumentStorage = (*Storage)(nil)

// tempPrefix marks in-progress writes; such files are never listed.
const tempPrefix = ".docqa-upload-"

// ignoredFiles are placeholders kept in the uploads directory.
var ignoredFiles = map[string]bool{
	".gitkeep": true,
}

// Storage is a flat directory of uploaded files.
type Storage struct {
	dir string
}

// New creates a storage rooted at dir. Call Init before use.
func New(dir string) *Storage {
	return &Storage{dir: dir}
}

// Dir returns the storage directory.
func (s *Storage) Dir() string {
	return s.dir
}

// Init creates the directory and checks that it is writable.
func (s *Storage) Init(_ context.Context) error {
	if strings.TrimSpace(s.dir) == "" {
		return fmt.Errorf("%w: empty uploads directory", domain.ErrInvalidConfig)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	check, err := os.CreateTemp(s.dir, tempPrefix+"check-*")
	if err != nil {
		return fmt.Errorf("uploads directory %s is not writable: %w", s.dir, err)
	}
	name := check.Name()
	check.Close()
	return os.Remove(name)
}

// path resolves a client name to a file inside the storage directory.
func (s *Storage) path(filename string) (string, string, error) {
	name, err := domain.SanitizeFilename(filename)
	if err != nil {
		return "", "", err
	}
	return name, filepath.Join(s.dir, name), nil
}

// Save writes content atomically under the sanitised name, replacing any existing file.
func (s *Storage) Save(_ context.Context, filename string, content []byte) (string, error) {
	name, target, err := s.path(filename)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("storing %s: %w", name, err)
	}
	return name, nil
}

// List returns stored filenames sorted ascending. A missing directory is empty.
func (s *Storage) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if ignoredFiles[name] || strings.HasPrefix(name, tempPrefix) || !entry.Type().IsRegular() {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the file's contents.
func (s *Storage) Read(_ context.Context, filename string) ([]byte, error) {
	name, target, err := s.path(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// Delete removes the file. Returns false if there was no such regular file.
func (s *Storage) Delete(_ context.Context, filename string) (bool, error) {
	name, target, err := s.path(filename)
	if err != nil {
		return false, err
	}

	info, err := os.Lstat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspecting %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}

	if err := os.Remove(target); err != nil {
		return false, fmt.Errorf("deleting %s: %w", name, err)
	}
	return true, nil
}
