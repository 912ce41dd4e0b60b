package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mpetrov/imgstash/internal/files"
)

// Storage implements files.BlobStore on a local directory. Blobs are
// plain files named by their sanitized upload name.
type Storage struct {
	root string
}

// NewStorage resolves the root directory and creates it eagerly. A root
// that cannot be created is a startup-fatal condition for the caller.
func NewStorage(root string) (*Storage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &Storage{root: abs}, nil
}

// Root returns the absolute storage root directory.
func (s *Storage) Root() string {
	return s.root
}

// Put writes the blob and returns its absolute path
func (s *Storage) Put(name string, data []byte) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}

	return path, nil
}

// Get reads the blob back
func (s *Storage) Get(name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}

	return data, nil
}

// Delete removes the blob; an already-absent blob is not an error
func (s *Storage) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete blob: %w", err)
	}

	return nil
}

// resolve maps a name onto a path under the root. Traversal sequences and
// separators are rejected before any filesystem access.
func (s *Storage) resolve(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") || strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') {
		return "", files.ErrInvalidName
	}
	return filepath.Join(s.root, name), nil
}
