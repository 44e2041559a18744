// Package fs provides a local-directory implementation of the archive
// store. Processed submission documents are written under a root
// directory, mirroring the key layout an object store would use. It is
// the default archive for offline runs and tests.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ArchiveStore = (*Store)(nil)

// Store archives objects as plain files under a root directory.
type Store struct {
	root string
}

// NewStore creates an archive rooted at the given directory.
// If root is empty, defaults to ~/.cnteval/archive.
func NewStore(root string) (*Store, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		root = filepath.Join(home, ".cnteval", "archive")
	}

	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	return &Store{root: root}, nil
}

// Root returns the archive root directory.
func (s *Store) Root() string {
	return s.root
}

// Put stores data under the given key and returns a file:// URI for
// the stored object. Intermediate directories are created as needed.
func (s *Store) Put(_ context.Context, key string, data []byte) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("create archive subdirectory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("write archive object %q: %w", key, err)
	}

	return "file://" + path, nil
}

// Get retrieves a stored object by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive object %q: %w", key, err)
	}
	return data, nil
}

// Exists reports whether an object is stored under the key.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	path, err := s.resolve(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat archive object %q: %w", key, err)
	}
	return true, nil
}

// resolve maps a key to a path under the root, rejecting keys that
// would escape it.
func (s *Store) resolve(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("archive key must not be empty")
	}

	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("archive key %q escapes the archive root", key)
	}

	return filepath.Join(s.root, clean), nil
}
