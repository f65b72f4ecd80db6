// Package storage persists rendered generation output.
package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/platinummonkey/ratchet/pkg/render"
)

// OutputStore writes and reads generated source files
type OutputStore interface {
	// WriteFiles persists the rendered files, replacing previous contents.
	WriteFiles(files []render.GeneratedFile) error
	// ReadFile returns the contents of one generated file.
	ReadFile(path string) ([]byte, error)
	// List returns the relative paths of all stored files, sorted.
	List() ([]string, error)
}

// FileSystemStore stores generated files under a root directory
type FileSystemStore struct {
	rootDir string
}

// NewFileSystemStore creates a store rooted at the given directory,
// creating it if needed
func NewFileSystemStore(rootDir string) (*FileSystemStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileSystemStore{rootDir: rootDir}, nil
}

// WriteFiles persists the rendered files under the root directory
func (s *FileSystemStore) WriteFiles(files []render.GeneratedFile) error {
	for _, file := range files {
		target, err := s.resolve(file.Path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", file.Path, err)
		}
		if err := os.WriteFile(target, file.Content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}
	return nil
}

// ReadFile returns the contents of one generated file
func (s *FileSystemStore) ReadFile(path string) ([]byte, error) {
	target, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(target)
}

// List returns the relative paths of all stored files, sorted
func (s *FileSystemStore) List() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.rootDir, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// resolve joins a relative output path against the root, rejecting paths
// that escape it
func (s *FileSystemStore) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("absolute output path not allowed: %s", path)
	}
	target := filepath.Join(s.rootDir, filepath.FromSlash(path))
	rel, err := filepath.Rel(s.rootDir, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("output path escapes root: %s", path)
	}
	return target, nil
}
