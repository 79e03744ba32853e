// Package storage manages the data directory the browser works on: listing
// the file tree, reading and writing files, and renaming or deleting paths.
//
// Every path crossing this package's API is relative to the data root and
// uses forward slashes. Paths that would resolve outside the root are
// refused with ErrAccessDenied.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound     = errors.New("path not found")
	ErrAccessDenied = errors.New("access denied: path escapes the data root")
	ErrExists       = errors.New("path already exists")
	ErrInvalidPath  = errors.New("invalid path")
	ErrIsDirectory  = errors.New("path is a directory")
	ErrFileTooLarge = errors.New("file too large")
)

// NodeType distinguishes files from folders in the tree.
type NodeType string

const (
	NodeFile   NodeType = "file"
	NodeFolder NodeType = "folder"
)

// Node is one entry of the file tree.
type Node struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Type     NodeType `json:"type"`
	Size     int64    `json:"size,omitempty"`
	Children []Node   `json:"children,omitempty"`
}

// Store is a data directory on local disk.
type Store struct {
	root        string
	maxFileSize int64
}

// New creates the root directory if needed and returns a Store over it.
// maxFileSize caps Write; zero disables the cap.
func New(root string, maxFileSize int64) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{root: abs, maxFileSize: maxFileSize}, nil
}

// Root returns the absolute data directory.
func (s *Store) Root() string { return s.root }

// MaxFileSize returns the configured write cap.
func (s *Store) MaxFileSize() int64 { return s.maxFileSize }

// resolve maps a relative slash path to an absolute path under the root.
func (s *Store) resolve(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" || strings.ContainsRune(rel, 0) {
		return "", ErrInvalidPath
	}

	native := filepath.FromSlash(rel)
	if filepath.IsAbs(native) || filepath.VolumeName(native) != "" || strings.HasPrefix(rel, "/") {
		return "", ErrAccessDenied
	}

	cleaned := filepath.Clean(native)
	if cleaned == "." {
		return "", ErrInvalidPath
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", ErrAccessDenied
	}

	return filepath.Join(s.root, cleaned), nil
}

// relative converts an absolute path under the root back to a slash path.
func (s *Store) relative(full string) string {
	rel, err := filepath.Rel(s.root, full)
	if err != nil {
		return filepath.Base(full)
	}
	return filepath.ToSlash(rel)
}

// tempPrefix names the staging files Write creates next to their target.
const tempPrefix = ".upload-"

// Tree lists the whole data directory recursively. Entries within a folder
// are sorted by name.
func (s *Store) Tree() ([]Node, error) {
	return s.walk(s.root)
}

func (s *Store) walk(dir string) ([]Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", s.relative(dir), err)
	}

	nodes := make([]Node, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		node := Node{
			Name: entry.Name(),
			Path: s.relative(full),
		}

		if entry.IsDir() {
			children, err := s.walk(full)
			if err != nil {
				return nil, err
			}
			node.Type = NodeFolder
			node.Children = children
		} else {
			node.Type = NodeFile
			if info, err := entry.Info(); err == nil {
				node.Size = info.Size()
			}
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Open opens a file for reading and returns its size.
func (s *Store) Open(rel string) (io.ReadCloser, int64, error) {
	full, err := s.resolve(rel)
	if err != nil {
		return nil, 0, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, 0, mapFSError(err)
	}
	if info.IsDir() {
		return nil, 0, ErrIsDirectory
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, 0, mapFSError(err)
	}
	return f, info.Size(), nil
}

// Write stores r at rel, creating parent folders and replacing any existing
// file. The content is staged in a temporary file and renamed into place,
// so a failed or oversized write leaves the old file untouched.
func (s *Store) Write(rel string, r io.Reader) (int64, error) {
	full, err := s.resolve(rel)
	if err != nil {
		return 0, err
	}
	if info, err := os.Stat(full); err == nil && info.IsDir() {
		return 0, ErrIsDirectory
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create parent folders: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	src := r
	if s.maxFileSize > 0 {
		src = io.LimitReader(r, s.maxFileSize+1)
	}

	n, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", rel, err)
	}
	if s.maxFileSize > 0 && n > s.maxFileSize {
		return 0, ErrFileTooLarge
	}

	if err := os.Rename(tmpName, full); err != nil {
		return 0, fmt.Errorf("store %s: %w", rel, err)
	}
	return n, nil
}

// Delete removes a file or a folder with everything in it.
func (s *Store) Delete(rel string) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(full); err != nil {
		return mapFSError(err)
	}
	if err := os.RemoveAll(full); err != nil {
		return fmt.Errorf("delete %s: %w", rel, err)
	}
	return nil
}

// Rename moves oldRel to newRel. The target must not exist.
func (s *Store) Rename(oldRel, newRel string) error {
	oldFull, err := s.resolve(oldRel)
	if err != nil {
		return err
	}
	newFull, err := s.resolve(newRel)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(oldFull); err != nil {
		return mapFSError(err)
	}
	if _, err := os.Lstat(newFull); err == nil {
		return ErrExists
	}
	if err := os.MkdirAll(filepath.Dir(newFull), 0o755); err != nil {
		return fmt.Errorf("create parent folders: %w", err)
	}

	if err := os.Rename(oldFull, newFull); err != nil {
		return fmt.Errorf("rename %s: %w", oldRel, err)
	}
	return nil
}

// Mkdir creates a folder and any missing parents. An existing folder is
// not an error.
func (s *Store) Mkdir(rel string) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if info, err := os.Stat(full); err == nil && !info.IsDir() {
		return ErrExists
	}
	if err := os.MkdirAll(full, 0o755); err != nil {
		return fmt.Errorf("create folder %s: %w", rel, err)
	}
	return nil
}

func mapFSError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	default:
		return err
	}
}
