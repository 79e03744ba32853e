package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/JonMunkholm/csvinsight/internal/storage"
)

var (
	ErrNoFile          = errors.New("no file provided")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// uploadExtensions lists the file types accepted for upload.
var uploadExtensions = map[string]bool{
	".csv": true,
	".tsv": true,
	".txt": true,
}

// Files returns the data directory tree.
func (s *Service) Files() ([]storage.Node, error) {
	return s.files.Tree()
}

// Upload stores r at rel, replacing an existing file.
func (s *Service) Upload(ctx context.Context, rel string, r io.Reader) (int64, error) {
	if r == nil {
		return 0, ErrNoFile
	}
	if strings.TrimSpace(rel) == "" {
		return 0, fmt.Errorf("%w: path", ErrMissingParameter)
	}
	if !uploadExtensions[strings.ToLower(path.Ext(rel))] {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFile, path.Ext(rel))
	}

	n, err := s.files.Write(rel, &contextReader{ctx: ctx, r: r})
	if err != nil {
		return 0, fmt.Errorf("upload %s: %w", rel, err)
	}

	s.publish(ctx, Event{Type: EventFileUploaded, Path: rel, Bytes: n})
	slog.Info("file uploaded", "path", rel, "bytes", n)
	return n, nil
}

// Delete removes a file or folder.
func (s *Service) Delete(ctx context.Context, rel string) error {
	if strings.TrimSpace(rel) == "" {
		return fmt.Errorf("%w: path", ErrMissingParameter)
	}
	if err := s.files.Delete(rel); err != nil {
		return fmt.Errorf("delete %s: %w", rel, err)
	}

	s.publish(ctx, Event{Type: EventPathDeleted, Path: rel})
	slog.Info("path deleted", "path", rel)
	return nil
}

// Rename moves oldRel to newRel.
func (s *Service) Rename(ctx context.Context, oldRel, newRel string) error {
	if strings.TrimSpace(oldRel) == "" || strings.TrimSpace(newRel) == "" {
		return fmt.Errorf("%w: oldPath and newPath", ErrMissingParameter)
	}
	if err := s.files.Rename(oldRel, newRel); err != nil {
		return fmt.Errorf("rename %s: %w", oldRel, err)
	}

	s.publish(ctx, Event{Type: EventPathRenamed, Path: oldRel, NewPath: newRel})
	slog.Info("path renamed", "from", oldRel, "to", newRel)
	return nil
}

// Mkdir creates a folder.
func (s *Service) Mkdir(ctx context.Context, rel string) error {
	if strings.TrimSpace(rel) == "" {
		return fmt.Errorf("%w: path", ErrMissingParameter)
	}
	if err := s.files.Mkdir(rel); err != nil {
		return fmt.Errorf("mkdir %s: %w", rel, err)
	}

	s.publish(ctx, Event{Type: EventFolderCreated, Path: rel})
	slog.Info("folder created", "path", rel)
	return nil
}
