package web

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/JonMunkholm/csvinsight/internal/core"
	"github.com/JonMunkholm/csvinsight/internal/web/templates"
)

// multipartOverhead is allowed on top of the file cap for form fields and
// part headers.
const multipartOverhead = 1 << 20

// formFile returns the multipart "file" part and its cleaned base name.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, string, error) {
	if maxSize := s.cfg.Storage.MaxFileSize; maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, "", core.ErrFileTooLarge
		}
		return nil, "", core.ErrNoFile
	}

	name := uploadName(header.Filename)
	if name == "" {
		file.Close()
		return nil, "", core.ErrNoFile
	}
	return file, name, nil
}

// handleUpload stores a multipart "file" under the optional "path" folder.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, name, err := s.formFile(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer file.Close()

	rel := name
	if folder := strings.Trim(strings.TrimSpace(r.FormValue("path")), "/"); folder != "" {
		rel = folder + "/" + name
	}

	n, err := s.service.Upload(r.Context(), rel, file)
	if err != nil {
		fail(w, r, err)
		return
	}

	if isHTMX(r) && !wantsJSON(r) {
		tree, err := s.service.Files()
		if err != nil {
			fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.FileTree(tree).Render(r.Context(), w); err != nil {
			slog.Error("render file tree", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"path": rel, "size": n})
}

// handlePreview analyzes a multipart "file" without storing it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	file, name, err := s.formFile(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer file.Close()

	preview, err := s.service.AnalyzeUpload(r.Context(), name, file)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// uploadName reduces a client-supplied file name to its base name. Browsers
// on Windows may send a full path with backslashes.
func uploadName(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	base := path.Base(strings.TrimSpace(filename))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}
