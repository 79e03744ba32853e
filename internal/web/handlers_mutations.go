package web

import (
	"net/http"
)

type renameRequest struct {
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}

type folderRequest struct {
	Path string `json:"path"`
}

// handleDelete removes the file or folder named by the path query parameter.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	rel, err := requireParam("path", r.URL.Query().Get("path"))
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := s.service.Delete(r.Context(), rel); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "path": rel})
}

// handleRename moves oldPath to newPath.
func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	oldPath, err := requireParam("oldPath", req.OldPath)
	if err != nil {
		fail(w, r, err)
		return
	}
	newPath, err := requireParam("newPath", req.NewPath)
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := s.service.Rename(r.Context(), oldPath, newPath); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "renamed", "oldPath": oldPath, "newPath": newPath})
}

// handleMkdir creates a folder.
func (s *Server) handleMkdir(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	rel, err := requireParam("path", req.Path)
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := s.service.Mkdir(r.Context(), rel); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created", "path": rel})
}
