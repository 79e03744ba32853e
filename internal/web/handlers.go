package web

import (
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/csvinsight/internal/web/templates"
)

// recentOnIndex is how many history entries the index page shows.
const recentOnIndex = 10

// handleIndex renders the file browser page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tree, err := s.service.Files()
	if err != nil {
		fail(w, r, err)
		return
	}

	params := templates.FileBrowserParams{
		Tree:        tree,
		MaxFileSize: s.cfg.Storage.MaxFileSize,
	}
	if entries, err := s.service.History(r.Context(), recentOnIndex); err == nil {
		params.History = entries
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.FileBrowser(params).Render(r.Context(), w); err != nil {
		slog.Error("render index", "error", err)
	}
}

// handleListFiles returns the data directory tree. HTMX requests get the
// rendered tree fragment.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	tree, err := s.service.Files()
	if err != nil {
		fail(w, r, err)
		return
	}

	if isHTMX(r) && !wantsJSON(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.FileTree(tree).Render(r.Context(), w); err != nil {
			slog.Error("render file tree", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tree": tree})
}
