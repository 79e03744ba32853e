package web

import (
	"net/http"

	"github.com/JonMunkholm/csvinsight/internal/history"
)

// handleHistory returns recent load and file history, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", history.DefaultLimit)

	entries, err := s.service.History(r.Context(), limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// handleStatus reports load limiter and session counters.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}
