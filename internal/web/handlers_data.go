package web

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/csvinsight/internal/core"
	"github.com/JonMunkholm/csvinsight/internal/export"
	"github.com/go-chi/chi/v5"
)

// filtersResponse is the body returned after a filter replacement: the
// match counts plus the first page of the new view.
type filtersResponse struct {
	*core.FilterOutcome
	Page core.PageResult `json:"page"`
}

// handleLoad loads a file into a view session.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	rel, err := requireParam("path", r.URL.Query().Get("path"))
	if err != nil {
		fail(w, r, err)
		return
	}

	view, err := s.service.LoadView(r.Context(), rel, r.URL.Query().Get("session"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleApplyFilters replaces the session's filter spec with the request body.
func (s *Server) handleApplyFilters(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	body, err := readBody(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	outcome, err := s.service.ApplyFilters(r.Context(), id, body)
	if err != nil {
		fail(w, r, err)
		return
	}

	page, err := s.service.Rows(id, core.RowQuery{
		Page:     1,
		PageSize: parseIntParam(r, "pageSize", 0),
		Sort:     parseSort(r),
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filtersResponse{FilterOutcome: outcome, Page: page})
}

// handleRows returns one page of the filtered view.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.Rows(chi.URLParam(r, "sessionID"), core.RowQuery{
		Page:     parseIntParam(r, "page", 1),
		PageSize: parseIntParam(r, "pageSize", 0),
		Sort:     parseSort(r),
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleColumns returns per-column statistics and chart defaults.
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	cols, err := s.service.Columns(chi.URLParam(r, "sessionID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

// handleExport streams the filtered view as CSV or XLSX.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		fail(w, r, err)
		return
	}

	snap, err := s.service.Snapshot(chi.URLParam(r, "sessionID"), parseSort(r))
	if err != nil {
		fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(snap.FileName, format)))

	if err := export.Write(w, format, snap.Schema, snap.Rows); err != nil {
		// Headers are already sent; the client sees a truncated download.
		slog.Error("export failed",
			"session", chi.URLParam(r, "sessionID"),
			"format", string(format),
			"error", err,
		)
	}
}

// handleCloseSession discards a view session.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.CloseSession(chi.URLParam(r, "sessionID")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
