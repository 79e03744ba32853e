package core

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/csvinsight/internal/history"
)

// RowQuery selects a page of the filtered view.
type RowQuery struct {
	Page     int
	PageSize int
	Sort     SortSpec
}

// FilterOutcome summarises a filter replacement.
type FilterOutcome struct {
	Matched int           `json:"matched"`
	Total   int           `json:"total"`
	Issues  []FilterIssue `json:"issues,omitempty"`
}

// ApplyFilters decodes body against the session's schema and replaces the
// session's filter spec with it.
func (s *Service) ApplyFilters(ctx context.Context, id string, body []byte) (*FilterOutcome, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}

	ds := sess.Dataset()
	spec, err := DecodeFilterSpec(body, ds.Schema)
	if err != nil {
		return nil, err
	}

	rows := sess.ApplyFilters(spec)

	s.publish(ctx, Event{
		Type:      EventFiltersApplied,
		SessionID: sess.ID,
		Path:      ds.Path,
		Rows:      len(ds.Rows),
		Matched:   len(rows),
	})
	slog.Debug("filters applied",
		"session", sess.ID.String(),
		"filters", len(spec),
		"matched", len(rows),
		"total", len(ds.Rows),
	)

	return &FilterOutcome{
		Matched: len(rows),
		Total:   len(ds.Rows),
		Issues:  ValidateFilters(ds.Schema, spec),
	}, nil
}

// Rows returns one page of the session's filtered, optionally sorted rows.
func (s *Service) Rows(id string, q RowQuery) (PageResult, error) {
	sess, err := s.Session(id)
	if err != nil {
		return PageResult{}, err
	}

	rows := sess.Filtered()
	if q.Sort.Column != "" {
		rows = SortRows(rows, sess.Dataset().Schema, q.Sort)
	}

	size := q.PageSize
	if size <= 0 {
		size = s.pageSize
	}
	return Paginate(rows, q.Page, size), nil
}

// ColumnsView describes a session's columns for the filter and chart UI.
type ColumnsView struct {
	Columns []*ColumnProfile `json:"columns"`
	Chart   ChartAxes        `json:"chart"`
	Filters FilterSpec       `json:"filters"`
}

// Columns returns per-column statistics and chart defaults.
func (s *Service) Columns(id string) (*ColumnsView, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}

	ds := sess.Dataset()
	filters := sess.Filters()
	if filters == nil {
		filters = FilterSpec{}
	}
	return &ColumnsView{
		Columns: ds.Profiles(),
		Chart:   ChartDefaults(ds.Schema),
		Filters: filters,
	}, nil
}

// Snapshot is the filtered view of a session, ready for export.
type Snapshot struct {
	FileName string
	Schema   Schema
	Rows     []TypedRow
}

// Snapshot returns the session's filtered rows, sorted when sort names a
// column.
func (s *Service) Snapshot(id string, sort SortSpec) (*Snapshot, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}

	ds := sess.Dataset()
	rows := sess.Filtered()
	if sort.Column != "" {
		rows = SortRows(rows, ds.Schema, sort)
	}
	return &Snapshot{FileName: ds.FileName, Schema: ds.Schema, Rows: rows}, nil
}

// History returns the most recent history entries.
func (s *Service) History(ctx context.Context, limit int) ([]history.Entry, error) {
	if s.history == nil {
		return nil, history.ErrUnavailable
	}
	return s.history.Recent(ctx, limit)
}

// ServiceStatus reports live service counters.
type ServiceStatus struct {
	Loads    LoadLimiterStatus `json:"loads"`
	Sessions int               `json:"sessions"`
	History  string            `json:"history"`
}

// Status returns the current load and session counters.
func (s *Service) Status() ServiceStatus {
	mode := "disabled"
	switch {
	case s.history == nil:
	case s.history.Durable():
		mode = "durable"
	default:
		mode = "memory"
	}
	return ServiceStatus{
		Loads:    s.limiter.Status(),
		Sessions: s.sessions.Len(),
		History:  mode,
	}
}
