package core

import (
	"cmp"
	"slices"
	"strings"
)

// DefaultPageSize is used when a caller asks for a non-positive page size.
const DefaultPageSize = 50

// MaxPageSize caps a single page.
const MaxPageSize = 1000

// SortSpec orders a table view by one column.
type SortSpec struct {
	Column string `json:"column"`
	Dir    string `json:"dir"` // "asc" or "desc"
}

// Normalize lowercases Dir and falls back to "asc".
func (s SortSpec) Normalize() SortSpec {
	dir := strings.ToLower(s.Dir)
	if dir != "asc" && dir != "desc" {
		dir = "asc"
	}
	return SortSpec{Column: s.Column, Dir: dir}
}

// SortRows returns a stably sorted copy of rows. Null and InvalidNumber
// values sort last in either direction. An unknown column returns the rows
// unchanged (still copied).
func SortRows(rows []TypedRow, schema Schema, sort SortSpec) []TypedRow {
	out := slices.Clone(rows)
	if _, ok := schema.Lookup(sort.Column); !ok {
		return out
	}
	sort = sort.Normalize()
	desc := sort.Dir == "desc"

	slices.SortStableFunc(out, func(a, b TypedRow) int {
		va, vb := a[sort.Column], b[sort.Column]
		ma, mb := isMissing(va), isMissing(vb)
		switch {
		case ma && mb:
			return 0
		case ma:
			return 1
		case mb:
			return -1
		}
		c := compareValues(va, vb)
		if desc {
			return -c
		}
		return c
	})
	return out
}

func isMissing(v Value) bool {
	return v.Kind == KindNull || v.Kind == KindInvalidNumber
}

func compareValues(a, b Value) int {
	switch {
	case a.Kind == KindNumber && b.Kind == KindNumber:
		return cmp.Compare(a.Num, b.Num)
	case a.Kind == KindDate && b.Kind == KindDate:
		return a.Time.Compare(b.Time)
	default:
		return strings.Compare(a.Raw, b.Raw)
	}
}

// PageResult is one page of a table view.
type PageResult struct {
	Rows       []TypedRow `json:"rows"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalRows  int        `json:"totalRows"`
	TotalPages int        `json:"totalPages"`
}

// Paginate slices rows into a 1-based page. Out-of-range pages are clamped
// to the first or last page.
func Paginate(rows []TypedRow, page, pageSize int) PageResult {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total := len(rows)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	pageRows := make([]TypedRow, 0, end-start)
	pageRows = append(pageRows, rows[start:end]...)

	return PageResult{
		Rows:       pageRows,
		Page:       page,
		PageSize:   pageSize,
		TotalRows:  total,
		TotalPages: totalPages,
	}
}
