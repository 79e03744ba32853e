package core

// filter.go evaluates a FilterSpec against typed rows.
//
// A FilterSpec is an immutable value supplied in full on every change; the
// engine never patches a previous result. Evaluation is AND across columns
// and preserves row order. Columns missing from the spec, and spec entries
// naming unknown columns, impose no constraint.
//
// Range filters are vacuous when they cover the column's observed range. A
// vacuous filter passes every row, Null and InvalidNumber included, so a
// freshly opened slider reproduces the unfiltered row count.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

// ErrInvalidFilter is returned when a filter spec cannot be decoded.
var ErrInvalidFilter = errors.New("invalid filter")

// ColumnFilter is a predicate on one column. The concrete type must match
// the column's type: TextFilter, NumericRange or DateRange.
type ColumnFilter interface {
	// ColumnType is the column type this filter applies to.
	ColumnType() ColumnType

	// vacuous reports whether the filter passes every row given the
	// column's observed statistics.
	vacuous(p *ColumnProfile) bool

	// matches tests a single value of a non-vacuous filter.
	matches(v Value) bool
}

// FilterSpec maps column names to filters.
type FilterSpec map[string]ColumnFilter

// TextFilter passes rows whose raw value is in Values. An empty set passes
// everything.
type TextFilter struct {
	Values []string `json:"values"`

	set map[string]struct{}
}

// NewTextFilter builds a TextFilter over the given values.
func NewTextFilter(values ...string) TextFilter {
	f := TextFilter{Values: values}
	f.index()
	return f
}

func (f *TextFilter) index() {
	f.set = make(map[string]struct{}, len(f.Values))
	for _, v := range f.Values {
		f.set[v] = struct{}{}
	}
}

func (f TextFilter) ColumnType() ColumnType { return TypeText }

func (f TextFilter) vacuous(*ColumnProfile) bool { return len(f.Values) == 0 }

func (f TextFilter) matches(v Value) bool {
	if f.set == nil {
		return slices.Contains(f.Values, v.Raw)
	}
	_, ok := f.set[v.Raw]
	return ok
}

// NumericRange passes numbers in [Min, Max], inclusive. An unbounded side is
// represented by an infinity.
type NumericRange struct {
	Min float64
	Max float64
}

func (f NumericRange) ColumnType() ColumnType { return TypeNumeric }

func (f NumericRange) vacuous(p *ColumnProfile) bool {
	if p == nil || !p.HasRange {
		return true
	}
	return f.Min <= p.Min && f.Max >= p.Max
}

func (f NumericRange) matches(v Value) bool {
	return v.Kind == KindNumber && v.Num >= f.Min && v.Num <= f.Max
}

// MarshalJSON writes infinite bounds as null.
func (f NumericRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	}{finiteOrNil(f.Min), finiteOrNil(f.Max)})
}

func finiteOrNil(n float64) *float64 {
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return nil
	}
	return &n
}

// DateRange passes dates on or after From and, when To is set, on or before
// To. A nil From makes the filter vacuous.
type DateRange struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

func (f DateRange) ColumnType() ColumnType { return TypeDate }

func (f DateRange) vacuous(p *ColumnProfile) bool {
	if f.From == nil {
		return true
	}
	if p == nil || !p.HasDates {
		return true
	}
	return !f.From.After(p.MinDate) && (f.To == nil || !f.To.Before(p.MaxDate))
}

func (f DateRange) matches(v Value) bool {
	if v.Kind != KindDate {
		return false
	}
	if v.Time.Before(*f.From) {
		return false
	}
	return f.To == nil || !v.Time.After(*f.To)
}

// Evaluate returns the rows that pass every filter in spec, in their
// original order. Column statistics for vacuity checks are computed from
// rows; use Dataset.Filter to reuse cached statistics.
func Evaluate(rows []TypedRow, schema Schema, spec FilterSpec) []TypedRow {
	profiles := make(map[string]*ColumnProfile)
	return evaluate(rows, schema, spec, func(col ColumnSchema) *ColumnProfile {
		p, ok := profiles[col.Name]
		if !ok {
			p = ProfileColumn(rows, col)
			profiles[col.Name] = p
		}
		return p
	})
}

type activeFilter struct {
	column string
	filter ColumnFilter
}

func evaluate(rows []TypedRow, schema Schema, spec FilterSpec, profileOf func(ColumnSchema) *ColumnProfile) []TypedRow {
	var active []activeFilter
	for _, col := range schema {
		f, ok := spec[col.Name]
		if !ok || f == nil || f.ColumnType() != col.Type {
			continue
		}
		if f.vacuous(profileOf(col)) {
			continue
		}
		active = append(active, activeFilter{column: col.Name, filter: f})
	}

	out := make([]TypedRow, 0, len(rows))
	for _, row := range rows {
		if rowPasses(row, active) {
			out = append(out, row)
		}
	}
	return out
}

func rowPasses(row TypedRow, active []activeFilter) bool {
	for _, a := range active {
		if !a.filter.matches(row[a.column]) {
			return false
		}
	}
	return true
}

// FilterIssue describes a spec entry that imposes no constraint.
type FilterIssue struct {
	Column  string `json:"column"`
	Problem string `json:"problem"`
}

// ValidateFilters reports spec entries that are ignored during evaluation:
// unknown columns and filters whose kind does not match the column type.
func ValidateFilters(schema Schema, spec FilterSpec) []FilterIssue {
	var issues []FilterIssue
	for name, f := range spec {
		col, ok := schema.Lookup(name)
		if !ok {
			issues = append(issues, FilterIssue{Column: name, Problem: "unknown column"})
			continue
		}
		if f == nil {
			issues = append(issues, FilterIssue{Column: name, Problem: "empty filter"})
			continue
		}
		if f.ColumnType() != col.Type {
			issues = append(issues, FilterIssue{
				Column:  name,
				Problem: fmt.Sprintf("%s filter on %s column", f.ColumnType(), col.Type),
			})
		}
	}
	return issues
}

// rawNumericRange and rawDateRange are the wire shapes of range filters.
type rawNumericRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type rawDateRange struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// DecodeFilterSpec decodes a JSON object of per-column filters. The column's
// schema type selects the shape: {"values":[...]} for text, {"min","max"}
// for numeric, {"from","to"} for date. Each also accepts a bare array:
// ["A","C"], [min, max] or [from, to], with null for an open side. Unknown
// columns are dropped.
func DecodeFilterSpec(data []byte, schema Schema) (FilterSpec, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	spec := make(FilterSpec, len(raw))
	for name, msg := range raw {
		col, ok := schema.Lookup(name)
		if !ok {
			continue
		}
		f, err := decodeColumnFilter(col.Type, msg)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q: %v", ErrInvalidFilter, name, err)
		}
		if f != nil {
			spec[name] = f
		}
	}
	return spec, nil
}

func decodeColumnFilter(t ColumnType, msg json.RawMessage) (ColumnFilter, error) {
	if string(msg) == "null" {
		return nil, nil
	}

	switch t {
	case TypeNumeric:
		var r rawNumericRange
		if isJSONArray(msg) {
			var pair []*float64
			if err := json.Unmarshal(msg, &pair); err != nil {
				return nil, err
			}
			if len(pair) != 2 {
				return nil, fmt.Errorf("range needs [min, max], got %d values", len(pair))
			}
			r = rawNumericRange{Min: pair[0], Max: pair[1]}
		} else if err := json.Unmarshal(msg, &r); err != nil {
			return nil, err
		}
		f := NumericRange{Min: math.Inf(-1), Max: math.Inf(1)}
		if r.Min != nil {
			f.Min = *r.Min
		}
		if r.Max != nil {
			f.Max = *r.Max
		}
		return f, nil

	case TypeDate:
		var r rawDateRange
		if isJSONArray(msg) {
			var pair []*string
			if err := json.Unmarshal(msg, &pair); err != nil {
				return nil, err
			}
			if len(pair) != 2 {
				return nil, fmt.Errorf("range needs [from, to], got %d values", len(pair))
			}
			r = rawDateRange{From: pair[0], To: pair[1]}
		} else if err := json.Unmarshal(msg, &r); err != nil {
			return nil, err
		}
		from, err := parseBound(r.From)
		if err != nil {
			return nil, err
		}
		to, err := parseBound(r.To)
		if err != nil {
			return nil, err
		}
		return DateRange{From: from, To: to}, nil

	default:
		var tf TextFilter
		if isJSONArray(msg) {
			if err := json.Unmarshal(msg, &tf.Values); err != nil {
				return nil, err
			}
		} else if err := json.Unmarshal(msg, &tf); err != nil {
			return nil, err
		}
		tf.index()
		return tf, nil
	}
}

// isJSONArray reports whether msg holds a bare array, the shorthand form of
// a filter.
func isJSONArray(msg json.RawMessage) bool {
	trimmed := bytes.TrimLeft(msg, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

func parseBound(s *string) (*time.Time, error) {
	if s == nil || isBlank(*s) {
		return nil, nil
	}
	t, ok := ParseDate(*s)
	if !ok {
		return nil, fmt.Errorf("bad date bound %q", *s)
	}
	return &t, nil
}
