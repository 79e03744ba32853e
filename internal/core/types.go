package core

import (
	"encoding/json"
	"strconv"
	"time"
)

// ColumnType is the inferred type of a column.
type ColumnType string

const (
	TypeText    ColumnType = "text"
	TypeNumeric ColumnType = "numeric"
	TypeDate    ColumnType = "date"
)

// Valid reports whether t is one of the known column types.
func (t ColumnType) Valid() bool {
	switch t {
	case TypeText, TypeNumeric, TypeDate:
		return true
	}
	return false
}

// ColumnSchema pairs a header name with its inferred type.
type ColumnSchema struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Schema is the ordered list of columns, aligned with the header line.
type Schema []ColumnSchema

// Lookup returns the schema entry for name.
func (s Schema) Lookup(name string) (ColumnSchema, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSchema{}, false
}

// Names returns the column names in header order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// RawRow maps header names to raw cell strings. Duplicate headers collapse
// to one key and the rightmost cell wins.
type RawRow map[string]string

// RawTable is the tokenizer's output.
type RawTable struct {
	Headers []string
	Rows    []RawRow

	// Skipped counts physical rows the reader rejected and dropped.
	Skipped int
}

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindText
	KindNumber
	KindInvalidNumber
	KindDate
)

var kindNames = [...]string{
	KindNull:          "null",
	KindText:          "text",
	KindNumber:        "number",
	KindInvalidNumber: "invalid_number",
	KindDate:          "date",
}

func (k ValueKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// isoLayout is the canonical date rendering: millisecond precision, UTC.
const isoLayout = "2006-01-02T15:04:05.000Z"

// Value is one coerced cell. Raw always holds the original string.
//
// Null means the cell was empty, or a date that did not parse.
// InvalidNumber means a non-empty cell in a numeric column that did not
// parse; it is distinct from Null so range filters can tell them apart.
type Value struct {
	Kind ValueKind
	Raw  string
	Num  float64
	Time time.Time
}

func NullValue(raw string) Value { return Value{Kind: KindNull, Raw: raw} }

func TextValue(raw string) Value { return Value{Kind: KindText, Raw: raw} }

func NumberValue(raw string, n float64) Value {
	return Value{Kind: KindNumber, Raw: raw, Num: n}
}

func InvalidNumberValue(raw string) Value {
	return Value{Kind: KindInvalidNumber, Raw: raw}
}

func DateValue(raw string, t time.Time) Value {
	return Value{Kind: KindDate, Raw: raw, Time: t.UTC()}
}

// IsNull reports whether the value is Null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// ISO returns the canonical ISO-8601 timestamp for a Date, or "".
func (v Value) ISO() string {
	if v.Kind != KindDate {
		return ""
	}
	return FormatISO(v.Time)
}

// String renders the value for display and export.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Raw
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindInvalidNumber:
		return "NaN"
	case KindDate:
		return v.ISO()
	default:
		return ""
	}
}

// MarshalJSON encodes Null as null, numbers as JSON numbers, dates as ISO
// strings, and the invalid-number sentinel as the string "NaN".
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindNumber:
		return json.Marshal(v.Num)
	default:
		return json.Marshal(v.String())
	}
}

// TypedRow maps header names to coerced values. Its keys are exactly the
// schema's column names.
type TypedRow map[string]Value
