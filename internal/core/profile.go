package core

import (
	"encoding/json"
	"time"
)

// Slider bounds shown for a numeric column with no valid numbers.
const (
	defaultRangeMin = 0
	defaultRangeMax = 100
)

// ColumnProfile summarizes one column of a dataset. It backs the filter
// controls and the vacuity checks in evaluation.
type ColumnProfile struct {
	Name string
	Type ColumnType

	// Distinct holds non-empty raw values in first-seen order (text only).
	Distinct []string

	// Min and Max span the valid numbers (numeric only, when HasRange).
	Min, Max float64
	HasRange bool

	// MinDate and MaxDate span the parsed dates (date only, when HasDates).
	MinDate, MaxDate time.Time
	HasDates         bool

	Nulls   int
	Invalid int
}

// ProfileColumn scans rows once and summarizes col.
func ProfileColumn(rows []TypedRow, col ColumnSchema) *ColumnProfile {
	p := &ColumnProfile{Name: col.Name, Type: col.Type}
	var seen map[string]struct{}
	if col.Type == TypeText {
		seen = make(map[string]struct{})
	}

	for _, row := range rows {
		v := row[col.Name]
		switch v.Kind {
		case KindNull:
			p.Nulls++

		case KindInvalidNumber:
			p.Invalid++

		case KindNumber:
			if !p.HasRange {
				p.Min, p.Max, p.HasRange = v.Num, v.Num, true
				continue
			}
			p.Min = min(p.Min, v.Num)
			p.Max = max(p.Max, v.Num)

		case KindDate:
			if !p.HasDates {
				p.MinDate, p.MaxDate, p.HasDates = v.Time, v.Time, true
				continue
			}
			if v.Time.Before(p.MinDate) {
				p.MinDate = v.Time
			}
			if v.Time.After(p.MaxDate) {
				p.MaxDate = v.Time
			}

		case KindText:
			if v.Raw == "" {
				continue
			}
			if _, dup := seen[v.Raw]; !dup {
				seen[v.Raw] = struct{}{}
				p.Distinct = append(p.Distinct, v.Raw)
			}
		}
	}
	return p
}

// SliderRange returns the numeric bounds for a range control. A column with
// no valid numbers reports [0, 100].
func (p *ColumnProfile) SliderRange() (float64, float64) {
	if !p.HasRange {
		return defaultRangeMin, defaultRangeMax
	}
	return p.Min, p.Max
}

// MarshalJSON emits only the fields relevant to the column's type.
func (p *ColumnProfile) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"name":    p.Name,
		"type":    p.Type,
		"nulls":   p.Nulls,
		"invalid": p.Invalid,
	}

	switch p.Type {
	case TypeText:
		distinct := p.Distinct
		if distinct == nil {
			distinct = []string{}
		}
		out["distinct"] = distinct

	case TypeNumeric:
		lo, hi := p.SliderRange()
		out["range"] = []float64{lo, hi}

	case TypeDate:
		if p.HasDates {
			out["dateRange"] = map[string]string{
				"from": FormatISO(p.MinDate),
				"to":   FormatISO(p.MaxDate),
			}
		} else {
			out["dateRange"] = nil
		}
	}

	return json.Marshal(out)
}

// ChartAxes names the default chart columns.
type ChartAxes struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// ChartDefaults picks the first column for the x axis and the first numeric
// column for the y axis. Either is "" when no suitable column exists.
func ChartDefaults(schema Schema) ChartAxes {
	var axes ChartAxes
	if len(schema) > 0 {
		axes.X = schema[0].Name
	}
	for _, c := range schema {
		if c.Type == TypeNumeric {
			axes.Y = c.Name
			break
		}
	}
	return axes
}
