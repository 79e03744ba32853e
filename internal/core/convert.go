package core

// convert.go parses raw cell strings into numbers and dates.
//
// Numbers follow one convention: optional sign, digits with an optional
// decimal point, optional exponent. Thousands separators, currency symbols
// and words such as NaN or Infinity are rejected.
//
// Dates are tried against a fixed list of layouts. Four-digit-year layouts
// go first because they are unambiguous; two-digit years are resolved with
// TwoDigitYearPivot. Values without a zone are read as UTC.

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericRegex validates that a string is a plain decimal number.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling.
// Month-first is the single supported convention for slashed dates.
var (
	fourDigitYearLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-1-2",
		"2006-01",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"1/2/2006", "1-2-2006", "1.2.2006",
		"2006/1/2", "2006.1.2",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006",
		"2-Jan-2006", "Jan-2-2006",
		time.RFC1123, time.RFC1123Z,
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "1-2-06", "1.2.06", "2-Jan-06",
	}
)

// ParseNumber parses s as a finite float64. Surrounding whitespace is
// ignored. Values that overflow float64 are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !numericRegex.MatchString(s) {
		return 0, false
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseDate parses s as a calendar date or timestamp and returns it in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

// FormatISO renders t as an ISO-8601 UTC timestamp with milliseconds.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// isBlank reports whether a cell is empty once whitespace is removed.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
