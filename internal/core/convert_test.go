package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		// Valid
		{"0", 0, true},
		{"36", 36, true},
		{"-5", -5, true},
		{"+7", 7, true},
		{"3.14", 3.14, true},
		{".5", 0.5, true},
		{"5.", 5, true},
		{"1e3", 1000, true},
		{"-2.5E-2", -0.025, true},
		{"  42  ", 42, true},
		{"20240101", 20240101, true},

		// Invalid
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"1,234", 0, false},
		{"$5", 0, false},
		{"NaN", 0, false},
		{"Infinity", 0, false},
		{"0x10", 0, false},
		{"1e999", 0, false},
		{"2024-01-05", 0, false},
		{"1.2.3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	utc := func(y int, m time.Month, d, hh, mm, ss int) time.Time {
		return time.Date(y, m, d, hh, mm, ss, 0, time.UTC)
	}

	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{"iso date", "2024-01-05", utc(2024, 1, 5, 0, 0, 0), true},
		{"iso datetime", "2024-01-05T10:30:00", utc(2024, 1, 5, 10, 30, 0), true},
		{"rfc3339 with zone", "2024-01-05T10:30:00+02:00", utc(2024, 1, 5, 8, 30, 0), true},
		{"rfc3339 utc millis", "2024-01-05T10:30:00.123Z", time.Date(2024, 1, 5, 10, 30, 0, 123e6, time.UTC), true},
		{"space separated", "2024-01-05 10:30:00", utc(2024, 1, 5, 10, 30, 0), true},
		{"single digit parts", "2024-1-5", utc(2024, 1, 5, 0, 0, 0), true},
		{"year month", "2024-03", utc(2024, 3, 1, 0, 0, 0), true},
		{"us slashed", "1/5/2024", utc(2024, 1, 5, 0, 0, 0), true},
		{"named month", "Jan 5, 2024", utc(2024, 1, 5, 0, 0, 0), true},
		{"dash month name", "5-Jan-2024", utc(2024, 1, 5, 0, 0, 0), true},
		{"surrounding space", "  2024-01-05 ", utc(2024, 1, 5, 0, 0, 0), true},

		{"empty", "", time.Time{}, false},
		{"text", "hello", time.Time{}, false},
		{"bad month", "2024-13-01", time.Time{}, false},
		{"number", "42", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}

func TestParseDate_TwoDigitYear(t *testing.T) {
	got, ok := ParseDate("1/5/24")
	assert.True(t, ok)
	assert.Equal(t, 2024, got.Year())

	pivot := time.Now().Year() + TwoDigitYearPivot
	farYY := (pivot + 1) % 100
	got, ok = ParseDate("1/5/" + twoDigits(farYY))
	assert.True(t, ok)
	assert.LessOrEqual(t, got.Year(), pivot, "years past the pivot fall back a century")
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

func TestFormatISO(t *testing.T) {
	loc := time.FixedZone("plus2", 2*3600)
	ts := time.Date(2024, 2, 10, 1, 0, 0, 5e6, loc)
	assert.Equal(t, "2024-02-09T23:00:00.005Z", FormatISO(ts))
}
