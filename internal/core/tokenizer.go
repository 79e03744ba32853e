package core

// tokenizer.go turns delimited text into headers and raw row maps.
//
// Parsing follows the same encoding/csv setup used for uploads elsewhere:
// variable field counts and lazy quotes, so a ragged or badly quoted row is
// recovered rather than aborting the file. The only fatal condition is a
// file with no header line at all.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoHeader is returned when the input holds no non-blank line.
var ErrNoHeader = errors.New("no header line found")

// ParseOptions controls tokenization.
type ParseOptions struct {
	// Delimiter separates fields. Zero means ','.
	Delimiter rune
}

// Parse reads comma-delimited text into a RawTable.
func Parse(r io.Reader) (*RawTable, error) {
	return ParseWithOptions(r, ParseOptions{})
}

// ParseString is Parse over an in-memory string.
func ParseString(s string) (*RawTable, error) {
	return Parse(strings.NewReader(s))
}

// ParseWithOptions reads delimited text into a RawTable.
//
// The first non-blank line supplies the headers. Blank and whitespace-only
// lines are skipped. Rows shorter than the header are padded with "", longer
// rows are truncated. A row the reader rejects is dropped and counted in
// RawTable.Skipped.
func ParseWithOptions(r io.Reader, opts ParseOptions) (*RawTable, error) {
	cr := csv.NewReader(WrapForStreaming(r, 0))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}

	table := &RawTable{}
	haveHeader := false

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				table.Skipped++
				continue
			}
			return nil, fmt.Errorf("read row: %w", err)
		}

		if isBlankRecord(record) {
			continue
		}

		if !haveHeader {
			table.Headers = record
			haveHeader = true
			continue
		}

		table.Rows = append(table.Rows, buildRawRow(table.Headers, record))
	}

	if !haveHeader {
		return nil, ErrNoHeader
	}

	return table, nil
}

// buildRawRow maps a record onto headers, padding or truncating as needed.
func buildRawRow(headers, record []string) RawRow {
	row := make(RawRow, len(headers))
	for i, h := range headers {
		if i < len(record) {
			row[h] = record[i]
		} else {
			row[h] = ""
		}
	}
	return row
}

// isBlankRecord reports whether a record came from a line holding nothing
// but whitespace. A line of bare delimiters has several fields and is kept.
func isBlankRecord(record []string) bool {
	return len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "")
}
