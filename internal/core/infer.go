package core

import "strings"

// DefaultSampleSize is how many leading rows are inspected per column.
// Inference is sample-based, not exhaustive.
const DefaultSampleSize = 100

// InferSchema infers a type for every header from the first
// DefaultSampleSize rows.
func InferSchema(headers []string, rows []RawRow) Schema {
	return InferSchemaSample(headers, rows, DefaultSampleSize)
}

// InferSchemaSample infers a type for every header from the first
// sampleSize rows. A non-positive sampleSize means DefaultSampleSize.
//
// A repeated header name yields one column at its first position, matching
// the single key it gets in each row.
func InferSchemaSample(headers []string, rows []RawRow, sampleSize int) Schema {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	sample := rows
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	schema := make(Schema, 0, len(headers))
	seen := make(map[string]struct{}, len(headers))
	values := make([]string, 0, len(sample))
	for _, h := range headers {
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}

		values = values[:0]
		for _, row := range sample {
			values = append(values, row[h])
		}
		schema = append(schema, ColumnSchema{Name: h, Type: InferType(values)})
	}
	return schema
}

// InferType decides a column type from sampled raw values. Empty and
// whitespace-only values are ignored; if nothing remains the column is text.
//
// numeric wins when every value is a number. date wins when every value
// parses as a date and contains a '-', which keeps runs like "20240101" out
// of the date bucket. Anything else is text.
func InferType(values []string) ColumnType {
	present := make([]string, 0, len(values))
	for _, v := range values {
		if !isBlank(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return TypeText
	}

	if allMatch(present, func(v string) bool {
		_, ok := ParseNumber(v)
		return ok
	}) {
		return TypeNumeric
	}

	if allMatch(present, func(v string) bool {
		_, ok := ParseDate(v)
		return ok && strings.Contains(v, "-")
	}) {
		return TypeDate
	}

	return TypeText
}

func allMatch(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}
