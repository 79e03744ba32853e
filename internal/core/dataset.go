package core

import (
	"fmt"
	"io"
	"path"
	"sync"
	"time"
)

// LoadOptions controls how a file becomes a Dataset.
type LoadOptions struct {
	// SampleSize is the number of leading rows used for inference.
	// Zero means DefaultSampleSize.
	SampleSize int

	// Delimiter separates fields. Zero means ','.
	Delimiter rune

	// MaxBytes caps the raw input size. Zero disables the cap.
	MaxBytes int64
}

// Dataset is an immutable snapshot of one loaded file: its schema and the
// full typed row set.
type Dataset struct {
	Path     string
	FileName string
	Headers  []string
	Schema   Schema
	Rows     []TypedRow
	Skipped  int
	LoadedAt time.Time

	profileOnce sync.Once
	profiles    map[string]*ColumnProfile
}

// Load parses, infers and coerces r in one pass. label is an opaque
// slash-separated path used only for display.
func Load(r io.Reader, label string, opts LoadOptions) (*Dataset, error) {
	src := r
	if opts.MaxBytes > 0 {
		src = NewStreamingCountingReader(r, opts.MaxBytes)
	}

	table, err := ParseWithOptions(src, ParseOptions{Delimiter: opts.Delimiter})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", label, err)
	}

	return NewDataset(label, table, opts.SampleSize), nil
}

// NewDataset infers a schema for table and coerces every row.
func NewDataset(label string, table *RawTable, sampleSize int) *Dataset {
	schema := InferSchemaSample(table.Headers, table.Rows, sampleSize)
	return &Dataset{
		Path:     label,
		FileName: path.Base(label),
		Headers:  table.Headers,
		Schema:   schema,
		Rows:     Coerce(table.Rows, schema),
		Skipped:  table.Skipped,
		LoadedAt: time.Now().UTC(),
	}
}

// Profile returns the cached statistics for a column, or nil if the column
// is not in the schema.
func (d *Dataset) Profile(name string) *ColumnProfile {
	d.buildProfiles()
	return d.profiles[name]
}

// Profiles returns statistics for every column in schema order.
func (d *Dataset) Profiles() []*ColumnProfile {
	d.buildProfiles()
	out := make([]*ColumnProfile, 0, len(d.Schema))
	for _, c := range d.Schema {
		out = append(out, d.profiles[c.Name])
	}
	return out
}

func (d *Dataset) buildProfiles() {
	d.profileOnce.Do(func() {
		d.profiles = make(map[string]*ColumnProfile, len(d.Schema))
		for _, c := range d.Schema {
			if _, ok := d.profiles[c.Name]; !ok {
				d.profiles[c.Name] = ProfileColumn(d.Rows, c)
			}
		}
	})
}

// Filter evaluates spec against the full row set using cached statistics.
func (d *Dataset) Filter(spec FilterSpec) []TypedRow {
	if len(spec) == 0 {
		return d.Rows
	}
	return evaluate(d.Rows, d.Schema, spec, func(c ColumnSchema) *ColumnProfile {
		return d.Profile(c.Name)
	})
}
