package core

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// PreviewSummary contains the summary counts for an upload preview.
type PreviewSummary struct {
	TotalRows   int `json:"totalRows"`
	SkippedRows int `json:"skippedRows"`
	ErrorRows   int `json:"errorRows"`
	Columns     int `json:"columns"`
}

// ErrorPreview is a row with cells that did not coerce to their column type.
type ErrorPreview struct {
	Row    int               `json:"row"`
	Values map[string]string `json:"values"`
	Errors []string          `json:"errors"`
}

// PreviewResponse is the read-only analysis of a file before it is stored.
type PreviewResponse struct {
	FileName         string         `json:"fileName"`
	Summary          PreviewSummary `json:"summary"`
	Columns          Schema         `json:"columns"`
	RowSamples       []TypedRow     `json:"rowSamples"`
	ErrorSamples     []ErrorPreview `json:"errorSamples"`
	ProcessingTimeMs int64          `json:"processingTimeMs"`
}

// Sample limits
const (
	maxRowSamples   = 10
	maxErrorSamples = 20
)

// AnalyzeUpload infers the schema of a candidate upload and reports which
// rows hold cells that fail coercion. Nothing is stored and no session is
// created.
func (s *Service) AnalyzeUpload(ctx context.Context, name string, r io.Reader) (*PreviewResponse, error) {
	if r == nil {
		return nil, ErrNoFile
	}
	if !uploadExtensions[strings.ToLower(path.Ext(name))] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path.Ext(name))
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	startTime := time.Now()

	ds, err := Load(&contextReader{ctx: ctx, r: r}, name, s.loadOpts)
	if err != nil {
		return nil, err
	}

	resp := &PreviewResponse{
		FileName: ds.FileName,
		Summary: PreviewSummary{
			TotalRows:   len(ds.Rows),
			SkippedRows: ds.Skipped,
			Columns:     len(ds.Schema),
		},
		Columns:      ds.Schema,
		RowSamples:   ds.Rows[:min(len(ds.Rows), maxRowSamples)],
		ErrorSamples: []ErrorPreview{},
	}

	for i, row := range ds.Rows {
		errs := coercionErrors(row, ds.Schema)
		if len(errs) == 0 {
			continue
		}
		resp.Summary.ErrorRows++
		if len(resp.ErrorSamples) < maxErrorSamples {
			resp.ErrorSamples = append(resp.ErrorSamples, ErrorPreview{
				Row:    i + 1,
				Values: rawValues(row),
				Errors: errs,
			})
		}
	}

	resp.ProcessingTimeMs = time.Since(startTime).Milliseconds()
	return resp, nil
}

// coercionErrors lists the cells of row that carry text but no typed value.
func coercionErrors(row TypedRow, schema Schema) []string {
	var errs []string
	for _, col := range schema {
		v := row[col.Name]
		switch {
		case v.Kind == KindInvalidNumber:
			errs = append(errs, fmt.Sprintf("%s: %q is not a number", col.Name, v.Raw))
		case col.Type == TypeDate && v.Kind == KindNull && strings.TrimSpace(v.Raw) != "":
			errs = append(errs, fmt.Sprintf("%s: %q is not a date", col.Name, v.Raw))
		}
	}
	return errs
}

func rawValues(row TypedRow) map[string]string {
	values := make(map[string]string, len(row))
	for name, v := range row {
		values[name] = v.Raw
	}
	return values
}
