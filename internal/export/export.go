// Package export writes a filtered view to a downloadable file.
//
// Numbers are written as numbers and dates as timestamps. Cells that failed
// coercion keep their original text so nothing in the source is lost.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/JonMunkholm/csvinsight/internal/core"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for an unknown export format.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "View"

// ParseFormat maps a query value to a Format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName derives the download name from the source file name,
// e.g. "q1.csv" becomes "q1-filtered.xlsx".
func FileName(source string, f Format) string {
	base := path.Base(source)
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "export"
	}
	return base + "-filtered." + string(f)
}

// Write renders rows in the given format.
func Write(w io.Writer, f Format, schema core.Schema, rows []core.TypedRow) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, schema, rows)
	case FormatXLSX:
		return WriteXLSX(w, schema, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// WriteCSV writes a header line and one record per row.
func WriteCSV(w io.Writer, schema core.Schema, rows []core.TypedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(schema.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(schema))
	for _, row := range rows {
		for i, col := range schema {
			record[i] = cellText(row[col.Name])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook with a bold header row. Numbers
// and dates keep their native cell types.
func WriteXLSX(w io.Writer, schema core.Schema, rows []core.TypedRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	header := make([]interface{}, len(schema))
	for i, col := range schema {
		header[i] = col.Name
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r, row := range rows {
		cells := make([]interface{}, len(schema))
		for i, col := range schema {
			cells[i] = xlsxCell(row[col.Name], dateStyle)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cellText(v core.Value) string {
	switch v.Kind {
	case core.KindNumber, core.KindDate:
		return v.String()
	default:
		return v.Raw
	}
}

func xlsxCell(v core.Value, dateStyle int) interface{} {
	switch v.Kind {
	case core.KindNumber:
		return v.Num
	case core.KindDate:
		return excelize.Cell{StyleID: dateStyle, Value: v.Time}
	case core.KindNull:
		if v.Raw == "" {
			return nil
		}
		return v.Raw
	default:
		return v.Raw
	}
}
