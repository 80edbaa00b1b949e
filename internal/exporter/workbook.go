package exporter

import (
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"attendcli/internal/attendance"
	"attendcli/internal/errors"
)

// Column width bounds and sampling depth for auto-sizing, in Excel
// character-width units.
const (
	minColWidth     = 10
	maxColWidth     = 45
	widthSampleRows = 200
)

// WorkbookWriter serializes a result set into a styled .xlsx workbook.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer.
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// WriteTo serializes the result set and writes the workbook to out.
func (w *WorkbookWriter) WriteTo(result *attendance.ResultSet, out io.Writer) error {
	f, err := w.build(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return errors.NewStorageError("failed to write workbook", err)
	}
	return nil
}

// WriteFile serializes the result set to a workbook file on disk.
func (w *WorkbookWriter) WriteFile(result *attendance.ResultSet, path string) error {
	f, err := w.build(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError("failed to save workbook "+path, err)
	}

	w.logger.Info("workbook written",
		slog.String("path", path),
		slog.Int("sheets", len(f.GetSheetList())))
	return nil
}

// build assembles the workbook: one sheet per table, styled per the report
// template.
func (w *WorkbookWriter) build(result *attendance.ResultSet) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil {
		f.Close()
		return nil, errors.NewStorageError("failed to create header style", err)
	}

	tables := BuildTables(result)
	for i, table := range tables {
		if err := w.writeSheet(f, table, i, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func (w *WorkbookWriter) writeSheet(f *excelize.File, table Table, index, headerStyle int) error {
	// The new workbook comes with one default sheet; rename it for the
	// first table, create the rest.
	if index == 0 {
		defaultName := f.GetSheetName(0)
		if err := f.SetSheetName(defaultName, table.Name); err != nil {
			return errors.NewStorageError("failed to rename sheet "+table.Name, err)
		}
	} else {
		if _, err := f.NewSheet(table.Name); err != nil {
			return errors.NewStorageError("failed to create sheet "+table.Name, err)
		}
	}

	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(table.Name, "A1", &header); err != nil {
		return errors.NewStorageError("failed to write header row", err)
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.NewStorageError("failed to compute cell coordinates", err)
		}
		if err := f.SetSheetRow(table.Name, cell, &row); err != nil {
			return errors.NewStorageError("failed to write data row", err)
		}
	}

	if err := w.styleSheet(f, table, headerStyle); err != nil {
		return err
	}
	return nil
}

// styleSheet applies the presentational contract: bold centered wrapped
// header, frozen header row, clamped auto-sized column widths.
func (w *WorkbookWriter) styleSheet(f *excelize.File, table Table, headerStyle int) error {
	lastCol, err := excelize.ColumnNumberToName(len(table.Headers))
	if err != nil {
		return errors.NewStorageError("failed to compute column name", err)
	}

	if err := f.SetCellStyle(table.Name, "A1", lastCol+"1", headerStyle); err != nil {
		return errors.NewStorageError("failed to style header row", err)
	}

	if err := f.SetPanes(table.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return errors.NewStorageError("failed to freeze header row", err)
	}

	for col := range table.Headers {
		width := columnWidth(table, col)
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return errors.NewStorageError("failed to compute column name", err)
		}
		if err := f.SetColWidth(table.Name, name, name, float64(width)); err != nil {
			return errors.NewStorageError("failed to set column width", err)
		}
	}
	return nil
}

// columnWidth sizes one column from its header and at most the first
// widthSampleRows data rows: min(max(10, longest+2), 45).
func columnWidth(table Table, col int) int {
	maxLen := len(table.Headers[col])
	sample := table.Rows
	if len(sample) > widthSampleRows {
		sample = sample[:widthSampleRows]
	}
	for _, row := range sample {
		if col >= len(row) {
			continue
		}
		if l := cellWidth(row[col]); l > maxLen {
			maxLen = l
		}
	}

	width := maxLen + 2
	if width < minColWidth {
		width = minColWidth
	}
	if width > maxColWidth {
		width = maxColWidth
	}
	return width
}
