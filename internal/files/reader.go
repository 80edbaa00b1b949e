// Package files decodes uploaded spreadsheet exports into the in-memory
// tables the attendance pipeline consumes, and discovers input files for
// the batch CLI.
package files

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"attendcli/internal/attendance"
	"attendcli/internal/errors"
)

// ReadTable decodes one .xlsx stream into a RawTable. The first sheet is
// used; its first row is the header. Cells beyond the header width are
// ignored, short rows pad with empty values.
func ReadTable(name string, r io.Reader) (attendance.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return attendance.RawTable{}, errors.NewParsingError("failed to open workbook "+name, err).
			WithContext("file", name)
	}
	defer f.Close()

	return decode(f, name)
}

// ReadTableFile decodes one .xlsx file from disk.
func ReadTableFile(path, name string) (attendance.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return attendance.RawTable{}, errors.NewParsingError("failed to open workbook "+path, err).
			WithContext("file", name)
	}
	defer f.Close()

	return decode(f, name)
}

// decode pulls the first sheet out of an open workbook.
func decode(f *excelize.File, name string) (attendance.RawTable, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return attendance.RawTable{}, errors.NewParsingError("workbook has no sheets", nil).
			WithContext("file", name)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return attendance.RawTable{}, errors.NewParsingError("failed to read sheet "+sheets[0], err).
			WithContext("file", name)
	}

	return tableFromRows(name, rows), nil
}

// tableFromRows builds a RawTable from raw sheet rows. Header cells are
// trimmed; unnamed columns are skipped.
func tableFromRows(name string, rows [][]string) attendance.RawTable {
	table := attendance.RawTable{Name: name}
	if len(rows) == 0 {
		return table
	}

	header := rows[0]
	cols := make([]int, 0, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		header[i] = h
		table.Columns = append(table.Columns, h)
		cols = append(cols, i)
	}

	for _, row := range rows[1:] {
		raw := make(attendance.RawRow, len(cols))
		empty := true
		for _, i := range cols {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			raw[header[i]] = value
			if strings.TrimSpace(value) != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		table.Rows = append(table.Rows, raw)
	}

	return table
}
