package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{name: "string passes through", input: "jane@x.com", want: "jane@x.com"},
		{name: "int", input: 7, want: "7"},
		{name: "int64", input: int64(7), want: "7"},
		{name: "percent keeps one decimal", input: 33.3, want: "33.3"},
		{name: "whole percent keeps one decimal", input: 100.0, want: "100.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.input))
		})
	}
}

func TestCSVWriter_WriteTables(t *testing.T) {
	dir := t.TempDir()
	tables := BuildTables(sampleResult())

	require.NoError(t, NewCSVWriter(nil).WriteTables(dir, tables))

	// One lowercase-named file per table.
	for _, table := range tables {
		path := filepath.Join(dir, strings.ToLower(table.Name)+".csv")
		assert.FileExists(t, path)
	}

	data, err := os.ReadFile(filepath.Join(dir, "student_summary.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\xEF\xBB\xBF"), "missing UTF-8 BOM")

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\xEF\xBB\xBF"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"DisplayName", "Email", "DaysPresent", "TotalClassDays", "AttendancePercent", "LastSeen"}, records[0])
	assert.Equal(t, []string{"Jane Doe", "jane@x.com", "2", "2", "100.0", "2024-01-03"}, records[1])
}

func TestBuildTables_DiagnosticsHeaders(t *testing.T) {
	tables := BuildTables(sampleResult())
	require.Len(t, tables, 6)

	diag := tables[5]
	assert.Equal(t, SheetDiagnostics, diag.Name)
	assert.Equal(t, []string{"File", "Detected Time Column", "Detected Email Column",
		"Detected Name Column", "Identifier Used", "Columns in File"}, diag.Headers)
	require.Len(t, diag.Rows, 1)
	assert.Equal(t, "Email", diag.Rows[0][4])
}

func TestBuildTables_WithoutDiagnostics(t *testing.T) {
	result := sampleResult()
	result.Diagnostics = nil
	tables := BuildTables(result)
	require.Len(t, tables, 5)
	for _, table := range tables {
		assert.NotEqual(t, SheetDiagnostics, table.Name)
	}
}
