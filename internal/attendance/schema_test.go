package attendance

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendcli/internal/errors"
)

func microsoftTable(name string, rows ...RawRow) RawTable {
	return RawTable{
		Name:    name,
		Columns: []string{"Start time", "Email", "Name"},
		Rows:    rows,
	}
}

func TestNormalizer_Standardize_TimeColumn(t *testing.T) {
	n := NewNormalizer(slog.Default())

	tests := []struct {
		name         string
		table        RawTable
		wantTimeCol  string
		wantErrType  errors.ErrorType
	}{
		{
			name:        "microsoft start time",
			table:       microsoftTable("ms.xlsx", RawRow{"Start time": "1/2/24 09:00", "Email": "a@b.com"}),
			wantTimeCol: "Start time",
		},
		{
			name: "google timestamp",
			table: RawTable{
				Name:    "google.xlsx",
				Columns: []string{"Timestamp", "Email Address", "Full Name"},
				Rows:    []RawRow{{"Timestamp": "1/2/24 09:00", "Email Address": "a@b.com"}},
			},
			wantTimeCol: "Timestamp",
		},
		{
			name: "missing time column fails",
			table: RawTable{
				Name:    "broken.xlsx",
				Columns: []string{"Email", "Name"},
				Rows:    []RawRow{{"Email": "a@b.com"}},
			},
			wantErrType: errors.ErrTypeSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			std, diag, err := n.Standardize(tt.table, false)
			if tt.wantErrType != "" {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, tt.wantErrType))
				assert.Contains(t, err.Error(), tt.table.Name)
				assert.Equal(t, NotFound, diag.TimeColumn)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTimeCol, diag.TimeColumn)
			require.Len(t, std.Rows, 1)
			assert.Equal(t, "1/2/24 09:00", std.Rows[0].RawTime)
		})
	}
}

func TestNormalizer_Standardize_MissingEmailColumn(t *testing.T) {
	n := NewNormalizer(slog.Default())
	table := RawTable{
		Name:    "names_only.xlsx",
		Columns: []string{"Timestamp", "Full Name"},
		Rows:    []RawRow{{"Timestamp": "1/2/24 09:00", "Full Name": "Jane Doe"}},
	}

	t.Run("fails without fallback", func(t *testing.T) {
		_, diag, err := n.Standardize(table, false)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
		assert.Contains(t, err.Error(), "names_only.xlsx")
		assert.Equal(t, NotFound, diag.EmailColumn)
	})

	t.Run("succeeds with fallback", func(t *testing.T) {
		std, diag, err := n.Standardize(table, true)
		require.NoError(t, err)
		assert.Equal(t, StrategyNameOnly, diag.Strategy)
		require.Len(t, std.Rows, 1)
		assert.Equal(t, "jane doe", std.Rows[0].StudentKey)
		assert.Empty(t, std.Rows[0].Email)
	})
}

func TestNormalizer_Standardize_NameCoalesce(t *testing.T) {
	n := NewNormalizer(slog.Default())
	table := RawTable{
		Name:    "split_names.xlsx",
		Columns: []string{"Start time", "Email", "Name1", "Name2", "Full Name"},
		Rows: []RawRow{
			// Full Name has priority over Name1/Name2 regardless of column order.
			{"Start time": "1/2/24 09:00", "Email": "a@b.com", "Name1": "A One", "Full Name": "Prio Wins"},
			// Per-row coalesce: blank high-priority cells fall through.
			{"Start time": "1/2/24 09:05", "Email": "b@b.com", "Full Name": "  ", "Name1": "", "Name2": "Second Column"},
			{"Start time": "1/2/24 09:10", "Email": "c@b.com"},
		},
	}

	std, diag, err := n.Standardize(table, false)
	require.NoError(t, err)
	assert.Equal(t, "Full Name, Name1, Name2", diag.NameColumns)
	require.Len(t, std.Rows, 3)
	assert.Equal(t, "Prio Wins", std.Rows[0].DisplayName)
	assert.Equal(t, "Second Column", std.Rows[1].DisplayName)
	assert.Equal(t, "", std.Rows[2].DisplayName)
}

func TestNormalizer_Standardize_WholeFileRejection(t *testing.T) {
	n := NewNormalizer(slog.Default())
	table := microsoftTable("partial.xlsx",
		RawRow{"Start time": "1/2/24 09:00", "Email": "a@b.com"},
		RawRow{"Start time": "1/2/24 09:05", "Email": "   "},
	)

	_, _, err := n.Standardize(table, false)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	assert.Contains(t, err.Error(), "partial.xlsx")
}

func TestNormalizer_Standardize_EmailNormalization(t *testing.T) {
	n := NewNormalizer(slog.Default())
	table := microsoftTable("noisy.xlsx",
		RawRow{"Start time": "1/2/24 09:00", "Email": " Jane@X.com "},
		RawRow{"Start time": "1/3/24 09:00", "Email": "jane@x.com"},
	)

	std, _, err := n.Standardize(table, false)
	require.NoError(t, err)
	require.Len(t, std.Rows, 2)
	assert.Equal(t, std.Rows[0].StudentKey, std.Rows[1].StudentKey)
	assert.Equal(t, "jane@x.com", std.Rows[0].Email)
}

func TestNormalizer_Standardize_DiagnosticPreview(t *testing.T) {
	cols := []string{"Start time", "Email"}
	for i := 0; i < 14; i++ {
		cols = append(cols, fmt.Sprintf("Q%d", i+1))
	}
	table := RawTable{
		Name:    "survey.xlsx",
		Columns: cols,
		Rows:    []RawRow{{"Start time": "1/2/24 09:00", "Email": "a@b.com"}},
	}

	_, diag, err := NewNormalizer(nil).Standardize(table, false)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(diag.ColumnPreview, "..."))
	assert.Equal(t, columnPreviewLimit, strings.Count(diag.ColumnPreview, ",")+1)
	assert.Equal(t, NotFound, diag.NameColumns)
	assert.Equal(t, StrategyEmail, diag.Strategy)
}
