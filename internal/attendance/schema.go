package attendance

import (
	"fmt"
	"log/slog"
	"strings"

	"attendcli/internal/errors"
)

// Canonical and accepted source column names. The closed alias lists come
// from the export formats the supported survey tools actually produce.
const (
	colStartTime    = "Start time" // Microsoft Forms
	colTimestamp    = "Timestamp"  // Google Forms
	colEmail        = "Email"      // Microsoft Forms
	colEmailAddress = "Email Address"
)

// nameAliases is the ordered, closed list of accepted name columns.
// Order is precedence: when a row carries values in several of these
// columns, the first non-blank value in this order wins.
var nameAliases = []string{
	"Full Name",
	"Name",
	"Student Name",
	"Respondent",
	"Name (First Last)",
	"Your Name",
	"Name1",
	"Name2",
}

// StandardRow is one raw row mapped onto the canonical schema. RawTime is
// still unparsed; timestamp parsing happens after the file merge so that a
// malformed cell drops one row instead of failing the file.
type StandardRow struct {
	RawTime     string
	Email       string
	DisplayName string
	StudentKey  string
}

// StandardTable is one input file after schema normalization, identity
// resolution and validation.
type StandardTable struct {
	File string
	Rows []StandardRow
}

// Normalizer maps heterogeneous export columns onto the canonical schema
// and resolves per-row identities. One instance is safe for concurrent use.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a schema normalizer.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Standardize normalizes one raw table. It fails with a SchemaError when
// the timestamp column is missing, or when the file has no email column
// and name fallback is disabled; it fails with a ValidationError when any
// row resolves to an empty student key (whole-file rejection policy).
// The diagnostic record is returned even alongside an error so callers can
// report what was detected.
func (n *Normalizer) Standardize(table RawTable, allowNameFallback bool) (*StandardTable, FileDiagnostic, error) {
	diag := FileDiagnostic{
		File:          table.Name,
		TimeColumn:    NotFound,
		EmailColumn:   NotFound,
		NameColumns:   NotFound,
		ColumnPreview: previewColumns(table.Columns),
	}

	timeCol := n.resolveTimeColumn(&table, &diag)
	if timeCol == "" {
		return nil, diag, errors.NewSchemaError(table.Name,
			fmt.Sprintf("Missing timestamp column. Expected %q (Microsoft) or %q (Google).",
				colStartTime, colTimestamp))
	}

	emailCol := n.resolveEmailColumn(&table, &diag)

	matchedNames := n.matchedNameColumns(&table)
	if len(matchedNames) > 0 {
		diag.NameColumns = strings.Join(matchedNames, ", ")
	}

	strategy, ok := chooseStrategy(emailCol != "", allowNameFallback)
	if !ok {
		return nil, diag, errors.NewSchemaError(table.Name,
			fmt.Sprintf("Missing email column. Expected %q (Microsoft) or %q (Google). "+
				"Enable name fallback to proceed without email.", colEmail, colEmailAddress))
	}
	diag.Strategy = strategy

	std := &StandardTable{
		File: table.Name,
		Rows: make([]StandardRow, 0, len(table.Rows)),
	}

	for _, raw := range table.Rows {
		row := StandardRow{
			RawTime:     raw[timeCol],
			DisplayName: resolveName(raw, matchedNames),
		}
		if emailCol != "" {
			row.Email = NormalizeKey(raw[emailCol])
		}
		row.StudentKey = resolveKey(strategy, row.Email, row.DisplayName)
		std.Rows = append(std.Rows, row)
	}

	// Whole-file rejection: a single unidentifiable row fails the file so
	// attendance counts never silently shrink.
	for _, row := range std.Rows {
		if row.StudentKey == "" {
			return nil, diag, errors.NewValidationError(table.Name,
				"Some rows have no usable identifier. Ensure Email is collected or names are filled in.")
		}
	}

	n.logger.Debug("standardized input file",
		slog.String("file", table.Name),
		slog.Int("rows", len(std.Rows)),
		slog.String("strategy", string(strategy)))

	return std, diag, nil
}

// resolveTimeColumn finds the timestamp source column, recording the
// detected alias. Returns "" when neither alias is present.
func (n *Normalizer) resolveTimeColumn(table *RawTable, diag *FileDiagnostic) string {
	if table.HasColumn(colStartTime) {
		diag.TimeColumn = colStartTime
		return colStartTime
	}
	if table.HasColumn(colTimestamp) {
		diag.TimeColumn = colTimestamp
		return colTimestamp
	}
	return ""
}

// resolveEmailColumn finds the email source column, recording the detected
// alias. Returns "" when the file carries no email column; that is not an
// error here, the identity strategy decides whether the file is usable.
func (n *Normalizer) resolveEmailColumn(table *RawTable, diag *FileDiagnostic) string {
	if table.HasColumn(colEmail) {
		diag.EmailColumn = colEmail
		return colEmail
	}
	if table.HasColumn(colEmailAddress) {
		diag.EmailColumn = colEmailAddress
		return colEmailAddress
	}
	return ""
}

// matchedNameColumns returns the name aliases the file declares, in
// precedence order.
func (n *Normalizer) matchedNameColumns(table *RawTable) []string {
	var matched []string
	for _, alias := range nameAliases {
		if table.HasColumn(alias) {
			matched = append(matched, alias)
		}
	}
	return matched
}

// resolveName coalesces a row's name across every present name column:
// the first non-blank value in alias-priority order wins. Forms that split
// or duplicate the name across optional columns resolve deterministically.
func resolveName(row RawRow, matchedAliases []string) string {
	for _, alias := range matchedAliases {
		if name := CleanName(row[alias]); name != "" {
			return name
		}
	}
	return ""
}
