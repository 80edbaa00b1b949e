package attendance

import "strings"

// NotFound marks a canonical column the normalizer could not detect.
const NotFound = "NOT FOUND"

// columnPreviewLimit caps how many original column names the diagnostic
// record carries.
const columnPreviewLimit = 12

// FileDiagnostic describes, for one input file, which columns the schema
// normalizer detected and which identity strategy was applied. One record
// accumulates per file regardless of how many rows it contributed.
type FileDiagnostic struct {
	File          string
	TimeColumn    string
	EmailColumn   string
	NameColumns   string
	Strategy      IdentityStrategy
	ColumnPreview string
}

// previewColumns renders a truncated preview of the file's original
// column names.
func previewColumns(cols []string) string {
	if len(cols) <= columnPreviewLimit {
		return strings.Join(cols, ", ")
	}
	return strings.Join(cols[:columnPreviewLimit], ", ") + "..."
}
