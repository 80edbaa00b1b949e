package attendance

import "time"

// RawRow is one row of an uploaded export: column name to cell value.
// The shape is not known at design time; missing columns read as "".
type RawRow map[string]string

// RawTable is the in-memory table contract the pipeline consumes. Columns
// preserves the file's original column order for diagnostics.
type RawTable struct {
	Name    string
	Columns []string
	Rows    []RawRow
}

// HasColumn reports whether the table declares the given column.
func (t *RawTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// NormalizedRecord is one check-in that survived schema normalization,
// identity resolution and timestamp parsing. ClassDate is Timestamp
// truncated to the calendar day; StudentKey is never empty.
type NormalizedRecord struct {
	Timestamp   time.Time
	Email       string
	DisplayName string
	StudentKey  string
	ClassDate   time.Time
}

// StudentSummary is one row of the Student_Summary table.
type StudentSummary struct {
	DisplayName       string
	Email             string
	DaysPresent       int
	TotalClassDays    int
	AttendancePercent float64
	LastSeen          time.Time
}

// AttendanceRow is one row of the Daily_Attendance and
// Most_Recent_By_Student tables. Name and email are the per-student mode
// values, not the raw per-row spellings.
type AttendanceRow struct {
	ClassDate   time.Time
	Email       string
	DisplayName string
	Timestamp   time.Time
}

// DayCount is one row of the Per_Day_Counts table.
type DayCount struct {
	ClassDate    time.Time
	PresentCount int
}

// StatusRow is one row of the Student_Status_Report table: each student's
// most recent attendance enriched with their summary statistics.
type StatusRow struct {
	ClassDate         time.Time
	Email             string
	DisplayName       string
	Timestamp         time.Time
	DaysPresent       int
	TotalClassDays    int
	AttendancePercent float64
}

// ResultSet holds every table one reconciliation run produces.
// Diagnostics is nil when the run was asked not to emit it.
type ResultSet struct {
	Summary     []StudentSummary
	Daily       []AttendanceRow
	PerDay      []DayCount
	MostRecent  []AttendanceRow
	Status      []StatusRow
	Diagnostics []FileDiagnostic
}
