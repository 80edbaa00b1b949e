package exporter

import (
	"attendcli/internal/attendance"
)

// Sheet names of the generated workbook, in emission order.
const (
	SheetStudentSummary  = "Student_Summary"
	SheetDailyAttendance = "Daily_Attendance"
	SheetPerDayCounts    = "Per_Day_Counts"
	SheetMostRecent      = "Most_Recent_By_Student"
	SheetStatusReport    = "Student_Status_Report"
	SheetDiagnostics     = "Diagnostics"
)

// Table is one result table flattened for serialization. Cells keep their
// native types so the workbook writer can emit real numbers; the CSV
// writer formats them.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// BuildTables flattens a result set into serialization-ready tables in
// workbook sheet order. The Diagnostics table appears only when the run
// produced one.
func BuildTables(result *attendance.ResultSet) []Table {
	tables := []Table{
		summaryTable(result.Summary),
		attendanceTable(SheetDailyAttendance, result.Daily),
		perDayTable(result.PerDay),
		attendanceTable(SheetMostRecent, result.MostRecent),
		statusTable(result.Status),
	}
	if result.Diagnostics != nil {
		tables = append(tables, diagnosticsTable(result.Diagnostics))
	}
	return tables
}

func summaryTable(rows []attendance.StudentSummary) Table {
	t := Table{
		Name:    SheetStudentSummary,
		Headers: []string{"DisplayName", "Email", "DaysPresent", "TotalClassDays", "AttendancePercent", "LastSeen"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{
			r.DisplayName, r.Email, r.DaysPresent, r.TotalClassDays,
			r.AttendancePercent, formatDate(r.LastSeen),
		})
	}
	return t
}

func attendanceTable(name string, rows []attendance.AttendanceRow) Table {
	t := Table{
		Name:    name,
		Headers: []string{"ClassDate", "Email", "DisplayName", "SubmissionDateTime"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{
			formatDate(r.ClassDate), r.Email, r.DisplayName, formatDateTime(r.Timestamp),
		})
	}
	return t
}

func perDayTable(rows []attendance.DayCount) Table {
	t := Table{
		Name:    SheetPerDayCounts,
		Headers: []string{"ClassDate", "PresentCount"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{formatDate(r.ClassDate), r.PresentCount})
	}
	return t
}

func statusTable(rows []attendance.StatusRow) Table {
	t := Table{
		Name: SheetStatusReport,
		Headers: []string{"ClassDate", "Email", "DisplayName", "SubmissionDateTime",
			"DaysPresent", "TotalClassDays", "AttendancePercent"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{
			formatDate(r.ClassDate), r.Email, r.DisplayName, formatDateTime(r.Timestamp),
			r.DaysPresent, r.TotalClassDays, r.AttendancePercent,
		})
	}
	return t
}

func diagnosticsTable(rows []attendance.FileDiagnostic) Table {
	t := Table{
		Name: SheetDiagnostics,
		Headers: []string{"File", "Detected Time Column", "Detected Email Column",
			"Detected Name Column", "Identifier Used", "Columns in File"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{
			r.File, r.TimeColumn, r.EmailColumn, r.NameColumns,
			string(r.Strategy), r.ColumnPreview,
		})
	}
	return t
}
