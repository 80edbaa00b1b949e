package attendance

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are the date-time shapes forms exporters actually emit.
// Tried in order; first match wins.
var timestampLayouts = []string{
	"1/2/06 15:04:05",
	"1/2/06 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"2006-01-02",
	"1/2/2006",
}

// excelEpoch is day zero of the 1900 date system serial numbers Excel
// stores when a cell is typed as a date.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseTimestamp parses one submission timestamp cell. No timezone
// conversion is performed; values are taken as source-local. Returns false
// for cells no layout matches; such rows drop silently upstream.
func ParseTimestamp(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// Excel serial date number (days since the 1900-system epoch).
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		d := time.Duration(serial * 24 * float64(time.Hour))
		return excelEpoch.Add(d).Round(time.Second), true
	}

	return time.Time{}, false
}

// TruncateToDay truncates a timestamp to its calendar day.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Deduplicate collapses the merged record set to at most one record per
// (classDate, studentKey): the earliest submission of the day. The sort is
// stable, so timestamp ties keep the original merge order, which is the
// upload order of the input files.
func Deduplicate(records []NormalizedRecord) []NormalizedRecord {
	sorted := make([]NormalizedRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ClassDate.Equal(sorted[j].ClassDate) {
			return sorted[i].ClassDate.Before(sorted[j].ClassDate)
		}
		if sorted[i].StudentKey != sorted[j].StudentKey {
			return sorted[i].StudentKey < sorted[j].StudentKey
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	daily := make([]NormalizedRecord, 0, len(sorted))
	seen := make(map[string]bool, len(sorted))
	for _, rec := range sorted {
		key := rec.ClassDate.Format("2006-01-02") + "\x00" + rec.StudentKey
		if seen[key] {
			continue
		}
		seen[key] = true
		daily = append(daily, rec)
	}

	return daily
}

// DistinctDays counts the distinct class dates in a record set.
func DistinctDays(records []NormalizedRecord) int {
	days := make(map[string]bool, len(records))
	for _, rec := range records {
		days[rec.ClassDate.Format("2006-01-02")] = true
	}
	return len(days)
}
