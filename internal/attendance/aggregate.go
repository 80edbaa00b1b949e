package attendance

import (
	"log/slog"
	"math"
	"sort"

	"attendcli/internal/errors"
)

// UnknownName fills the display name for students whose records never
// carried a usable name.
const UnknownName = "Unknown"

// Aggregator folds the deduplicated fact table into the derived report
// tables. It never touches raw input; everything is computed from the
// DailyRecord set alone.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// modeCounter tracks value frequencies in encounter order so that
// equal-frequency ties break toward the first-encountered value.
type modeCounter struct {
	counts map[string]int
	order  []string
}

func newModeCounter() *modeCounter {
	return &modeCounter{counts: make(map[string]int)}
}

// add records one non-blank observation.
func (m *modeCounter) add(value string) {
	if value == "" {
		return
	}
	if _, seen := m.counts[value]; !seen {
		m.order = append(m.order, value)
	}
	m.counts[value]++
}

// mode returns the most frequent observed value, or def when nothing
// non-blank was ever observed. Ties break by encounter order.
func (m *modeCounter) mode(def string) string {
	best := ""
	bestCount := 0
	for _, value := range m.order {
		if m.counts[value] > bestCount {
			best = value
			bestCount = m.counts[value]
		}
	}
	if best == "" {
		return def
	}
	return best
}

// studentStats accumulates per-student state while walking the daily set.
type studentStats struct {
	key        string
	names      *modeCounter
	emails     *modeCounter
	days       int
	lastSeen   NormalizedRecord
	lastSeenAt int // index into daily of the max-classDate record
}

// Aggregate derives every report table from the deduplicated record set.
// All joins key on the student key, never on the raw email, so the tables
// stay correct under the name-fallback identity policy.
func (a *Aggregator) Aggregate(daily []NormalizedRecord) (*ResultSet, error) {
	totalDays := DistinctDays(daily)
	if totalDays == 0 {
		return nil, errors.NewNoDataError("No class days detected after deduplication.")
	}

	stats := a.collectStats(daily)

	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := &ResultSet{
		Summary:    a.buildSummary(keys, stats, totalDays),
		Daily:      a.buildDaily(daily, stats),
		PerDay:     a.buildPerDay(daily),
		MostRecent: nil,
		Status:     nil,
	}
	result.MostRecent, result.Status = a.buildMostRecent(keys, stats, totalDays)

	a.logger.Debug("aggregation complete",
		slog.Int("students", len(keys)),
		slog.Int("class_days", totalDays),
		slog.Int("daily_records", len(daily)))

	return result, nil
}

// collectStats walks the daily set once, in order, building the per-student
// mode counters, day counts and most-recent records.
func (a *Aggregator) collectStats(daily []NormalizedRecord) map[string]*studentStats {
	stats := make(map[string]*studentStats)
	for i, rec := range daily {
		s, ok := stats[rec.StudentKey]
		if !ok {
			s = &studentStats{
				key:    rec.StudentKey,
				names:  newModeCounter(),
				emails: newModeCounter(),
			}
			stats[rec.StudentKey] = s
		}
		s.names.add(rec.DisplayName)
		s.emails.add(rec.Email)
		s.days++
		// At most one record per student per day survives deduplication,
		// so the max-classDate record is unique.
		if s.days == 1 || rec.ClassDate.After(s.lastSeen.ClassDate) {
			s.lastSeen = rec
			s.lastSeenAt = i
		}
	}
	return stats
}

// buildSummary produces the Student_Summary table, one row per student in
// key order.
func (a *Aggregator) buildSummary(keys []string, stats map[string]*studentStats, totalDays int) []StudentSummary {
	summary := make([]StudentSummary, 0, len(keys))
	for _, key := range keys {
		s := stats[key]
		summary = append(summary, StudentSummary{
			DisplayName:       s.names.mode(UnknownName),
			Email:             s.emails.mode(""),
			DaysPresent:       s.days,
			TotalClassDays:    totalDays,
			AttendancePercent: attendancePercent(s.days, totalDays),
			LastSeen:          s.lastSeen.ClassDate,
		})
	}
	return summary
}

// buildDaily projects the deduplicated set onto the Daily_Attendance table,
// standardizing each row's name and email to the student's mode values.
func (a *Aggregator) buildDaily(daily []NormalizedRecord, stats map[string]*studentStats) []AttendanceRow {
	rows := make([]AttendanceRow, 0, len(daily))
	for _, rec := range daily {
		s := stats[rec.StudentKey]
		rows = append(rows, AttendanceRow{
			ClassDate:   rec.ClassDate,
			Email:       s.emails.mode(""),
			DisplayName: s.names.mode(UnknownName),
			Timestamp:   rec.Timestamp,
		})
	}
	return rows
}

// buildPerDay produces the Per_Day_Counts table in ascending date order.
func (a *Aggregator) buildPerDay(daily []NormalizedRecord) []DayCount {
	counts := make(map[string]*DayCount)
	var order []string
	for _, rec := range daily {
		day := rec.ClassDate.Format("2006-01-02")
		if _, ok := counts[day]; !ok {
			counts[day] = &DayCount{ClassDate: rec.ClassDate}
			order = append(order, day)
		}
		counts[day].PresentCount++
	}
	sort.Strings(order)

	perDay := make([]DayCount, 0, len(order))
	for _, day := range order {
		perDay = append(perDay, *counts[day])
	}
	return perDay
}

// buildMostRecent produces the Most_Recent_By_Student table (ascending by
// each student's last class date) and the Student_Status_Report (the same
// records joined with summary statistics, descending by class date).
func (a *Aggregator) buildMostRecent(keys []string, stats map[string]*studentStats, totalDays int) ([]AttendanceRow, []StatusRow) {
	// Order by position of the kept record in the deduplicated set, which
	// is ascending (classDate, studentKey).
	ordered := make([]*studentStats, 0, len(keys))
	for _, key := range keys {
		ordered = append(ordered, stats[key])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].lastSeenAt < ordered[j].lastSeenAt
	})

	mostRecent := make([]AttendanceRow, 0, len(ordered))
	status := make([]StatusRow, 0, len(ordered))
	for _, s := range ordered {
		row := AttendanceRow{
			ClassDate:   s.lastSeen.ClassDate,
			Email:       s.emails.mode(""),
			DisplayName: s.names.mode(UnknownName),
			Timestamp:   s.lastSeen.Timestamp,
		}
		mostRecent = append(mostRecent, row)
		status = append(status, StatusRow{
			ClassDate:         row.ClassDate,
			Email:             row.Email,
			DisplayName:       row.DisplayName,
			Timestamp:         row.Timestamp,
			DaysPresent:       s.days,
			TotalClassDays:    totalDays,
			AttendancePercent: attendancePercent(s.days, totalDays),
		})
	}

	sort.SliceStable(status, func(i, j int) bool {
		return status[i].ClassDate.After(status[j].ClassDate)
	})

	return mostRecent, status
}

// attendancePercent derives the percentage of class days attended,
// rounded to one decimal place.
func attendancePercent(daysPresent, totalDays int) float64 {
	if totalDays == 0 {
		return 0
	}
	pct := float64(daysPresent) / float64(totalDays) * 100
	return math.Round(pct*10) / 10
}
