package exporter

import (
	"fmt"
	"strconv"
	"time"
)

// formatDate formats a class date for output
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// formatDateTime formats a submission timestamp for output
func formatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatCell renders one table cell as text for CSV output. Floats are
// attendance percentages and keep exactly one decimal place.
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', 1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// cellWidth measures the displayed length of one cell for column sizing
func cellWidth(v interface{}) int {
	return len([]rune(formatCell(v)))
}
