package exporter

import (
	"strconv"
	"time"

	"github.com/guregu/null/v6"

	"stockdash/internal/analytics"
)

// formatFloat formats a nullable float with the shortest exact
// representation. Null values become an empty cell.
func formatFloat(f null.Float) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Float64, 'f', -1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatDate formats a date in the DD-MM-YYYY HH:MM input layout
func formatDate(t time.Time) string {
	return t.Format(analytics.DateLayout)
}
