package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"stockdash/internal/dataset"
	apperrors "stockdash/internal/errors"
)

// dateLayoutLenient accepts single-digit day, month, hour and minute fields.
const dateLayoutLenient = "2-1-2006 15:4"

// ParseReport counts the rows ParsePrices dropped.
type ParseReport struct {
	Total       int
	NullSymbols int
	BadDates    int
	BadCloses   int
}

// Dropped returns the number of rows that did not survive parsing.
func (r ParseReport) Dropped() int {
	return r.NullSymbols + r.BadDates + r.BadCloses
}

// Warnings describes the dropped rows, one warning per cause.
func (r ParseReport) Warnings() []Warning {
	var out []Warning
	if r.NullSymbols > 0 {
		out = append(out, Warning{View: ViewInput, Message: fmt.Sprintf("dropped %d rows without a symbol", r.NullSymbols)})
	}
	if r.BadDates > 0 {
		out = append(out, Warning{View: ViewInput, Message: fmt.Sprintf("dropped %d rows with a malformed date (expected DD-MM-YYYY HH:MM)", r.BadDates)})
	}
	if r.BadCloses > 0 {
		out = append(out, Warning{View: ViewInput, Message: fmt.Sprintf("dropped %d rows with a missing or non-numeric close", r.BadCloses)})
	}
	return out
}

// ParseDate parses a DD-MM-YYYY HH:MM date literal.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayoutLenient, strings.TrimSpace(s))
}

// ParseClose parses a finite closing price.
func ParseClose(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("close %q is not finite", s)
	}
	return v, nil
}

// ParsePrices converts the merged frame into typed price rows. The frame
// must carry Symbol, Date and Close columns. Rows with a null symbol, a
// malformed date or an unusable close are dropped and counted in the report.
func ParsePrices(merged *dataset.Frame) ([]PriceRow, ParseReport, error) {
	var report ParseReport

	if err := dataset.RequireColumn(merged, dataset.KeyColumn, dataset.PricesSource); err != nil {
		return nil, report, err
	}
	for _, column := range []string{dataset.DateColumn, dataset.CloseColumn} {
		if !merged.HasColumn(column) {
			return nil, report, apperrors.NewAppValidationError(fmt.Sprintf("required column %q is missing from prices", column)).
				WithContext("column", column)
		}
	}

	sectorColumn := sectorColumnOf(merged)

	rows := make([]PriceRow, 0, merged.Len())
	for i := 0; i < merged.Len(); i++ {
		report.Total++

		symbol := merged.Value(i, dataset.KeyColumn)
		if !symbol.Valid {
			report.NullSymbols++
			continue
		}

		date, err := ParseDate(merged.Value(i, dataset.DateColumn).ValueOrZero())
		if err != nil {
			report.BadDates++
			continue
		}

		price, err := ParseClose(merged.Value(i, dataset.CloseColumn).ValueOrZero())
		if err != nil {
			report.BadCloses++
			continue
		}

		var sector null.String
		if sectorColumn != "" {
			sector = merged.Value(i, sectorColumn)
		}

		rows = append(rows, PriceRow{
			Symbol: symbol.String,
			Sector: sector,
			Date:   date,
			Close:  price,
		})
	}

	return rows, report, nil
}

// sectorColumnOf picks the sector label of a merged frame. When both inputs
// carried a Sector column the merge suffixed them and the mapping side wins.
func sectorColumnOf(f *dataset.Frame) string {
	for _, c := range []string{dataset.SectorColumn, dataset.SectorColumn + dataset.RightSuffix} {
		if f.HasColumn(c) {
			return c
		}
	}
	return ""
}
