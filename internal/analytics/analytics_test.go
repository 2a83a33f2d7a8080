package analytics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockdash/internal/dataset"
	"stockdash/internal/shared/testutil"
)

// fixtureSeries derives the series of the shared price and sector fixtures.
func fixtureSeries(t *testing.T) *Series {
	t.Helper()

	prices, err := dataset.ReadCSV(strings.NewReader(testutil.PricesCSV))
	require.NoError(t, err)
	sectors, err := dataset.ReadCSV(strings.NewReader(testutil.SectorsCSV))
	require.NoError(t, err)

	merged, err := dataset.MergeSectors(prices, sectors)
	require.NoError(t, err)

	rows, report, err := ParsePrices(merged)
	require.NoError(t, err)
	require.Zero(t, report.Dropped())

	return Derive(rows)
}

func day(d, m int) time.Time {
	return time.Date(2024, time.Month(m), d, 10, 0, 0, 0, time.UTC)
}

func row(symbol, sector string, date time.Time, price float64) PriceRow {
	r := PriceRow{Symbol: symbol, Date: date, Close: price}
	if sector != "" {
		r.Sector.String, r.Sector.Valid = sector, true
	}
	return r
}
