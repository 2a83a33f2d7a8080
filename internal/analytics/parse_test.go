package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/internal/dataset"
	apperrors "stockdash/internal/errors"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "canonical", input: "03-01-2024 09:30", want: time.Date(2024, 1, 3, 9, 30, 0, 0, time.UTC)},
		{name: "single digits", input: "3-1-2024 9:05", want: time.Date(2024, 1, 3, 9, 5, 0, 0, time.UTC)},
		{name: "surrounding space", input: " 31-12-2023 23:59 ", want: time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)},
		{name: "iso order", input: "2024-01-03 09:30", wantErr: true},
		{name: "missing time", input: "03-01-2024", wantErr: true},
		{name: "month out of range", input: "03-13-2024 09:30", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestParseClose(t *testing.T) {
	v, err := ParseClose(" 12.5 ")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	for _, bad := range []string{"", "abc", "NaN", "inf", "1,5"} {
		_, err := ParseClose(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePrices(t *testing.T) {
	merged := dataset.NewFrame("Symbol", "Date", "Close", "Sector")
	merged.AppendStrings("AAA", "01-01-2024 10:00", "100", "Banking")
	merged.AppendStrings("", "01-01-2024 10:00", "100", "Banking")
	merged.AppendStrings("AAA", "2024/01/02", "101", "Banking")
	merged.AppendStrings("AAA", "03-01-2024 10:00", "n/a", "Banking")
	merged.AppendStrings("BBB", "01-01-2024 10:00", "50", "")

	rows, report, err := ParsePrices(merged)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "AAA", rows[0].Symbol)
	assert.Equal(t, "Banking", rows[0].Sector.String)
	assert.Equal(t, 100.0, rows[0].Close)
	assert.Equal(t, "BBB", rows[1].Symbol)
	assert.False(t, rows[1].Sector.Valid)

	assert.Equal(t, ParseReport{Total: 5, NullSymbols: 1, BadDates: 1, BadCloses: 1}, report)
	assert.Equal(t, 3, report.Dropped())
	assert.Len(t, report.Warnings(), 3)
}

func TestParsePricesSuffixedSector(t *testing.T) {
	merged := dataset.NewFrame("Symbol", "Date", "Close", "Sector_x", "Sector_y")
	merged.AppendStrings("AAA", "01-01-2024 10:00", "100", "Old", "Banking")

	rows, _, err := ParsePrices(merged)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Banking", rows[0].Sector.String)
}

func TestParsePricesMissingColumns(t *testing.T) {
	t.Run("symbol", func(t *testing.T) {
		_, _, err := ParsePrices(dataset.NewFrame("Date", "Close"))
		var missing *apperrors.MissingKeyError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, dataset.KeyColumn, missing.Key)
	})

	for _, column := range []string{"Date", "Close"} {
		t.Run(column, func(t *testing.T) {
			columns := []string{"Symbol", "Date", "Close"}
			var kept []string
			for _, c := range columns {
				if c != column {
					kept = append(kept, c)
				}
			}

			_, _, err := ParsePrices(dataset.NewFrame(kept...))
			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
			assert.Contains(t, appErr.Message, column)
		})
	}
}
