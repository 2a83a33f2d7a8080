package exporter

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stockdash/internal/analytics"
	"stockdash/internal/dataset"
	"stockdash/internal/shared/testutil"
)

func fixtureDashboard(t *testing.T, filter *analytics.SectorFilter) *analytics.Dashboard {
	t.Helper()

	prices, err := dataset.ReadCSV(strings.NewReader(testutil.PricesCSV))
	require.NoError(t, err)
	sectors, err := dataset.ReadCSV(strings.NewReader(testutil.SectorsCSV))
	require.NoError(t, err)

	d, err := analytics.Analyze(context.Background(), prices, sectors, filter)
	require.NoError(t, err)
	return d
}

func renderToFile(t *testing.T, d *analytics.Dashboard) *excelize.File {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	var buf bytes.Buffer
	require.NoError(t, NewWorkbookRenderer(logger).Write(&buf, d))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWorkbookRenderer_Sheets(t *testing.T) {
	f := renderToFile(t, fixtureDashboard(t, nil))

	assert.Equal(t, []string{
		SheetSummary, SheetSectorReturns, SheetCorrelation,
		SheetTopVolatility, SheetTopPerformers, SheetMonthly,
	}, f.GetSheetList())
}

func TestWorkbookRenderer_Tables(t *testing.T) {
	f := renderToFile(t, fixtureDashboard(t, nil))

	rows, err := f.GetRows(SheetSectorReturns)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Sector", "Average Return"}, rows[0])
	assert.Equal(t, "Banking", rows[1][0])
	assert.Equal(t, "Telecom", rows[2][0])

	rows, err = f.GetRows(SheetCorrelation)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"", "AAA", "BBB", "CCC"}, rows[0])
	assert.Equal(t, "1", rows[1][1])

	formats, err := f.GetConditionalFormats(SheetCorrelation)
	require.NoError(t, err)
	require.Contains(t, formats, "B2:D4")
	assert.Equal(t, "3_color_scale", formats["B2:D4"][0].Type)

	rows, err = f.GetRows(SheetTopVolatility)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "BBB", rows[1][0])

	rows, err = f.GetRows(SheetTopPerformers)
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "CCC", "AAA", "BBB"}, rows[0])
	// Four distinct dates across the three lines.
	assert.Len(t, rows, 5)

	jan, err := f.GetCellValue(SheetMonthly, "A1")
	require.NoError(t, err)
	assert.Equal(t, "January gainers", jan)

	feb, err := f.GetCellValue(SheetMonthly, "D"+formatInt(monthBlockRows+2))
	require.NoError(t, err)
	assert.Equal(t, "BBB", feb)
}

func TestWorkbookRenderer_SkippedCorrelation(t *testing.T) {
	f := renderToFile(t, fixtureDashboard(t, analytics.NewSectorFilter("Banking")))

	note, err := f.GetCellValue(SheetCorrelation, "A1")
	require.NoError(t, err)
	assert.Contains(t, note, "skipped")

	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)

	var warnings []string
	for _, row := range rows {
		if len(row) == 2 && row[0] == "Warning" {
			warnings = append(warnings, row[1])
		}
	}
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], analytics.ViewCorrelation)
}

func TestWorkbookRenderer_EmptyDashboard(t *testing.T) {
	f := renderToFile(t, fixtureDashboard(t, analytics.NewSectorFilter()))

	note, err := f.GetCellValue(SheetTopPerformers, "A1")
	require.NoError(t, err)
	assert.Equal(t, "No performers to show", note)
}

func TestWorkbookRenderer_SaveAs(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "reports", "dashboard.xlsx")

	require.NoError(t, NewWorkbookRenderer(logger).SaveAs(path, fixtureDashboard(t, nil)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Len(t, f.GetSheetList(), 6)
	assert.True(t, handler.ContainsMessage("Workbook written"))
}
