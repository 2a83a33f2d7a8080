package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"stockdash/internal/analytics"
)

// Sheet names of the dashboard workbook, in order.
const (
	SheetSummary       = "Summary"
	SheetSectorReturns = "SectorReturns"
	SheetCorrelation   = "Correlation"
	SheetTopVolatility = "TopVolatility"
	SheetTopPerformers = "TopPerformers"
	SheetMonthly       = "Monthly"
)

const (
	chartWidth  = 640
	chartHeight = 360

	// Rows reserved per month on the Monthly sheet, sized to fit a chart.
	monthBlockRows = 20
)

// WorkbookRenderer draws a dashboard into an xlsx workbook: one sheet per
// view, each holding the numeric table and a native chart.
type WorkbookRenderer struct {
	logger *slog.Logger
}

// NewWorkbookRenderer creates a workbook renderer
func NewWorkbookRenderer(logger *slog.Logger) *WorkbookRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookRenderer{logger: logger}
}

// Render builds the workbook. The caller must Close the returned file.
func (r *WorkbookRenderer) Render(d *analytics.Dashboard) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetSectorReturns, SheetCorrelation, SheetTopVolatility, SheetTopPerformers, SheetMonthly} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	steps := []struct {
		sheet string
		fn    func(*excelize.File, *analytics.Dashboard) error
	}{
		{SheetSummary, r.renderSummary},
		{SheetSectorReturns, r.renderSectorReturns},
		{SheetCorrelation, r.renderCorrelation},
		{SheetTopVolatility, r.renderTopVolatility},
		{SheetTopPerformers, r.renderTopPerformers},
		{SheetMonthly, r.renderMonthly},
	}
	for _, step := range steps {
		if err := step.fn(f, d); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to render sheet %s: %w", step.sheet, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write renders the dashboard and writes the workbook to w.
func (r *WorkbookRenderer) Write(w io.Writer, d *analytics.Dashboard) error {
	f, err := r.Render(d)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

// SaveAs renders the dashboard and overwrites the workbook at path.
func (r *WorkbookRenderer) SaveAs(path string, d *analytics.Dashboard) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := r.Render(d)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	r.logger.Info("Workbook written",
		slog.String("path", path),
		slog.Int("symbols", len(d.Symbols)),
		slog.Int("warnings", len(d.Warnings)))
	return nil
}

func (r *WorkbookRenderer) renderSummary(f *excelize.File, d *analytics.Dashboard) error {
	filter := "all sectors"
	if d.Filter.Applied {
		filter = strings.Join(d.Filter.Sectors, ", ")
	}

	rows := [][]interface{}{
		{"Generated", d.GeneratedAt.Format(time.RFC3339)},
		{"Sector filter", filter},
		{"Available sectors", strings.Join(d.AvailableSectors, ", ")},
		{"Symbols", len(d.Symbols)},
		{"Rows", d.RowCount},
		{"Dropped rows", d.DroppedRows},
	}
	for _, w := range d.Warnings {
		rows = append(rows, []interface{}{"Warning", fmt.Sprintf("%s: %s", w.View, w.Message)})
	}

	if err := setRows(f, SheetSummary, 1, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "B", 24)
}

func (r *WorkbookRenderer) renderSectorReturns(f *excelize.File, d *analytics.Dashboard) error {
	rows := [][]interface{}{{"Sector", "Average Return"}}
	for _, s := range d.SectorReturns {
		rows = append(rows, []interface{}{s.Sector, cellValue(s.AverageReturn.Valid, s.AverageReturn.Float64)})
	}
	if err := setRows(f, SheetSectorReturns, 1, rows); err != nil {
		return err
	}
	if len(d.SectorReturns) == 0 {
		return nil
	}

	last := len(d.SectorReturns) + 1
	return f.AddChart(SheetSectorReturns, "D2", barChart(excelize.Bar, "Average Annualized Return by Sector",
		excelize.ChartSeries{
			Name:       cellRef(SheetSectorReturns, "B", 1),
			Categories: colRange(SheetSectorReturns, "A", 2, last),
			Values:     colRange(SheetSectorReturns, "B", 2, last),
		}))
}

func (r *WorkbookRenderer) renderCorrelation(f *excelize.File, d *analytics.Dashboard) error {
	m := d.Correlation
	if m == nil {
		return f.SetCellValue(SheetCorrelation, "A1", "Correlation heatmap skipped: at least two symbols are required")
	}

	header := []interface{}{""}
	for _, s := range m.Symbols {
		header = append(header, s)
	}
	rows := [][]interface{}{header}
	for i, s := range m.Symbols {
		row := []interface{}{s}
		for _, v := range m.Values[i] {
			row = append(row, cellValue(v.Valid, v.Float64))
		}
		rows = append(rows, row)
	}
	if err := setRows(f, SheetCorrelation, 1, rows); err != nil {
		return err
	}

	topLeft, err := excelize.CoordinatesToCellName(2, 2)
	if err != nil {
		return err
	}
	bottomRight, err := excelize.CoordinatesToCellName(len(m.Symbols)+1, len(m.Symbols)+1)
	if err != nil {
		return err
	}

	return f.SetConditionalFormat(SheetCorrelation, topLeft+":"+bottomRight, []excelize.ConditionalFormatOptions{{
		Type:     "3_color_scale",
		Criteria: "=",
		MinType:  "num",
		MinValue: "-1",
		MinColor: "#5A8AC6",
		MidType:  "num",
		MidValue: "0",
		MidColor: "#FCFCFF",
		MaxType:  "num",
		MaxValue: "1",
		MaxColor: "#F8696B",
	}})
}

func (r *WorkbookRenderer) renderTopVolatility(f *excelize.File, d *analytics.Dashboard) error {
	rows := [][]interface{}{{"Symbol", "Volatility"}}
	for _, v := range d.TopVolatility {
		rows = append(rows, []interface{}{v.Symbol, cellValue(v.Value.Valid, v.Value.Float64)})
	}
	if err := setRows(f, SheetTopVolatility, 1, rows); err != nil {
		return err
	}
	if len(d.TopVolatility) == 0 {
		return nil
	}

	last := len(d.TopVolatility) + 1
	return f.AddChart(SheetTopVolatility, "D2", barChart(excelize.Bar, "Top 10 Most Volatile Symbols",
		excelize.ChartSeries{
			Name:       cellRef(SheetTopVolatility, "B", 1),
			Categories: colRange(SheetTopVolatility, "A", 2, last),
			Values:     colRange(SheetTopVolatility, "B", 2, last),
		}))
}

// renderTopPerformers lays the cumulative return lines out as a
// Date x Symbol table and draws one line per symbol.
func (r *WorkbookRenderer) renderTopPerformers(f *excelize.File, d *analytics.Dashboard) error {
	if len(d.TopPerformers) == 0 {
		return f.SetCellValue(SheetTopPerformers, "A1", "No performers to show")
	}

	dateIndex := make(map[time.Time]int)
	var dates []time.Time
	for _, p := range d.TopPerformers {
		for _, point := range p.Points {
			if _, ok := dateIndex[point.Date]; !ok {
				dateIndex[point.Date] = 0
				dates = append(dates, point.Date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	for i, date := range dates {
		dateIndex[date] = i
	}

	rows := make([][]interface{}, len(dates)+1)
	rows[0] = []interface{}{"Date"}
	for i, date := range dates {
		rows[i+1] = make([]interface{}, len(d.TopPerformers)+1)
		rows[i+1][0] = formatDate(date)
	}
	for c, p := range d.TopPerformers {
		rows[0] = append(rows[0], p.Symbol)
		for _, point := range p.Points {
			rows[dateIndex[point.Date]+1][c+1] = cellValue(point.Value.Valid, point.Value.Float64)
		}
	}
	if err := setRows(f, SheetTopPerformers, 1, rows); err != nil {
		return err
	}

	last := len(dates) + 1
	series := make([]excelize.ChartSeries, len(d.TopPerformers))
	for c := range d.TopPerformers {
		col, err := excelize.ColumnNumberToName(c + 2)
		if err != nil {
			return err
		}
		series[c] = excelize.ChartSeries{
			Name:       cellRef(SheetTopPerformers, col, 1),
			Categories: colRange(SheetTopPerformers, "A", 2, last),
			Values:     colRange(SheetTopPerformers, col, 2, last),
		}
	}

	anchor, err := excelize.CoordinatesToCellName(len(d.TopPerformers)+3, 2)
	if err != nil {
		return err
	}
	return f.AddChart(SheetTopPerformers, anchor, &excelize.Chart{
		Type:      excelize.Line,
		Series:    series,
		Title:     []excelize.RichTextRun{{Text: "Top 5 Performing Symbols (Cumulative Return)"}},
		Legend:    excelize.ChartLegend{Position: "right"},
		Dimension: excelize.ChartDimension{Width: chartWidth * 3 / 2, Height: chartHeight},
	})
}

// renderMonthly writes one block per calendar month with the gainer and
// loser tables side by side and a bar chart for each.
func (r *WorkbookRenderer) renderMonthly(f *excelize.File, d *analytics.Dashboard) error {
	for i, m := range d.Monthly {
		top := i*monthBlockRows + 1
		name := time.Month(m.Month).String()

		rows := [][]interface{}{
			{name + " gainers", "Daily Return Sum", "", name + " losers", "Daily Return Sum"},
		}
		for k := 0; k < max(len(m.Gainers), len(m.Losers)); k++ {
			row := make([]interface{}, 5)
			if k < len(m.Gainers) {
				row[0], row[1] = m.Gainers[k].Symbol, cellValue(m.Gainers[k].Value.Valid, m.Gainers[k].Value.Float64)
			}
			if k < len(m.Losers) {
				row[3], row[4] = m.Losers[k].Symbol, cellValue(m.Losers[k].Value.Valid, m.Losers[k].Value.Float64)
			}
			rows = append(rows, row)
		}
		if err := setRows(f, SheetMonthly, top, rows); err != nil {
			return err
		}

		if len(m.Gainers) > 0 {
			last := top + len(m.Gainers)
			err := f.AddChart(SheetMonthly, fmt.Sprintf("G%d", top), barChart(excelize.Col, "Top 5 Gainers in "+name,
				excelize.ChartSeries{
					Name:       cellRef(SheetMonthly, "B", top),
					Categories: colRange(SheetMonthly, "A", top+1, last),
					Values:     colRange(SheetMonthly, "B", top+1, last),
				}))
			if err != nil {
				return err
			}
		}
		if len(m.Losers) > 0 {
			last := top + len(m.Losers)
			err := f.AddChart(SheetMonthly, fmt.Sprintf("Q%d", top), barChart(excelize.Col, "Top 5 Losers in "+name,
				excelize.ChartSeries{
					Name:       cellRef(SheetMonthly, "E", top),
					Categories: colRange(SheetMonthly, "D", top+1, last),
					Values:     colRange(SheetMonthly, "E", top+1, last),
				}))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func barChart(kind excelize.ChartType, title string, series excelize.ChartSeries) *excelize.Chart {
	return &excelize.Chart{
		Type:      kind,
		Series:    []excelize.ChartSeries{series},
		Title:     []excelize.RichTextRun{{Text: title}},
		Legend:    excelize.ChartLegend{Position: "none"},
		PlotArea:  excelize.ChartPlotArea{ShowVal: false},
		Dimension: excelize.ChartDimension{Width: chartWidth, Height: chartHeight},
	}
}

// setRows writes rows starting at column A of the given row number.
func setRows(f *excelize.File, sheet string, top int, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, top+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// cellValue returns nil for null numbers so the cell stays empty.
func cellValue(valid bool, v float64) interface{} {
	if !valid {
		return nil
	}
	return v
}

func cellRef(sheet, col string, row int) string {
	return fmt.Sprintf("%s!$%s$%d", sheet, col, row)
}

func colRange(sheet, col string, from, to int) string {
	return fmt.Sprintf("%s!$%s$%d:$%s$%d", sheet, col, from, col, to)
}
