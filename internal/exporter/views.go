package exporter

import (
	"fmt"
	"path/filepath"
	"time"

	"stockdash/internal/analytics"
)

// File names written by ViewExporter.ExportViews.
const (
	SectorReturnsFile = "sector_returns.csv"
	CorrelationFile   = "correlation.csv"
	TopVolatilityFile = "top_volatility.csv"
	TopPerformersFile = "top_performers.csv"
	MonthlyMoversFile = "monthly_movers.csv"
)

// ViewExporter writes the numeric table behind each dashboard view to its
// own CSV file.
type ViewExporter struct {
	csvWriter *CSVWriter
}

// NewViewExporter creates a view exporter on top of w
func NewViewExporter(w *CSVWriter) *ViewExporter {
	return &ViewExporter{csvWriter: w}
}

// ExportViews writes one file per view into outputDir and returns the
// paths written. The correlation file is skipped when the view was.
func (v *ViewExporter) ExportViews(d *analytics.Dashboard, outputDir string) ([]string, error) {
	var written []string

	write := func(name string, headers []string, records [][]string) error {
		path := filepath.Join(outputDir, name)
		if err := v.csvWriter.WriteSimpleCSV(path, headers, records); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	if err := write(SectorReturnsFile, []string{"Sector", "Average Return"}, sectorRecords(d)); err != nil {
		return written, err
	}

	if d.Correlation != nil {
		headers := append([]string{"Symbol"}, d.Correlation.Symbols...)
		if err := write(CorrelationFile, headers, correlationRecords(d.Correlation)); err != nil {
			return written, err
		}
	}

	if err := write(TopVolatilityFile, []string{"Symbol", "Volatility"}, symbolValueRecords(d.TopVolatility)); err != nil {
		return written, err
	}

	if err := v.exportPerformers(d, filepath.Join(outputDir, TopPerformersFile)); err != nil {
		return written, err
	}
	written = append(written, filepath.Join(outputDir, TopPerformersFile))

	if err := write(MonthlyMoversFile, []string{"Month", "Kind", "Rank", "Symbol", "Daily Return Sum"}, monthlyRecords(d.Monthly)); err != nil {
		return written, err
	}

	return written, nil
}

// exportPerformers streams the cumulative return lines in long format.
func (v *ViewExporter) exportPerformers(d *analytics.Dashboard, path string) error {
	stream, err := v.csvWriter.CreateStreamWriter(path, []string{"Symbol", "Date", "Cumulative Return"}, true)
	if err != nil {
		return fmt.Errorf("failed to create stream writer for %s: %w", TopPerformersFile, err)
	}

	for _, p := range d.TopPerformers {
		for _, point := range p.Points {
			if err := stream.WriteRecord([]string{p.Symbol, formatDate(point.Date), formatFloat(point.Value)}); err != nil {
				stream.Close()
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
	}

	return stream.Close()
}

func sectorRecords(d *analytics.Dashboard) [][]string {
	records := make([][]string, len(d.SectorReturns))
	for i, s := range d.SectorReturns {
		records[i] = []string{s.Sector, formatFloat(s.AverageReturn)}
	}
	return records
}

func correlationRecords(m *analytics.CorrelationMatrix) [][]string {
	records := make([][]string, len(m.Symbols))
	for i, symbol := range m.Symbols {
		row := []string{symbol}
		for _, v := range m.Values[i] {
			row = append(row, formatFloat(v))
		}
		records[i] = row
	}
	return records
}

func symbolValueRecords(values []analytics.SymbolValue) [][]string {
	records := make([][]string, len(values))
	for i, v := range values {
		records[i] = []string{v.Symbol, formatFloat(v.Value)}
	}
	return records
}

func monthlyRecords(months []analytics.MonthlyMovers) [][]string {
	var records [][]string
	for _, m := range months {
		month := time.Month(m.Month).String()
		for i, v := range m.Gainers {
			records = append(records, []string{month, "gainer", formatInt(i + 1), v.Symbol, formatFloat(v.Value)})
		}
		for i, v := range m.Losers {
			records = append(records, []string{month, "loser", formatInt(i + 1), v.Symbol, formatFloat(v.Value)})
		}
	}
	return records
}
