package analytics

import (
	"context"
	"time"

	"stockdash/internal/dataset"
)

// Analyze runs the presenter pipeline on the raw price and sector frames:
// merge, parse, derive, filter and build every view.
func Analyze(ctx context.Context, prices, sectors *dataset.Frame, filter *SectorFilter) (*Dashboard, error) {
	series, report, err := Prepare(ctx, prices, sectors)
	if err != nil {
		return nil, err
	}
	return Build(series, report, filter), nil
}

// Prepare merges the raw frames, parses the price rows and derives the
// unfiltered series.
func Prepare(ctx context.Context, prices, sectors *dataset.Frame) (*Series, ParseReport, error) {
	merged, err := dataset.MergeSectors(prices, sectors)
	if err != nil {
		return nil, ParseReport{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, ParseReport{}, err
	}

	rows, report, err := ParsePrices(merged)
	if err != nil {
		return nil, report, err
	}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	return Derive(rows), report, nil
}

// Build assembles the dashboard from a derived series.
func Build(series *Series, report ParseReport, filter *SectorFilter) *Dashboard {
	filtered, applied := ApplyFilter(series, filter)

	d := &Dashboard{
		GeneratedAt:      time.Now().UTC(),
		AvailableSectors: AvailableSectors(series),
		Filter:           FilterState{Applied: applied, Sectors: []string{}},
		Symbols:          filtered.Symbols(),
		RowCount:         len(filtered.Rows),
		DroppedRows:      report.Dropped(),
		Warnings:         append(report.Warnings(), series.Warnings...),
	}
	if applied {
		d.Filter.Sectors = append(d.Filter.Sectors, filter.Sectors...)
	}
	if d.Symbols == nil {
		d.Symbols = []string{}
	}

	d.SectorReturns = SectorReturns(filtered)
	if len(d.SectorReturns) == 0 {
		d.Warnings = append(d.Warnings, Warning{View: ViewSectorReturns, Message: "no rows carry a sector"})
	}

	d.Correlation = Correlation(filtered)
	if d.Correlation == nil {
		d.Warnings = append(d.Warnings, Warning{View: ViewCorrelation, Message: "not enough data: at least two symbols are required"})
	}

	d.TopVolatility = TopVolatility(filtered, TopVolatileCount)
	d.TopPerformers = TopPerformers(filtered, TopPerformerCount)
	d.Monthly = MonthlyRanking(filtered, MoversPerMonth)

	if d.Warnings == nil {
		d.Warnings = []Warning{}
	}
	return d
}

// SkippedViews returns the views a dashboard omitted.
func (d *Dashboard) SkippedViews() []string {
	var out []string
	for _, w := range d.Warnings {
		if w.View != ViewInput {
			out = append(out, w.View)
		}
	}
	return out
}
