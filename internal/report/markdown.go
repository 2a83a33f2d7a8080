// Package report renders a dashboard as a markdown summary for the
// terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"stockdash/internal/analytics"
)

// Markdown generates the markdown summary of a dashboard.
func Markdown(d *analytics.Dashboard) string {
	r := &mdRenderer{Builder: &strings.Builder{}}

	r.renderHeader(d)
	r.renderSectorReturns(d.SectorReturns)
	r.renderCorrelation(d.Correlation)
	r.renderSymbolValues("Top 10 Most Volatile Symbols", "Volatility", d.TopVolatility)
	r.renderPerformers(d.TopPerformers)
	r.renderMonthly(d.Monthly)
	r.renderWarnings(d.Warnings)

	return r.String()
}

// mdRenderer accumulates markdown in its builder.
type mdRenderer struct {
	*strings.Builder
}

// Printf formats according to a format specifier and writes to the buffer.
func (r *mdRenderer) Printf(format string, args ...any) {
	fmt.Fprintf(r, format, args...)
}

func (r *mdRenderer) renderHeader(d *analytics.Dashboard) {
	r.Printf("# Stock Dashboard\n\n")

	filter := "all sectors"
	if d.Filter.Applied {
		filter = strings.Join(d.Filter.Sectors, ", ")
		if filter == "" {
			filter = "none selected"
		}
	}

	r.Printf("- **Sector filter:** %s\n", filter)
	r.Printf("- **Symbols:** %d\n", len(d.Symbols))
	r.Printf("- **Rows:** %d", d.RowCount)
	if d.DroppedRows > 0 {
		r.Printf(" (%d dropped)", d.DroppedRows)
	}
	r.Printf("\n\n")
}

func (r *mdRenderer) renderSectorReturns(rows []analytics.SectorReturn) {
	r.Printf("## Average Annualized Return by Sector\n\n")
	if len(rows) == 0 {
		r.Printf("_No sector data._\n\n")
		return
	}

	r.Printf("| Sector | Average Return |\n")
	r.Printf("|:---|---:|\n")
	for _, s := range rows {
		r.Printf("| %s | %s |\n", escape(s.Sector), percent(s.AverageReturn))
	}
	r.Printf("\n")
}

func (r *mdRenderer) renderCorrelation(m *analytics.CorrelationMatrix) {
	r.Printf("## Correlation of Closing Prices\n\n")
	if m == nil {
		r.Printf("_Skipped: at least two symbols are required._\n\n")
		return
	}

	r.Printf("| |")
	for _, s := range m.Symbols {
		r.Printf(" %s |", escape(s))
	}
	r.Printf("\n|:---|%s\n", strings.Repeat("---:|", len(m.Symbols)))

	for i, s := range m.Symbols {
		r.Printf("| **%s** |", escape(s))
		for _, v := range m.Values[i] {
			r.Printf(" %s |", decimal(v))
		}
		r.Printf("\n")
	}
	r.Printf("\n")
}

func (r *mdRenderer) renderSymbolValues(title, column string, values []analytics.SymbolValue) {
	r.Printf("## %s\n\n", title)
	if len(values) == 0 {
		r.Printf("_No symbols._\n\n")
		return
	}

	r.Printf("| # | Symbol | %s |\n", column)
	r.Printf("|---:|:---|---:|\n")
	for i, v := range values {
		r.Printf("| %d | %s | %s |\n", i+1, escape(v.Symbol), percent(v.Value))
	}
	r.Printf("\n")
}

func (r *mdRenderer) renderPerformers(performers []analytics.PerformerSeries) {
	r.Printf("## Top 5 Performing Symbols\n\n")
	if len(performers) == 0 {
		r.Printf("_No symbols._\n\n")
		return
	}

	r.Printf("| # | Symbol | Cumulative Return | First | Last |\n")
	r.Printf("|---:|:---|---:|:---|:---|\n")
	for i, p := range performers {
		first, last := "", ""
		if n := len(p.Points); n > 0 {
			first = p.Points[0].Date.Format(analytics.DateLayout)
			last = p.Points[n-1].Date.Format(analytics.DateLayout)
		}
		r.Printf("| %d | %s | %s | %s | %s |\n", i+1, escape(p.Symbol), decimal(p.FinalReturn), first, last)
	}
	r.Printf("\n")
}

func (r *mdRenderer) renderMonthly(months []analytics.MonthlyMovers) {
	r.Printf("## Monthly Gainers and Losers\n\n")

	shown := false
	for _, m := range months {
		if len(m.Gainers) == 0 && len(m.Losers) == 0 {
			continue
		}
		shown = true

		r.Printf("### %s\n\n", time.Month(m.Month))
		r.Printf("| Gainer | Sum | Loser | Sum |\n")
		r.Printf("|:---|---:|:---|---:|\n")
		for k := 0; k < max(len(m.Gainers), len(m.Losers)); k++ {
			var g, gv, l, lv string
			if k < len(m.Gainers) {
				g, gv = escape(m.Gainers[k].Symbol), percent(m.Gainers[k].Value)
			}
			if k < len(m.Losers) {
				l, lv = escape(m.Losers[k].Symbol), percent(m.Losers[k].Value)
			}
			r.Printf("| %s | %s | %s | %s |\n", g, gv, l, lv)
		}
		r.Printf("\n")
	}

	if !shown {
		r.Printf("_No monthly data._\n\n")
	}
}

func (r *mdRenderer) renderWarnings(warnings []analytics.Warning) {
	if len(warnings) == 0 {
		return
	}

	r.Printf("## Warnings\n\n")
	for _, w := range warnings {
		r.Printf("- **%s:** %s\n", w.View, w.Message)
	}
	r.Printf("\n")
}

func percent(v null.Float) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v.Float64*100)
}

func decimal(v null.Float) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v.Float64)
}

// escape keeps pipes inside labels from breaking table cells.
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
