package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"
)

var annualizeVolatility = math.Sqrt(TradingDaysPerYear)

// SortRows orders rows by Symbol, then Date. Equal keys keep input order.
func SortRows(rows []PriceRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Symbol != rows[j].Symbol {
			return rows[i].Symbol < rows[j].Symbol
		}
		return rows[i].Date.Before(rows[j].Date)
	})
}

// Derive computes the per-row and per-symbol statistics. The input slice
// is not modified.
func Derive(rows []PriceRow) *Series {
	sorted := make([]PriceRow, len(rows))
	copy(sorted, rows)
	SortRows(sorted)

	series := &Series{
		Rows:  make([]Observation, len(sorted)),
		Stats: make(map[string]SymbolStats),
	}

	var skipped returnSkips
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end].Symbol == sorted[start].Symbol {
			end++
		}

		stats, skips := deriveSymbol(sorted[start:end], series.Rows[start:end])
		series.Stats[stats.Symbol] = stats
		skipped.zeroCloses += skips.zeroCloses
		skipped.overflows += skips.overflows

		start = end
	}

	if skipped.zeroCloses > 0 {
		series.Warnings = append(series.Warnings, Warning{
			View:    ViewInput,
			Message: fmt.Sprintf("%d daily returns left empty after a zero close", skipped.zeroCloses),
		})
	}
	if skipped.overflows > 0 {
		series.Warnings = append(series.Warnings, Warning{
			View:    ViewInput,
			Message: fmt.Sprintf("%d daily returns left empty because they are not finite", skipped.overflows),
		})
	}

	return series
}

// returnSkips counts daily returns that could not be computed.
type returnSkips struct {
	zeroCloses int
	overflows  int
}

// finite wraps v, mapping NaN and ±Inf to null.
func finite(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

// deriveSymbol fills out for the date-ordered rows of one symbol.
func deriveSymbol(rows []PriceRow, out []Observation) (SymbolStats, returnSkips) {
	returns := make([]float64, 0, len(rows))
	var skips returnSkips

	product := 1.0
	for i, row := range rows {
		out[i].PriceRow = row
		if i == 0 {
			continue
		}

		prev := rows[i-1].Close
		if prev == 0 {
			skips.zeroCloses++
			continue
		}

		r := row.Close/prev - 1
		if math.IsNaN(r) || math.IsInf(r, 0) {
			skips.overflows++
			continue
		}
		returns = append(returns, r)
		product *= 1 + r

		out[i].DailyReturn = null.FloatFrom(r)
		out[i].CumulativeReturn = finite(product)
	}

	stats := SymbolStats{
		Symbol:       rows[0].Symbol,
		Observations: len(rows),
	}

	if len(returns) > 0 {
		stats.AverageReturn = finite(stat.Mean(returns, nil) * TradingDaysPerYear)
		stats.FinalReturn = finite(product)
	}
	if len(returns) > 1 {
		stats.Volatility = finite(stat.StdDev(returns, nil) * annualizeVolatility)
	}

	for i := range out {
		out[i].AverageReturn = stats.AverageReturn
	}

	return stats, skips
}
