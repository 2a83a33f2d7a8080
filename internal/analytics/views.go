package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SectorReturns averages AverageReturn over the rows of each sector and
// orders sectors by that mean, highest first. Rows without a sector are
// ignored.
func SectorReturns(s *Series) []SectorReturn {
	var order []string
	values := make(map[string][]float64)
	for _, row := range s.Rows {
		if !row.Sector.Valid {
			continue
		}
		name := row.Sector.String
		if _, ok := values[name]; !ok {
			order = append(order, name)
			values[name] = []float64{}
		}
		if row.AverageReturn.Valid {
			values[name] = append(values[name], row.AverageReturn.Float64)
		}
	}

	ranked := make([]SymbolValue, 0, len(order))
	for _, name := range order {
		v := SymbolValue{Symbol: name}
		if len(values[name]) > 0 {
			v.Value = finite(stat.Mean(values[name], nil))
		}
		ranked = append(ranked, v)
	}
	sortValues(ranked, lessDesc)

	out := make([]SectorReturn, len(ranked))
	for i, v := range ranked {
		out[i] = SectorReturn{Sector: v.Symbol, AverageReturn: v.Value}
	}
	return out
}

// Correlation pivots closing prices into a Date x Symbol grid and returns
// the pairwise Pearson correlation of the symbol columns. Each pair uses
// only the dates on which both symbols have a price. Cells sharing a date
// and symbol are averaged. It returns nil when fewer than two symbols are
// present.
func Correlation(s *Series) *CorrelationMatrix {
	symbols := s.Symbols()
	if len(symbols) < 2 {
		return nil
	}

	column := make(map[string]int, len(symbols))
	for i, symbol := range symbols {
		column[symbol] = i
	}

	type cell struct {
		sum   float64
		count int
	}
	grid := make(map[time.Time][]cell)
	var dates []time.Time
	for _, row := range s.Rows {
		cells, ok := grid[row.Date]
		if !ok {
			cells = make([]cell, len(symbols))
			grid[row.Date] = cells
			dates = append(dates, row.Date)
		}
		c := &cells[column[row.Symbol]]
		c.sum += row.Close
		c.count++
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	matrix := &CorrelationMatrix{
		Symbols: symbols,
		Values:  make([][]null.Float, len(symbols)),
	}
	for i := range matrix.Values {
		matrix.Values[i] = make([]null.Float, len(symbols))
		matrix.Values[i][i] = null.FloatFrom(1)
	}

	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			var x, y []float64
			for _, date := range dates {
				a, b := grid[date][i], grid[date][j]
				if a.count == 0 || b.count == 0 {
					continue
				}
				x = append(x, a.sum/float64(a.count))
				y = append(y, b.sum/float64(b.count))
			}

			var r null.Float
			if len(x) >= 2 {
				if v := stat.Correlation(x, y, nil); !math.IsNaN(v) && !math.IsInf(v, 0) {
					r = null.FloatFrom(v)
				}
			}
			matrix.Values[i][j] = r
			matrix.Values[j][i] = r
		}
	}

	return matrix
}

// TopVolatility ranks the symbols present in s by annualized volatility,
// highest first, and keeps the first n.
func TopVolatility(s *Series, n int) []SymbolValue {
	symbols := s.Symbols()
	out := make([]SymbolValue, 0, len(symbols))
	for _, symbol := range symbols {
		out = append(out, SymbolValue{Symbol: symbol, Value: s.Stats[symbol].Volatility})
	}
	sortValues(out, lessDesc)
	return head(out, n)
}

// TopPerformers ranks the symbols present in s by their final cumulative
// return, highest first, and returns the cumulative return line of the
// first n.
func TopPerformers(s *Series, n int) []PerformerSeries {
	symbols := s.Symbols()
	ranked := make([]SymbolValue, 0, len(symbols))
	for _, symbol := range symbols {
		ranked = append(ranked, SymbolValue{Symbol: symbol, Value: s.Stats[symbol].FinalReturn})
	}
	sortValues(ranked, lessDesc)
	ranked = head(ranked, n)

	index := make(map[string]int, len(ranked))
	out := make([]PerformerSeries, len(ranked))
	for i, v := range ranked {
		index[v.Symbol] = i
		out[i] = PerformerSeries{Symbol: v.Symbol, FinalReturn: v.Value, Points: []Point{}}
	}

	for _, row := range s.Rows {
		i, ok := index[row.Symbol]
		if !ok {
			continue
		}
		out[i].Points = append(out[i].Points, Point{Date: row.Date, Value: row.CumulativeReturn})
	}

	return out
}

// MonthlyRanking sums DailyReturn per calendar month and symbol, treating
// null returns as zero, and lists the n highest and n lowest sums of each
// month. A month with fewer than 2n symbols is split so that no symbol is
// both a gainer and a loser. The result always has twelve entries.
func MonthlyRanking(s *Series, n int) []MonthlyMovers {
	sums := make([]map[string][]float64, 12)
	for i := range sums {
		sums[i] = make(map[string][]float64)
	}
	for _, row := range s.Rows {
		m := int(row.Date.Month()) - 1
		sums[m][row.Symbol] = append(sums[m][row.Symbol], row.DailyReturn.ValueOrZero())
	}

	out := make([]MonthlyMovers, 12)
	for m := range out {
		totals := make([]SymbolValue, 0, len(sums[m]))
		for symbol, returns := range sums[m] {
			totals = append(totals, SymbolValue{Symbol: symbol, Value: finite(floats.Sum(returns))})
		}
		sortValues(totals, lessDesc)

		gainers := min(n, (len(totals)+1)/2)
		losers := min(n, len(totals)-gainers)

		low := append([]SymbolValue{}, totals[len(totals)-losers:]...)
		sortValues(low, lessAsc)

		out[m] = MonthlyMovers{
			Month:   m + 1,
			Gainers: append([]SymbolValue{}, totals[:gainers]...),
			Losers:  low,
		}
	}

	return out
}
