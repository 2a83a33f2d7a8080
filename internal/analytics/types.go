package analytics

import (
	"time"

	"github.com/guregu/null/v6"
)

const (
	// TradingDaysPerYear annualizes daily statistics.
	TradingDaysPerYear = 252

	TopVolatileCount  = 10
	TopPerformerCount = 5
	MoversPerMonth    = 5

	// DateLayout is the canonical DD-MM-YYYY HH:MM date literal.
	DateLayout = "02-01-2006 15:04"
)

// View names used in warnings and metrics.
const (
	ViewSectorReturns = "sector_returns"
	ViewCorrelation   = "correlation"
	ViewTopVolatility = "top_volatility"
	ViewTopPerformers = "top_performers"
	ViewMonthly       = "monthly_movers"
	ViewInput         = "input"
)

// PriceRow is one parsed price record.
type PriceRow struct {
	Symbol string
	Sector null.String
	Date   time.Time
	Close  float64
}

// Observation is a price row with its derived fields.
type Observation struct {
	PriceRow
	DailyReturn      null.Float
	AverageReturn    null.Float
	CumulativeReturn null.Float
}

// SymbolStats are the per-symbol scalars of a derived series.
type SymbolStats struct {
	Symbol        string
	Observations  int
	AverageReturn null.Float
	Volatility    null.Float
	FinalReturn   null.Float
}

// Series is the derived table, ordered by (Symbol, Date).
type Series struct {
	Rows     []Observation
	Stats    map[string]SymbolStats
	Warnings []Warning
}

// Symbols returns the distinct symbols of the series in ascending order.
func (s *Series) Symbols() []string {
	var out []string
	for i, r := range s.Rows {
		if i == 0 || s.Rows[i-1].Symbol != r.Symbol {
			out = append(out, r.Symbol)
		}
	}
	return out
}

// Warning explains a dropped row group or a skipped view.
type Warning struct {
	View    string `json:"view"`
	Message string `json:"message"`
}

// SymbolValue pairs a symbol with one number.
type SymbolValue struct {
	Symbol string     `json:"symbol"`
	Value  null.Float `json:"value"`
}

// SectorReturn is one bar of the sector average return chart.
type SectorReturn struct {
	Sector        string     `json:"sector"`
	AverageReturn null.Float `json:"average_return"`
}

// CorrelationMatrix holds pairwise Pearson correlations of closing prices.
// Values[i][j] correlates Symbols[i] with Symbols[j].
type CorrelationMatrix struct {
	Symbols []string       `json:"symbols"`
	Values  [][]null.Float `json:"values"`
}

// Point is one sample of a cumulative return line.
type Point struct {
	Date  time.Time  `json:"date"`
	Value null.Float `json:"value"`
}

// PerformerSeries is the cumulative return line of one top performer.
type PerformerSeries struct {
	Symbol      string     `json:"symbol"`
	FinalReturn null.Float `json:"final_return"`
	Points      []Point    `json:"points"`
}

// MonthlyMovers lists the best and worst summed daily returns of a
// calendar month. Gainers are in descending order, losers ascending.
type MonthlyMovers struct {
	Month   int           `json:"month"`
	Gainers []SymbolValue `json:"gainers"`
	Losers  []SymbolValue `json:"losers"`
}

// FilterState describes the sector filter a dashboard was built with.
type FilterState struct {
	Applied bool     `json:"applied"`
	Sectors []string `json:"sectors"`
}

// Dashboard is the complete set of views.
type Dashboard struct {
	GeneratedAt      time.Time          `json:"generated_at"`
	AvailableSectors []string           `json:"available_sectors"`
	Filter           FilterState        `json:"filter"`
	Symbols          []string           `json:"symbols"`
	RowCount         int                `json:"row_count"`
	DroppedRows      int                `json:"dropped_rows"`
	SectorReturns    []SectorReturn     `json:"sector_returns"`
	Correlation      *CorrelationMatrix `json:"correlation,omitempty"`
	TopVolatility    []SymbolValue      `json:"top_volatility"`
	TopPerformers    []PerformerSeries  `json:"top_performers"`
	Monthly          []MonthlyMovers    `json:"monthly"`
	Warnings         []Warning          `json:"warnings"`
}
