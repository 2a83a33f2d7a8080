// Package analytics derives per-symbol return and volatility series from
// the merged price table and shapes them into the dashboard views.
//
// The pipeline is a chain of pure stages:
//
//	ParsePrices -> Derive -> ApplyFilter -> views
//
// Derivation always runs on the full merged table. The optional sector
// filter then restricts the working rows, and every view is computed from
// the restricted rows.
//
// Null handling:
//   - DailyReturn is null on the first row of each symbol, and when the
//     previous close is zero.
//   - CumulativeReturn is null wherever DailyReturn is null. Other rows
//     hold the product of (1 + DailyReturn) over the non-null returns seen
//     so far, so a null return never resets the product.
//   - AverageReturn and Volatility are null when a symbol has too few
//     returns (one and two respectively).
package analytics
