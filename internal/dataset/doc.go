// Package dataset holds the tabular model shared by the loader and the
// dashboard: a Frame of nullable text cells read from CSV, column label
// normalization, the required key check and the sector left join.
//
// Cells stay text until a consumer needs a typed view. That keeps
// pass-through columns byte-for-byte identical between the input files,
// the persisted table and the flat export.
package dataset
