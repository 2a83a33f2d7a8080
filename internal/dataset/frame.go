package dataset

import (
	"github.com/guregu/null/v6"
)

// Frame is an ordered set of labelled columns over rows of nullable cells.
type Frame struct {
	Columns []string
	Rows    [][]null.String
}

// NewFrame creates an empty frame with the given column labels.
func NewFrame(columns ...string) *Frame {
	return &Frame{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Width returns the number of columns.
func (f *Frame) Width() int {
	return len(f.Columns)
}

// Index returns the position of the first column labelled name, or -1.
func (f *Frame) Index(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether a column labelled name exists.
func (f *Frame) HasColumn(name string) bool {
	return f.Index(name) >= 0
}

// Column returns a copy of the named column's cells.
func (f *Frame) Column(name string) ([]null.String, bool) {
	idx := f.Index(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]null.String, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Value returns the cell at row i in the named column. Unknown columns
// yield a null cell.
func (f *Frame) Value(i int, name string) null.String {
	idx := f.Index(name)
	if idx < 0 {
		return null.String{}
	}
	return f.Rows[i][idx]
}

// AppendRow adds a row, padding with nulls or truncating to the frame width.
func (f *Frame) AppendRow(cells ...null.String) {
	row := make([]null.String, len(f.Columns))
	copy(row, cells)
	f.Rows = append(f.Rows, row)
}

// AppendStrings adds a row of text cells; empty strings become null.
func (f *Frame) AppendStrings(values ...string) {
	cells := make([]null.String, len(values))
	for i, v := range values {
		cells[i] = null.NewString(v, v != "")
	}
	f.AppendRow(cells...)
}

// WithColumns returns a frame sharing the rows of f under new labels.
func (f *Frame) WithColumns(columns []string) *Frame {
	return &Frame{Columns: columns, Rows: f.Rows}
}

// Records returns the rows as plain strings with nulls rendered empty.
func (f *Frame) Records() [][]string {
	out := make([][]string, len(f.Rows))
	for i, row := range f.Rows {
		rec := make([]string, len(row))
		for j, cell := range row {
			rec[j] = cell.ValueOrZero()
		}
		out[i] = rec
	}
	return out
}
