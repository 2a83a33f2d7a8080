package dataset

import (
	"github.com/guregu/null/v6"

	apperrors "stockdash/internal/errors"
)

// Well-known column labels after normalization.
const (
	KeyColumn    = "Symbol"
	SectorColumn = "Sector"
	DateColumn   = "Date"
	CloseColumn  = "Close"
)

// Input names used in error messages.
const (
	PricesSource  = "prices"
	SectorsSource = "sectors"
)

// Suffixes added to non-key columns present in both sides of a join.
const (
	LeftSuffix  = "_x"
	RightSuffix = "_y"
)

// MergeSectors normalizes both inputs, checks the join key on each and
// left-joins the sector mapping onto the prices. Every price row is kept.
// When the key is missing from either input a MissingKeyError naming every
// offending input is returned and no merge is attempted.
func MergeSectors(prices, sectors *Frame) (*Frame, error) {
	prices = NormalizeColumns(prices)
	sectors = NormalizeColumns(sectors)

	var missing []string
	if RequireColumn(prices, KeyColumn, PricesSource) != nil {
		missing = append(missing, PricesSource)
	}
	if RequireColumn(sectors, KeyColumn, SectorsSource) != nil {
		missing = append(missing, SectorsSource)
	}
	if len(missing) > 0 {
		return nil, apperrors.NewMissingKeyError(KeyColumn, missing...)
	}

	return LeftJoin(prices, sectors, KeyColumn), nil
}

// LeftJoin keeps every row of left in order and appends, for each, the
// columns of every matching right row in right's order. Rows without a
// match get null right cells. Null keys never match.
func LeftJoin(left, right *Frame, key string) *Frame {
	leftKey := left.Index(key)
	rightKey := right.Index(key)

	// Right columns other than the key, in order.
	var rightCols []int
	for i := range right.Columns {
		if i != rightKey {
			rightCols = append(rightCols, i)
		}
	}

	overlap := make(map[string]bool)
	for _, i := range rightCols {
		name := right.Columns[i]
		for j, l := range left.Columns {
			if j != leftKey && l == name {
				overlap[name] = true
			}
		}
	}

	columns := make([]string, 0, len(left.Columns)+len(rightCols))
	for i, c := range left.Columns {
		if i != leftKey && overlap[c] {
			c += LeftSuffix
		}
		columns = append(columns, c)
	}
	for _, i := range rightCols {
		c := right.Columns[i]
		if overlap[c] {
			c += RightSuffix
		}
		columns = append(columns, c)
	}

	index := make(map[string][]int, right.Len())
	for r, row := range right.Rows {
		k := row[rightKey]
		if !k.Valid {
			continue
		}
		index[k.String] = append(index[k.String], r)
	}

	out := &Frame{Columns: columns, Rows: make([][]null.String, 0, left.Len())}
	for _, lrow := range left.Rows {
		var matches []int
		if k := lrow[leftKey]; k.Valid {
			matches = index[k.String]
		}

		if len(matches) == 0 {
			row := make([]null.String, len(columns))
			copy(row, lrow)
			out.Rows = append(out.Rows, row)
			continue
		}

		for _, r := range matches {
			row := make([]null.String, len(columns))
			copy(row, lrow)
			for j, i := range rightCols {
				row[len(left.Columns)+j] = right.Rows[r][i]
			}
			out.Rows = append(out.Rows, row)
		}
	}

	return out
}
