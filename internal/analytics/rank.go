package analytics

import "sort"

// lessDesc orders valid values descending with nulls last, then by key.
func lessDesc(a, b SymbolValue) bool {
	switch {
	case a.Value.Valid && !b.Value.Valid:
		return true
	case !a.Value.Valid && b.Value.Valid:
		return false
	case a.Value.Valid && a.Value.Float64 != b.Value.Float64:
		return a.Value.Float64 > b.Value.Float64
	}
	return a.Symbol < b.Symbol
}

// lessAsc orders valid values ascending with nulls last, then by key.
func lessAsc(a, b SymbolValue) bool {
	switch {
	case a.Value.Valid && !b.Value.Valid:
		return true
	case !a.Value.Valid && b.Value.Valid:
		return false
	case a.Value.Valid && a.Value.Float64 != b.Value.Float64:
		return a.Value.Float64 < b.Value.Float64
	}
	return a.Symbol < b.Symbol
}

func sortValues(values []SymbolValue, less func(a, b SymbolValue) bool) {
	sort.SliceStable(values, func(i, j int) bool { return less(values[i], values[j]) })
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
