package dataset

import (
	"strings"
	"unicode"

	apperrors "stockdash/internal/errors"
)

// NormalizeLabel trims surrounding whitespace and title-cases the label:
// the first cased letter after any uncased character is upper case, every
// other cased letter is lower case ("symbol " -> "Symbol",
// "daily_return" -> "Daily_Return").
func NormalizeLabel(label string) string {
	label = strings.TrimSpace(label)

	var b strings.Builder
	b.Grow(len(label))

	prevCased := false
	for _, r := range label {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case cased && prevCased:
			b.WriteRune(unicode.ToLower(r))
		case cased:
			b.WriteRune(unicode.ToTitle(r))
		default:
			b.WriteRune(r)
		}
		prevCased = cased
	}
	return b.String()
}

// NormalizeColumns returns a frame over the same rows with every column
// label normalized.
func NormalizeColumns(f *Frame) *Frame {
	columns := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		columns[i] = NormalizeLabel(c)
	}
	return f.WithColumns(columns)
}

// RequireColumn fails with a MissingKeyError when the column is absent.
func RequireColumn(f *Frame, column, source string) error {
	if f == nil || !f.HasColumn(column) {
		return apperrors.NewMissingKeyError(column, source)
	}
	return nil
}
