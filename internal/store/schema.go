package store

import (
	"fmt"
	"strconv"
	"strings"

	"stockdash/internal/dataset"
)

// ColumnType is the inferred storage class of a column.
type ColumnType int

const (
	TypeInteger ColumnType = iota
	TypeReal
	TypeText
)

// String returns the name of the column type.
func (t ColumnType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeReal:
		return "real"
	default:
		return "text"
	}
}

// Column is one column of an inferred table schema.
type Column struct {
	Name string
	Type ColumnType
}

// InferSchema derives the table schema of f. Repeated labels get a ".N"
// suffix so every column name is unique. A column whose cells are all null
// is stored as real.
func InferSchema(f *dataset.Frame) []Column {
	schema := make([]Column, len(f.Columns))
	seen := make(map[string]int, len(f.Columns))

	for i, name := range f.Columns {
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}

		schema[i] = Column{Name: name, Type: inferType(f, i)}
	}

	return schema
}

func inferType(f *dataset.Frame, col int) ColumnType {
	t := TypeInteger
	for _, row := range f.Rows {
		cell := row[col]
		if !cell.Valid {
			continue
		}

		v := strings.TrimSpace(cell.String)
		if t == TypeInteger {
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				continue
			}
			t = TypeReal
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return TypeText
		}
	}

	if t == TypeInteger && !hasValue(f, col) {
		return TypeReal
	}
	return t
}

func hasValue(f *dataset.Frame, col int) bool {
	for _, row := range f.Rows {
		if row[col].Valid {
			return true
		}
	}
	return false
}

// ConvertRows converts the cells of f into driver values for schema. Null
// cells become nil.
func ConvertRows(f *dataset.Frame, schema []Column) [][]any {
	out := make([][]any, len(f.Rows))
	for r, row := range f.Rows {
		values := make([]any, len(schema))
		for c, column := range schema {
			cell := row[c]
			if !cell.Valid {
				continue
			}

			v := strings.TrimSpace(cell.String)
			switch column.Type {
			case TypeInteger:
				values[c], _ = strconv.ParseInt(v, 10, 64)
			case TypeReal:
				values[c], _ = strconv.ParseFloat(v, 64)
			default:
				values[c] = cell.String
			}
		}
		out[r] = values
	}
	return out
}

// ColumnNames returns the names of schema in order.
func ColumnNames(schema []Column) []string {
	names := make([]string, len(schema))
	for i, c := range schema {
		names[i] = c.Name
	}
	return names
}
