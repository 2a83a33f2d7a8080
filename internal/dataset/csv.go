package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/guregu/null/v6"

	apperrors "stockdash/internal/errors"
)

// naValues are the cell texts read as missing, matching the usual
// dataframe reader defaults.
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

const utf8BOM = "\ufeff"

// IsNA reports whether a raw cell text is read as missing.
func IsNA(s string) bool {
	_, ok := naValues[s]
	return ok
}

// ReadCSV parses a header row followed by data rows. Short rows are padded
// with nulls; rows longer than the header are rejected. Empty header cells
// are named "Unnamed: <index>".
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewParsingError("csv input is empty", nil)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read csv header", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		columns[i] = h
	}

	frame := NewFrame(columns...)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read csv row", err)
		}
		if len(record) > len(columns) {
			line, _ := reader.FieldPos(0)
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("line %d: expected %d fields, saw %d", line, len(columns), len(record)), nil)
		}

		cells := make([]null.String, len(columns))
		for i, v := range record {
			cells[i] = null.NewString(v, !IsNA(v))
		}
		frame.Rows = append(frame.Rows, cells)
	}

	return frame, nil
}

// ReadCSVFile reads the CSV file at path.
func ReadCSVFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFoundError(path)
		}
		return nil, apperrors.NewParsingError("failed to open csv file", err).WithContext("path", path)
	}
	defer file.Close()

	frame, err := ReadCSV(file)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("path", path)
		}
		return nil, err
	}
	return frame, nil
}
