package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// PricesCSV is a small price file with three symbols across two months.
// Labels carry stray whitespace and lower case on purpose.
const PricesCSV = ` symbol ,date,close,volume
AAA,01-01-2024 10:00,100,1000
AAA,02-01-2024 10:00,110,1100
AAA,03-01-2024 10:00,99,900
BBB,01-01-2024 10:00,50,500
BBB,02-01-2024 10:00,55,550
BBB,01-02-2024 10:00,44,400
CCC,01-01-2024 10:00,20,200
CCC,02-01-2024 10:00,21,210
CCC,01-02-2024 10:00,22,220
`

// SectorsCSV maps two of the three symbols in PricesCSV.
const SectorsCSV = `Symbol,Sector
AAA,Banking
BBB,Telecom
`

// WriteFile writes content to name inside a fresh temporary directory and
// returns the full path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
