package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableSectors(t *testing.T) {
	series := fixtureSeries(t)
	assert.Equal(t, []string{"Banking", "Telecom"}, AvailableSectors(series))

	assert.Equal(t, []string{}, AvailableSectors(Derive(nil)))
}

func TestApplyFilter(t *testing.T) {
	series := fixtureSeries(t)

	tests := []struct {
		name        string
		filter      *SectorFilter
		wantApplied bool
		wantSymbols []string
	}{
		{name: "unapplied", filter: nil, wantApplied: false, wantSymbols: []string{"AAA", "BBB", "CCC"}},
		{name: "single sector", filter: NewSectorFilter("Banking"), wantApplied: true, wantSymbols: []string{"AAA"}},
		{name: "unknown sector", filter: NewSectorFilter("Energy"), wantApplied: true, wantSymbols: nil},
		{name: "empty selection", filter: NewSectorFilter(), wantApplied: true, wantSymbols: nil},
		{name: "all sectors", filter: NewSectorFilter("Telecom", "Banking"), wantApplied: false, wantSymbols: []string{"AAA", "BBB", "CCC"}},
		{name: "all sectors plus unknown", filter: NewSectorFilter("Telecom", "Banking", "Energy"), wantApplied: false, wantSymbols: []string{"AAA", "BBB", "CCC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered, applied := ApplyFilter(series, tt.filter)
			assert.Equal(t, tt.wantApplied, applied)
			assert.Equal(t, tt.wantSymbols, filtered.Symbols())
		})
	}
}

func TestApplyFilterKeepsDerivedValues(t *testing.T) {
	series := fixtureSeries(t)

	filtered, applied := ApplyFilter(series, NewSectorFilter("Telecom"))
	assert.True(t, applied)
	assert.Len(t, filtered.Rows, 3)

	for _, obs := range filtered.Rows {
		assert.Equal(t, "Telecom", obs.Sector.String)
	}
	assert.Equal(t, series.Stats["BBB"], filtered.Stats["BBB"])
	assert.Len(t, series.Rows, 9)
}
