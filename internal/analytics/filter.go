package analytics

// SectorFilter is the user's sector multi-select. A nil filter means the
// filter was not applied.
type SectorFilter struct {
	Sectors []string `json:"sectors" validate:"dive,required,max=256"`
}

// NewSectorFilter returns a filter selecting the given sectors.
func NewSectorFilter(sectors ...string) *SectorFilter {
	return &SectorFilter{Sectors: append([]string{}, sectors...)}
}

// AvailableSectors returns the distinct non-null sectors of the series in
// order of first appearance.
func AvailableSectors(s *Series) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, row := range s.Rows {
		if !row.Sector.Valid {
			continue
		}
		if _, ok := seen[row.Sector.String]; ok {
			continue
		}
		seen[row.Sector.String] = struct{}{}
		out = append(out, row.Sector.String)
	}
	return out
}

// ApplyFilter restricts the series to rows whose sector is selected. It
// reports whether the filter changed anything: a nil filter, or one that
// selects every available sector, returns the series unchanged.
func ApplyFilter(s *Series, f *SectorFilter) (*Series, bool) {
	if f == nil {
		return s, false
	}

	selected := make(map[string]struct{}, len(f.Sectors))
	for _, sector := range f.Sectors {
		selected[sector] = struct{}{}
	}

	coversAll := true
	available := AvailableSectors(s)
	for _, sector := range available {
		if _, ok := selected[sector]; !ok {
			coversAll = false
			break
		}
	}
	if coversAll && len(available) > 0 {
		return s, false
	}

	out := &Series{
		Stats:    s.Stats,
		Warnings: s.Warnings,
		Rows:     make([]Observation, 0, len(s.Rows)),
	}
	for _, row := range s.Rows {
		if !row.Sector.Valid {
			continue
		}
		if _, ok := selected[row.Sector.String]; ok {
			out.Rows = append(out.Rows, row)
		}
	}

	return out, true
}
