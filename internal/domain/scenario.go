package domain

import "strings"

// ScenarioDefRow is one row of the scenario definitions table: the variant
// selected for every override category in one (case, planning year).
type ScenarioDefRow struct {
	CaseID    string
	Year      int
	Selection map[string]string // category -> variant name
}

// ScenarioDefTable holds the parsed scenario definitions file. Categories
// preserves the column order of the source table so that override
// application and error reporting are deterministic.
type ScenarioDefTable struct {
	Categories []string
	Rows       []ScenarioDefRow
}

// Years returns the distinct planning years in row order.
func (t *ScenarioDefTable) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, row := range t.Rows {
		if !seen[row.Year] {
			seen[row.Year] = true
			years = append(years, row.Year)
		}
	}
	return years
}

// CaseIDs returns the distinct case ids in row order.
func (t *ScenarioDefTable) CaseIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, row := range t.Rows {
		if !seen[row.CaseID] {
			seen[row.CaseID] = true
			ids = append(ids, row.CaseID)
		}
	}
	return ids
}

// Row returns the definition row for a (case, year) pair, if present.
func (t *ScenarioDefTable) Row(caseID string, year int) (ScenarioDefRow, bool) {
	for _, row := range t.Rows {
		if row.CaseID == caseID && row.Year == year {
			return row, true
		}
	}
	return ScenarioDefRow{}, false
}

// CaseNameMap maps a case id to its human-readable name, whitespace already
// normalized to underscores.
type CaseNameMap map[string]string

// NormalizeCaseName collapses whitespace in a case description to single
// underscores, the form used in output folder names.
func NormalizeCaseName(name string) string {
	return strings.Join(strings.Fields(name), "_")
}
