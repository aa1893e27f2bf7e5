package scenario

import (
	"fmt"

	"github.com/gridwright/powerprep/internal/domain"
)

// Builder expands a base settings object across every (planning year, case)
// pair in a scenario definitions table. The base settings are treated as an
// immutable template: each case gets a fresh deep copy with its overrides
// merged in, so no state leaks between cases.
type Builder struct {
	base      domain.Settings
	caseNames domain.CaseNameMap
}

// NewBuilder creates a builder over an immutable base settings template and
// a case id -> name map.
func NewBuilder(base domain.Settings, caseNames domain.CaseNameMap) *Builder {
	return &Builder{base: base, caseNames: caseNames}
}

// planningPeriods pairs each model year with the first year of its
// investment horizon, from the parallel model_year and
// model_first_planning_year settings lists.
func (b *Builder) planningPeriods() (map[int]int, error) {
	years, ok := b.base.IntSlice(domain.KeyModelYear)
	if !ok {
		return nil, fmt.Errorf("settings parameter %q is required", domain.KeyModelYear)
	}
	startYears, ok := b.base.IntSlice(domain.KeyFirstPlanningYear)
	if !ok {
		return nil, fmt.Errorf("settings parameter %q is required", domain.KeyFirstPlanningYear)
	}
	if len(years) != len(startYears) {
		return nil, fmt.Errorf("settings parameter %q has %d entries but %q has %d; they must be year-aligned",
			domain.KeyModelYear, len(years), domain.KeyFirstPlanningYear, len(startYears))
	}
	periods := make(map[int]int, len(years))
	for i, year := range years {
		periods[year] = startYears[i]
	}
	return periods, nil
}

// Build resolves one settings object per (year, case id) pair present in
// the scenario definitions table, keyed by year then case id.
//
// For each case the scenario-definition cells are first written onto the
// settings as plain labels (category name -> selected variant). Then every
// category's selected variant is looked up in settings_management and its
// patch merged in. A category with no entry for the case, or a variant with
// no patch defined, is simply not overridden for that case. Two categories
// patching the same top-level settings key within one case is an authoring
// error and aborts the build. A patch key colliding with a variant label is
// allowed; the patch wins.
func (b *Builder) Build(defs *domain.ScenarioDefTable) (map[int]map[string]domain.Settings, error) {
	periods, err := b.planningPeriods()
	if err != nil {
		return nil, err
	}
	management, _ := b.base.Map(domain.KeySettingsManagement)

	resolved := make(map[int]map[string]domain.Settings)
	for _, year := range defs.Years() {
		startYear, ok := periods[year]
		if !ok {
			return nil, fmt.Errorf("scenario definitions include year %d, which is not in the settings parameter %q", year, domain.KeyModelYear)
		}
		yearManagement, _ := asMap(management[domain.YearKey(year)])

		resolved[year] = make(map[string]domain.Settings)
		for _, caseID := range defs.CaseIDs() {
			row, ok := defs.Row(caseID, year)
			if !ok {
				continue
			}
			settings, err := b.buildCase(row, yearManagement, defs.Categories)
			if err != nil {
				return nil, err
			}
			settings[domain.KeyFirstPlanningYear] = startYear
			settings[domain.KeyModelYear] = year

			name, ok := b.caseNames[caseID]
			if !ok {
				return nil, fmt.Errorf("case id %q has no entry in the case description table", caseID)
			}
			settings[domain.KeyCaseName] = name

			resolved[year][caseID] = settings
		}
	}
	return resolved, nil
}

// buildCase resolves the settings for a single (case, year) row.
func (b *Builder) buildCase(row domain.ScenarioDefRow, yearManagement map[string]any, categories []string) (domain.Settings, error) {
	settings := b.base.DeepCopy()
	settings[domain.KeyCaseID] = row.CaseID
	settings["year"] = row.Year
	for category, variant := range row.Selection {
		settings[category] = variant
	}

	// Every top-level key a category patch introduces is recorded so a
	// second category touching the same key fails fast instead of
	// silently last-write-winning over an authoring mistake.
	patchedBy := make(map[string]string)
	for _, category := range categories {
		variant, ok := row.Selection[category]
		if !ok {
			continue
		}
		categoryManagement, ok := asMap(yearManagement[category])
		if !ok {
			continue
		}
		patch, ok := asMap(categoryManagement[variant])
		if !ok {
			continue
		}
		for key := range patch {
			if prev, dup := patchedBy[key]; dup {
				return nil, fmt.Errorf("settings key %q is modified twice in case id %s year %d (categories %q and %q)",
					key, row.CaseID, row.Year, prev, category)
			}
			patchedBy[key] = category
		}
		settings = MergeSettings(settings, patch)
	}
	return settings, nil
}
