package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridwright/powerprep/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validSettingsYAML = `
model_year: [2030, 2045]
model_first_planning_year: [2020, 2031]
carbon_tax: 0
fuel_emission_factors:
  naturalgas: 0.05306
settings_management:
  2030:
    ng_price:
      high:
        aeo_fuel_scenarios:
          naturalgas: high_resource
`

func TestInputParser_LoadSettingsFile(t *testing.T) {
	parser := NewInputParser()
	path := writeFile(t, "settings.yml", validSettingsYAML)

	settings, err := parser.LoadSettingsFile(path)
	require.NoError(t, err)

	years, ok := settings.IntSlice(domain.KeyModelYear)
	require.True(t, ok)
	assert.Equal(t, []int{2030, 2045}, years)

	// YAML integer map keys arrive as strings in the untyped bag.
	management, ok := settings.Map(domain.KeySettingsManagement)
	require.True(t, ok)
	assert.Contains(t, management, "2030")

	factors, ok := settings.DecimalMap(domain.KeyEmissionFactors)
	require.True(t, ok)
	assert.True(t, factors["naturalgas"].Equal(decimal.NewFromFloat(0.05306)))
}

func TestInputParser_LoadSettingsFile_MissingFile(t *testing.T) {
	_, err := NewInputParser().LoadSettingsFile("no_such_settings.yml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestInputParser_LoadSettingsFile_BadYAML(t *testing.T) {
	path := writeFile(t, "settings.yml", "model_year: [2030\n")

	_, err := NewInputParser().LoadSettingsFile(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestInputParser_ValidateSettings(t *testing.T) {
	parser := NewInputParser()

	tests := []struct {
		name     string
		settings domain.Settings
		wantErr  string
	}{
		{
			name: "valid",
			settings: domain.Settings{
				"model_year":                []any{2030, 2045},
				"model_first_planning_year": []any{2020, 2031},
			},
		},
		{
			name:     "missing model_year",
			settings: domain.Settings{"model_first_planning_year": []any{2020}},
			wantErr:  "model_year",
		},
		{
			name: "mismatched lengths",
			settings: domain.Settings{
				"model_year":                []any{2030, 2045},
				"model_first_planning_year": []any{2020},
			},
			wantErr: "must be the same",
		},
		{
			name: "planning year after model year",
			settings: domain.Settings{
				"model_year":                []any{2030},
				"model_first_planning_year": []any{2035},
			},
			wantErr: "after its model year",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parser.ValidateSettings(tt.settings)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestInputParser_LoadScenarioDefinitions(t *testing.T) {
	path := writeFile(t, "scenario_definitions.csv",
		"case_id,year,ng_price,ccs_capex\np1,2030,reference,mid\np2,2030,high,low\np1,2045,reference,mid\n")

	defs, err := NewInputParser().LoadScenarioDefinitions(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"ng_price", "ccs_capex"}, defs.Categories)
	require.Len(t, defs.Rows, 3)
	assert.Equal(t, []int{2030, 2045}, defs.Years())
	assert.Equal(t, []string{"p1", "p2"}, defs.CaseIDs())

	row, ok := defs.Row("p2", 2030)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"ng_price": "high", "ccs_capex": "low"}, row.Selection)

	_, ok = defs.Row("p2", 2045)
	assert.False(t, ok)
}

func TestInputParser_LoadScenarioDefinitions_MissingColumns(t *testing.T) {
	path := writeFile(t, "scenario_definitions.csv", "case_id,ng_price\np1,reference\n")

	_, err := NewInputParser().LoadScenarioDefinitions(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column year")
}

func TestInputParser_ValidateScenarioYears(t *testing.T) {
	parser := NewInputParser()
	settings := domain.Settings{"model_year": []any{2030, 2045}}
	defs := &domain.ScenarioDefTable{Rows: []domain.ScenarioDefRow{
		{CaseID: "p1", Year: 2030},
		{CaseID: "p1", Year: 2045},
	}}

	assert.NoError(t, parser.ValidateScenarioYears(defs, settings))

	defs.Rows = defs.Rows[:1]
	err := parser.ValidateScenarioYears(defs, settings)
	require.Error(t, err, "Settings year missing from the definitions file")
	assert.Contains(t, err.Error(), "2045")

	defs.Rows = append(defs.Rows, domain.ScenarioDefRow{CaseID: "p1", Year: 2060})
	err = parser.ValidateScenarioYears(defs, settings)
	require.Error(t, err, "Definitions year missing from the settings")
	assert.Contains(t, err.Error(), "2060")
}

func TestInputParser_LoadCaseNames(t *testing.T) {
	path := writeFile(t, "case_descriptions.csv",
		"case_id,case_description\np1,Base case\np2,High NG price\n")

	names, err := NewInputParser().LoadCaseNames(path)
	require.NoError(t, err)

	assert.Equal(t, domain.CaseNameMap{"p1": "Base_case", "p2": "High_NG_price"}, names)
}

func TestInputParser_LoadFuelPrices(t *testing.T) {
	path := writeFile(t, "fuel_prices.csv",
		"fuel,full_fuel_name,year,price\nnaturalgas,reference_east_naturalgas,2030,3.00\ncoal,east_coal,2030,1.8\n")

	prices, err := NewInputParser().LoadFuelPrices(path)
	require.NoError(t, err)

	require.Len(t, prices, 2)
	assert.Equal(t, "reference_east_naturalgas", prices[0].FullFuelName)
	assert.Equal(t, 2030, prices[0].Year)
	assert.True(t, prices[0].Price.Equal(decimal.RequireFromString("3.00")))
}

func TestInputParser_LoadFuelPrices_BadPrice(t *testing.T) {
	path := writeFile(t, "fuel_prices.csv",
		"fuel,full_fuel_name,year,price\nnaturalgas,NG,2030,cheap\n")

	_, err := NewInputParser().LoadFuelPrices(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid price")
	assert.Contains(t, err.Error(), "row 2")
}

func TestInputParser_LoadGenerators(t *testing.T) {
	path := writeFile(t, "generators.csv",
		"Resource,region,Fuel\nngcc,east,naturalgas\nngccs,east,naturalgas_ccs90\nbattery,east,\n")

	generators, err := NewInputParser().LoadGenerators(path)
	require.NoError(t, err)

	require.Len(t, generators, 3)
	assert.Equal(t, domain.Generator{Resource: "ngcc", Region: "east", Fuel: "naturalgas"}, generators[0])
	assert.Empty(t, generators[2].Fuel, "Storage resources carry no fuel")
}

func TestInputParser_LoadGenerators_MissingFuelColumn(t *testing.T) {
	path := writeFile(t, "generators.csv", "Resource,region\nngcc,east\n")

	_, err := NewInputParser().LoadGenerators(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column Fuel")
}
