// Package config loads and validates the input files for a model run: the
// YAML settings file and the CSV tables it points at.
package config

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/gridwright/powerprep/internal/domain"
)

// Settings keys naming the input files, resolved relative to input_folder.
const (
	KeyInputFolder      = "input_folder"
	KeyScenarioDefsFile = "scenario_definitions_fn"
	KeyCaseDescriptions = "case_id_description_fn"
	KeyFuelPricesFile   = "fuel_prices_fn"
	KeyGeneratorsFile   = "generators_fn"
)

// InputParser handles parsing of input configuration and data files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadSettingsFile loads and validates the YAML settings file.
func (ip *InputParser) LoadSettingsFile(filename string) (domain.Settings, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	settings := domain.Settings(domain.NormalizeValue(raw).(map[string]any))

	if err := ip.ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("settings validation failed: %w", err)
	}
	return settings, nil
}

// ValidateSettings checks the settings invariants the scenario builder and
// fuel pipeline rely on.
func (ip *InputParser) ValidateSettings(settings domain.Settings) error {
	years, ok := settings.IntSlice(domain.KeyModelYear)
	if !ok || len(years) == 0 {
		return fmt.Errorf("settings parameter %q must be a list of years", domain.KeyModelYear)
	}
	startYears, ok := settings.IntSlice(domain.KeyFirstPlanningYear)
	if !ok || len(startYears) == 0 {
		return fmt.Errorf("settings parameter %q must be a list of years", domain.KeyFirstPlanningYear)
	}
	if len(years) != len(startYears) {
		return fmt.Errorf("the number of years in the settings parameter %q must be the same as %q",
			domain.KeyModelYear, domain.KeyFirstPlanningYear)
	}
	for i, start := range startYears {
		if start > years[i] {
			return fmt.Errorf("first planning year %d is after its model year %d", start, years[i])
		}
	}
	return nil
}

// ValidateScenarioYears checks that the scenario definitions cover exactly
// the model years named in the settings.
func (ip *InputParser) ValidateScenarioYears(defs *domain.ScenarioDefTable, settings domain.Settings) error {
	modelYears, _ := settings.IntSlice(domain.KeyModelYear)
	want := make(map[int]bool, len(modelYears))
	for _, y := range modelYears {
		want[y] = true
	}
	got := make(map[int]bool)
	for _, y := range defs.Years() {
		if !want[y] {
			return fmt.Errorf("scenario definitions year %d is not in the settings parameter %q", y, domain.KeyModelYear)
		}
		got[y] = true
	}
	for _, y := range modelYears {
		if !got[y] {
			return fmt.Errorf("the settings parameter %q includes %d but the scenario definitions file does not", domain.KeyModelYear, y)
		}
	}
	return nil
}

// LoadScenarioDefinitions loads the scenario definitions CSV. The table
// must carry case_id and year columns; every other column is an override
// category, kept in file order.
func (ip *InputParser) LoadScenarioDefinitions(filename string) (*domain.ScenarioDefTable, error) {
	header, records, err := readCSV(filename)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	caseCol, ok := columns["case_id"]
	if !ok {
		return nil, fmt.Errorf("%s: missing required column case_id", filename)
	}
	yearCol, ok := columns["year"]
	if !ok {
		return nil, fmt.Errorf("%s: missing required column year", filename)
	}

	table := &domain.ScenarioDefTable{}
	for _, name := range header {
		if name != "case_id" && name != "year" {
			table.Categories = append(table.Categories, name)
		}
	}

	for i, record := range records {
		year, err := strconv.Atoi(strings.TrimSpace(record[yearCol]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid year %q: %w", filename, i+2, record[yearCol], err)
		}
		row := domain.ScenarioDefRow{
			CaseID:    strings.TrimSpace(record[caseCol]),
			Year:      year,
			Selection: make(map[string]string, len(table.Categories)),
		}
		for _, category := range table.Categories {
			row.Selection[category] = strings.TrimSpace(record[columns[category]])
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// LoadCaseNames loads the two-column case id -> description table,
// normalizing description whitespace to underscores.
func (ip *InputParser) LoadCaseNames(filename string) (domain.CaseNameMap, error) {
	_, records, err := readCSV(filename)
	if err != nil {
		return nil, err
	}
	names := make(domain.CaseNameMap, len(records))
	for i, record := range records {
		if len(record) < 2 {
			return nil, fmt.Errorf("%s row %d: expected case_id and description columns", filename, i+2)
		}
		names[strings.TrimSpace(record[0])] = domain.NormalizeCaseName(record[1])
	}
	return names, nil
}

// LoadFuelPrices loads the fuel price CSV. Required columns: fuel,
// full_fuel_name, year, price.
func (ip *InputParser) LoadFuelPrices(filename string) ([]domain.FuelPrice, error) {
	header, records, err := readCSV(filename)
	if err != nil {
		return nil, err
	}
	columns, err := requireColumns(filename, header, "fuel", "full_fuel_name", "year", "price")
	if err != nil {
		return nil, err
	}

	prices := make([]domain.FuelPrice, 0, len(records))
	for i, record := range records {
		year, err := strconv.Atoi(strings.TrimSpace(record[columns["year"]]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid year %q: %w", filename, i+2, record[columns["year"]], err)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(record[columns["price"]]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid price %q: %w", filename, i+2, record[columns["price"]], err)
		}
		prices = append(prices, domain.FuelPrice{
			Fuel:         strings.TrimSpace(record[columns["fuel"]]),
			FullFuelName: strings.TrimSpace(record[columns["full_fuel_name"]]),
			Year:         year,
			Price:        price,
		})
	}
	return prices, nil
}

// LoadGenerators loads the generator roster CSV. Required columns:
// Resource, Fuel; a region column is carried through when present.
func (ip *InputParser) LoadGenerators(filename string) ([]domain.Generator, error) {
	header, records, err := readCSV(filename)
	if err != nil {
		return nil, err
	}
	columns, err := requireColumns(filename, header, "Resource", "Fuel")
	if err != nil {
		return nil, err
	}
	regionCol := -1
	for i, name := range header {
		if name == "region" {
			regionCol = i
		}
	}

	generators := make([]domain.Generator, 0, len(records))
	for _, record := range records {
		g := domain.Generator{
			Resource: strings.TrimSpace(record[columns["Resource"]]),
			Fuel:     strings.TrimSpace(record[columns["Fuel"]]),
		}
		if regionCol >= 0 {
			g.Region = strings.TrimSpace(record[regionCol])
		}
		generators = append(generators, g)
	}
	return generators, nil
}

func readCSV(filename string) ([]string, [][]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV %s: %w", filename, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", filename)
	}
	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.TrimSpace(name)
	}
	return header, rows[1:], nil
}

func requireColumns(filename string, header []string, names ...string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, name := range names {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%s: missing required column %s", filename, name)
		}
	}
	return columns, nil
}
