// Package output writes the prepared model inputs as CSV artifacts in the
// per-case results folder tree.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/gridwright/powerprep/internal/domain"
)

// FuelsCSV formats a fuel result table as the Fuels_data.csv artifact:
// one column per roster fuel, a Time_Index row label, row 0 holding the
// emission factors and rows 1..Hours the hourly prices. When
// IncludeFuelIndices is set, a fuel_indices column with a 1-based serial
// number per row is appended.
type FuelsCSV struct {
	IncludeFuelIndices bool
}

// Format renders the table as CSV bytes.
func (f FuelsCSV) Format(table *domain.FuelResultTable) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := append([]string{"Time_Index"}, table.Fuels...)
	if f.IncludeFuelIndices {
		header = append(header, "fuel_indices")
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	emissions := make([]string, 0, len(table.Fuels)+2)
	emissions = append(emissions, "0")
	for _, fuel := range table.Fuels {
		emissions = append(emissions, table.Emissions[fuel].StringFixed(5))
	}
	if f.IncludeFuelIndices {
		emissions = append(emissions, "1")
	}
	if err := w.Write(emissions); err != nil {
		return nil, err
	}

	prices := make([]string, 0, len(table.Fuels)+1)
	for _, fuel := range table.Fuels {
		prices = append(prices, table.Prices[fuel].StringFixed(2))
	}
	for hour := 1; hour <= table.Hours; hour++ {
		row := append([]string{strconv.Itoa(hour)}, prices...)
		if f.IncludeFuelIndices {
			row = append(row, strconv.Itoa(hour+1))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CaseFolder returns the results folder for one (year, case):
// <out>/<year>/<caseID>_<year>_<caseName>.
func CaseFolder(outFolder string, year int, caseID, caseName string) string {
	return filepath.Join(outFolder, strconv.Itoa(year), fmt.Sprintf("%s_%d_%s", caseID, year, caseName))
}

// WriteResultsFile writes a results artifact, creating the folder tree on
// demand.
func WriteResultsFile(data []byte, folder, fileName string) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create results folder %s: %w", folder, err)
	}
	path := filepath.Join(folder, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteResolvedSettings echoes a case's resolved settings next to its data
// files for reproducibility.
func WriteResolvedSettings(settings domain.Settings, folder, fileName string) error {
	data, err := yaml.Marshal(map[string]any(settings))
	if err != nil {
		return fmt.Errorf("failed to marshal resolved settings: %w", err)
	}
	return WriteResultsFile(data, folder, fileName)
}
