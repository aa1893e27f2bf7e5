package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridwright/powerprep/internal/config"
	"github.com/gridwright/powerprep/internal/domain"
	"github.com/gridwright/powerprep/internal/fuels"
	"github.com/gridwright/powerprep/internal/output"
	"github.com/gridwright/powerprep/internal/scenario"
)

// simpleCLILogger implements fuels.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "powerprep %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.Main.Path)
			}
		},
	}
}

var rootCmd = &cobra.Command{
	Use:   "powerprep",
	Short: "Power system model input preparation",
	Long:  "Prepares per-scenario settings and fuel cost tables for a capacity-expansion power system model",
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build per-case model inputs from a settings file",
	RunE: func(cmd *cobra.Command, args []string) error {
		settingsFile, _ := cmd.Flags().GetString("settings-file")
		resultsFolder, _ := cmd.Flags().GetString("results-folder")
		writeFuel, _ := cmd.Flags().GetBool("fuel")

		logger := simpleCLILogger{}
		parser := config.NewInputParser()

		logger.Infof("Reading settings file %s", settingsFile)
		settings, err := parser.LoadSettingsFile(settingsFile)
		if err != nil {
			return err
		}

		inputFolder, _ := settings.String(config.KeyInputFolder)
		inputPath := func(key string) (string, error) {
			name, ok := settings.String(key)
			if !ok {
				return "", fmt.Errorf("settings parameter %q is required", key)
			}
			return filepath.Join(inputFolder, name), nil
		}

		defsFile, err := inputPath(config.KeyScenarioDefsFile)
		if err != nil {
			return err
		}
		defs, err := parser.LoadScenarioDefinitions(defsFile)
		if err != nil {
			return err
		}
		if err := parser.ValidateScenarioYears(defs, settings); err != nil {
			return err
		}

		namesFile, err := inputPath(config.KeyCaseDescriptions)
		if err != nil {
			return err
		}
		caseNames, err := parser.LoadCaseNames(namesFile)
		if err != nil {
			return err
		}

		var fuelPrices []domain.FuelPrice
		var generators []domain.Generator
		if writeFuel {
			pricesFile, err := inputPath(config.KeyFuelPricesFile)
			if err != nil {
				return err
			}
			if fuelPrices, err = parser.LoadFuelPrices(pricesFile); err != nil {
				return err
			}
			generatorsFile, err := inputPath(config.KeyGeneratorsFile)
			if err != nil {
				return err
			}
			if generators, err = parser.LoadGenerators(generatorsFile); err != nil {
				return err
			}
		}

		builder := scenario.NewBuilder(settings, caseNames)
		resolved, err := builder.Build(defs)
		if err != nil {
			return err
		}

		costTable := fuels.NewCostTable()
		costTable.SetLogger(logger)
		formatter := output.FuelsCSV{IncludeFuelIndices: true}

		for _, year := range defs.Years() {
			for _, caseID := range defs.CaseIDs() {
				caseSettings, ok := resolved[year][caseID]
				if !ok {
					continue
				}
				caseName, _ := caseSettings.String(domain.KeyCaseName)
				caseFolder := output.CaseFolder(resultsFolder, year, caseID, caseName)
				logger.Infof("Starting year %d scenario %s", year, caseID)

				if err := output.WriteResolvedSettings(caseSettings, caseFolder, "resolved_settings.yml"); err != nil {
					return err
				}

				if writeFuel {
					table, err := costTable.Compute(fuelPrices, generators, caseSettings)
					if err != nil {
						return err
					}
					data, err := formatter.Format(table)
					if err != nil {
						return err
					}
					if err := output.WriteResultsFile(data, caseFolder, "Fuels_data.csv"); err != nil {
						return err
					}
				}
			}
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringP("settings-file", "s", "example_settings.yml", "YAML settings file")
	buildCmd.Flags().StringP("results-folder", "r", time.Now().Format("2006-01-02 15.04.05"), "results subfolder to write output")
	buildCmd.Flags().Bool("fuel", true, "create the fuel table; use --fuel=false to skip")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
