// Package fuels derives the per-case fuel cost and emissions table consumed
// by the capacity-expansion model.
package fuels

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/gridwright/powerprep/internal/domain"
)

// Hours in a full non-reduced model year.
const hoursPerYear = 8760

// CostTable computes the resolved fuel price and emissions table for one
// case from the raw fuel price table, the generator roster, and the case's
// resolved settings.
type CostTable struct {
	Logger Logger
}

// NewCostTable creates a cost table calculator with a no-op logger.
func NewCostTable() *CostTable {
	return &CostTable{Logger: NopLogger{}}
}

// SetLogger sets a custom logger. Passing nil restores the no-op logger.
func (ct *CostTable) SetLogger(logger Logger) {
	if logger == nil {
		logger = NopLogger{}
	}
	ct.Logger = logger
}

// fuelRow is one fuel's price and emissions while the pipeline runs.
// priced/emitted track whether a lookup matched; unmatched values stay at
// zero, the deliberate no-data-means-zero policy for downstream consumers
// that cannot handle missing values.
type fuelRow struct {
	fuel      string
	price     decimal.Decimal
	emissions decimal.Decimal
	priced    bool
	emitted   bool
}

// Compute resolves the fuel table for the settings' model year.
//
// The pipeline: merge user fuel prices into the base price table, resolve a
// price and emission factor for every fuel the roster references, copy
// prices and emissions from the non-CCS base fuel onto CCS variants, apply
// the capture adjustment and the carbon tax, and size the hourly series.
func (ct *CostTable) Compute(fuelPrices []domain.FuelPrice, generators []domain.Generator, settings domain.Settings) (*domain.FuelResultTable, error) {
	modelYear, ok := settings.Int(domain.KeyModelYear)
	if !ok {
		return nil, fmt.Errorf("settings parameter %q must be a concrete year", domain.KeyModelYear)
	}

	allFuelCosts := AddUserFuelPrices(settings, fuelPrices)
	uniqueFuels := domain.UniqueFuels(generators)

	priceMap := make(map[string]decimal.Decimal)
	for _, fp := range allFuelCosts {
		if fp.Year == modelYear {
			priceMap[fp.FullFuelName] = fp.Price
		}
	}

	emissionFactors, _ := settings.DecimalMap(domain.KeyEmissionFactors)
	ct.warnMissingUserFactors(fuelPrices, allFuelCosts, emissionFactors)

	emissionMap := make(map[string]decimal.Decimal, len(priceMap))
	for fullName := range priceMap {
		emissionMap[fullName] = emissionFactors[domain.BaseFuelType(fullName)]
	}

	// CCS variants start from their base fuel's price and emissions; the
	// capture adjustment below moves them apart.
	for _, fuel := range uniqueFuels {
		if !domain.IsCCSFuel(fuel) {
			continue
		}
		baseName := domain.CCSBaseFuel(fuel)
		basePrice, ok := priceMap[baseName]
		if !ok {
			return nil, fmt.Errorf("ccs fuel %q has no priced non-ccs base fuel %q in model year %d", fuel, baseName, modelYear)
		}
		priceMap[fuel] = basePrice
		emissionMap[fuel] = emissionMap[baseName]
	}

	carbonTax, ok := settings.Decimal(domain.KeyCarbonTax)
	if !ok {
		carbonTax = decimal.Zero
	}

	rows := make([]fuelRow, 0, len(uniqueFuels))
	for _, fuel := range uniqueFuels {
		row := fuelRow{fuel: fuel}
		row.price, row.priced = priceMap[fuel]
		row.emissions, row.emitted = emissionMap[fuel]

		row, err := adjustCCS(row, settings)
		if err != nil {
			return nil, err
		}
		row.price = row.price.Add(row.emissions.Mul(carbonTax))
		rows = append(rows, row)
	}

	hours, err := modelHours(settings)
	if err != nil {
		return nil, err
	}

	result := &domain.FuelResultTable{
		Fuels:     uniqueFuels,
		Prices:    make(map[string]decimal.Decimal, len(rows)),
		Emissions: make(map[string]decimal.Decimal, len(rows)),
		Hours:     hours,
	}
	for _, row := range rows {
		result.Prices[row.fuel] = row.price
		result.Emissions[row.fuel] = row.emissions
	}
	return result, nil
}

// AddUserFuelPrices merges the user_fuel_price settings map into the fuel
// price table. Each user fuel is priced at every model year with the fuel
// name doubling as its full fuel name, so user fuels resolve like any other
// price row. The input slice is not modified.
func AddUserFuelPrices(settings domain.Settings, fuelPrices []domain.FuelPrice) []domain.FuelPrice {
	userPrices, ok := settings.DecimalMap(domain.KeyUserFuelPrice)
	if !ok || len(userPrices) == 0 {
		return fuelPrices
	}
	years, _ := settings.IntSlice(domain.KeyModelYear)

	names := make([]string, 0, len(userPrices))
	for name := range userPrices {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.FuelPrice, len(fuelPrices), len(fuelPrices)+len(names)*len(years))
	copy(out, fuelPrices)
	for _, name := range names {
		for _, year := range years {
			out = append(out, domain.FuelPrice{
				Fuel:         name,
				FullFuelName: name,
				Year:         year,
				Price:        userPrices[name],
			})
		}
	}
	return out
}

// warnMissingUserFactors warns once per user-added fuel that has no entry
// in fuel_emission_factors. Non-fatal: a missing entry means the fuel is
// intentionally zero-emission.
func (ct *CostTable) warnMissingUserFactors(baseFuelCosts, allFuelCosts []domain.FuelPrice, emissionFactors map[string]decimal.Decimal) {
	baseFuels := make(map[string]bool, len(baseFuelCosts))
	for _, fp := range baseFuelCosts {
		baseFuels[fp.Fuel] = true
	}
	seen := make(map[string]bool)
	var userFuels []string
	for _, fp := range allFuelCosts {
		if !baseFuels[fp.Fuel] && !seen[fp.Fuel] {
			seen[fp.Fuel] = true
			userFuels = append(userFuels, fp.Fuel)
		}
	}
	sort.Strings(userFuels)
	for _, fuel := range userFuels {
		if _, ok := emissionFactors[fuel]; !ok {
			ct.Logger.Warnf("user fuel %q has no emissions factor in the settings parameter %q; "+
				"this is fine if the emission factor should be 0, otherwise add a value", fuel, domain.KeyEmissionFactors)
		}
	}
}

// adjustCCS applies the carbon-capture adjustment to a single fuel row.
// Non-CCS rows pass through unchanged. For a CCS row, the captured fraction
// of CO2 is removed from emissions and its disposal cost added to the
// price. A CCS fuel without a declared capture rate or disposal cost has
// undefined economics, so both are required.
func adjustCCS(row fuelRow, settings domain.Settings) (fuelRow, error) {
	if !domain.IsCCSFuel(row.fuel) {
		return row, nil
	}

	captureRates, ok := settings.DecimalMap(domain.KeyCaptureRate)
	if !ok {
		return fuelRow{}, fmt.Errorf("settings parameter %q is required when the roster includes ccs fuels", domain.KeyCaptureRate)
	}
	captureKey := domain.CCSCaptureKey(row.fuel)
	captureRate, ok := captureRates[captureKey]
	if !ok {
		return fuelRow{}, fmt.Errorf("ccs fuel %q has no capture rate for %q in the settings parameter %q", row.fuel, captureKey, domain.KeyCaptureRate)
	}
	disposalCost, ok := settings.Decimal(domain.KeyDisposalCost)
	if !ok {
		return fuelRow{}, fmt.Errorf("settings parameter %q is required when the roster includes ccs fuels", domain.KeyDisposalCost)
	}

	captured := row.emissions.Mul(captureRate)
	row.emissions = row.emissions.Sub(captured)
	row.price = row.price.Add(captured.Mul(disposalCost))
	return row, nil
}

// modelHours returns the number of hourly rows in the output series: a full
// 8760-hour year, or days_per_period * periods * 24 when the time domain is
// reduced.
func modelHours(settings domain.Settings) (int, error) {
	if !settings.Bool(domain.KeyReduceTimeDomain) {
		return hoursPerYear, nil
	}
	days, ok := settings.Int(domain.KeyDaysPerPeriod)
	if !ok {
		return 0, fmt.Errorf("settings parameter %q is required when %q is set", domain.KeyDaysPerPeriod, domain.KeyReduceTimeDomain)
	}
	periods, ok := settings.Int(domain.KeyTimePeriods)
	if !ok {
		return 0, fmt.Errorf("settings parameter %q is required when %q is set", domain.KeyTimePeriods, domain.KeyReduceTimeDomain)
	}
	return days * periods * 24, nil
}
