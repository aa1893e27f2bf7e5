package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FuelPrice is one row of the fuel price table: the price of a fuel variant
// in one year. FullFuelName is the composite key distinguishing regional and
// scenario variants of a base fuel type.
type FuelPrice struct {
	Fuel         string
	FullFuelName string
	Year         int
	Price        decimal.Decimal
}

// Generator is one row of the generator roster. Only the fuel identifier is
// consumed here; the remaining roster columns belong to the generator
// clustering outputs.
type Generator struct {
	Resource string
	Region   string
	Fuel     string
}

// UniqueFuels returns the distinct fuel identifiers referenced by the
// roster, preserving first-seen order. Generators with an empty fuel field
// (storage, etc.) are skipped.
func UniqueFuels(generators []Generator) []string {
	seen := make(map[string]bool)
	var fuels []string
	for _, g := range generators {
		if g.Fuel == "" || seen[g.Fuel] {
			continue
		}
		seen[g.Fuel] = true
		fuels = append(fuels, g.Fuel)
	}
	return fuels
}

// ccsTag is the token prefix marking a carbon-capture fuel variant.
const ccsTag = "ccs"

// IsCCSFuel reports whether a fuel identifier names a carbon-capture
// variant. The contract is a suffix tag: the final underscore-delimited
// token must start with "ccs" (coal_ccs, east_naturalgas_ccs90). A name
// that merely contains "ccs" inside another token is not a CCS variant.
func IsCCSFuel(name string) bool {
	tokens := strings.Split(name, "_")
	last := tokens[len(tokens)-1]
	return len(tokens) > 1 && strings.HasPrefix(last, ccsTag)
}

// CCSBaseFuel returns the non-CCS counterpart of a CCS fuel identifier by
// dropping the trailing capture tag: east_naturalgas_ccs90 ->
// east_naturalgas. Callers must check IsCCSFuel first.
func CCSBaseFuel(name string) string {
	tokens := strings.Split(name, "_")
	return strings.Join(tokens[:len(tokens)-1], "_")
}

// CCSCaptureKey returns the key into the ccs_capture_rate settings map for
// a CCS fuel identifier: the last two underscore-delimited tokens, i.e. the
// base fuel type plus the capture tag (naturalgas_ccs90).
func CCSCaptureKey(name string) string {
	tokens := strings.Split(name, "_")
	if len(tokens) < 2 {
		return name
	}
	return strings.Join(tokens[len(tokens)-2:], "_")
}

// BaseFuelType returns the base fuel type of a full fuel name, the final
// underscore-delimited token. It keys the fuel_emission_factors settings
// map: reference_east_naturalgas -> naturalgas.
func BaseFuelType(fullFuelName string) string {
	tokens := strings.Split(fullFuelName, "_")
	return tokens[len(tokens)-1]
}

// FuelResultTable is the resolved fuel cost and emissions table for one
// case. Prices and emissions are keyed by fuel identifier; Fuels preserves
// roster order and defines the output column order. Prices are constant
// across the modeled hours, so a single price per fuel plus the hour count
// stands in for the expanded hourly series.
// Values are stored at full precision; rounding (2 places for prices, 5
// for emission factors) happens when the table is written out.
type FuelResultTable struct {
	Fuels     []string
	Prices    map[string]decimal.Decimal
	Emissions map[string]decimal.Decimal // tons CO2/MMBtu
	Hours     int
}
