package domain

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Settings is the free-form configuration bag for one model run. It starts
// life as the parsed settings file and is resolved per (planning year, case)
// by the scenario builder. A resolved Settings must hold concrete values for
// KeyModelYear, KeyFirstPlanningYear and KeyCaseName.
type Settings map[string]any

// Well-known settings keys.
const (
	KeyModelYear          = "model_year"
	KeyFirstPlanningYear  = "model_first_planning_year"
	KeyCaseName           = "case_name"
	KeyCaseID             = "case_id"
	KeySettingsManagement = "settings_management"
	KeyEmissionFactors    = "fuel_emission_factors"
	KeyUserFuelPrice      = "user_fuel_price"
	KeyCaptureRate        = "ccs_capture_rate"
	KeyDisposalCost       = "ccs_disposal_cost"
	KeyCarbonTax          = "carbon_tax"
	KeyReduceTimeDomain   = "reduce_time_domain"
	KeyDaysPerPeriod      = "time_domain_days_per_period"
	KeyTimePeriods        = "time_domain_periods"
)

// DeepCopy returns a fully independent copy of the settings. Nested maps and
// sequences are copied recursively; scalars are shared by value.
func (s Settings) DeepCopy() Settings {
	if s == nil {
		return nil
	}
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = CopyValue(v)
	}
	return out
}

// CopyValue deep-copies a configuration value: maps and slices are cloned
// recursively, everything else is returned as-is.
func CopyValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = CopyValue(e)
		}
		return out
	case Settings:
		return map[string]any(tv.DeepCopy())
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = CopyValue(e)
		}
		return out
	default:
		return v
	}
}

// Int reads an integer option. YAML parsing may deliver ints as int, int64
// or float64 depending on the document, so all three are accepted.
func (s Settings) Int(key string) (int, bool) {
	switch v := s[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// String reads a string option.
func (s Settings) String(key string) (string, bool) {
	v, ok := s[key].(string)
	return v, ok
}

// Bool reads a boolean option. A missing or null key reads as false.
func (s Settings) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// Decimal reads a numeric option as a decimal. Integers, floats and numeric
// strings are all accepted.
func (s Settings) Decimal(key string) (decimal.Decimal, bool) {
	return toDecimal(s[key])
}

// Map reads a nested mapping option.
func (s Settings) Map(key string) (map[string]any, bool) {
	switch v := s[key].(type) {
	case map[string]any:
		return v, true
	case Settings:
		return v, true
	default:
		return nil, false
	}
}

// DecimalMap reads a nested mapping of name -> number, such as
// fuel_emission_factors or ccs_capture_rate. Non-numeric entries are
// dropped.
func (s Settings) DecimalMap(key string) (map[string]decimal.Decimal, bool) {
	m, ok := s.Map(key)
	if !ok {
		return nil, false
	}
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		if d, ok := toDecimal(v); ok {
			out[k] = d
		}
	}
	return out, true
}

// IntSlice reads a list-of-integers option. A bare integer is treated as a
// one-element list so resolved settings (where model_year is scalar) read
// the same way as the base settings file.
func (s Settings) IntSlice(key string) ([]int, bool) {
	switch v := s[key].(type) {
	case []any:
		out := make([]int, 0, len(v))
		for _, e := range v {
			switch n := e.(type) {
			case int:
				out = append(out, n)
			case int64:
				out = append(out, int(n))
			case float64:
				out = append(out, int(n))
			default:
				return nil, false
			}
		}
		return out, true
	case []int:
		return v, true
	default:
		if n, ok := s.Int(key); ok {
			return []int{n}, true
		}
		return nil, false
	}
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch tv := v.(type) {
	case decimal.Decimal:
		return tv, true
	case int:
		return decimal.NewFromInt(int64(tv)), true
	case int64:
		return decimal.NewFromInt(tv), true
	case float64:
		return decimal.NewFromFloat(tv), true
	case string:
		d, err := decimal.NewFromString(tv)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// NormalizeValue rewrites a YAML-decoded value tree so that every mapping
// is a map[string]any. yaml.v3 decodes mappings with non-string keys, such
// as the integer planning years under settings_management, into
// map[any]any; normalizing once at load time lets the rest of the code
// index nested maps by string keys.
func NormalizeValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = NormalizeValue(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[fmt.Sprint(k)] = NormalizeValue(e)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = NormalizeValue(e)
		}
		return out
	default:
		return v
	}
}

// YearKey converts a planning year to the string form used as a map key in
// normalized nested settings such as settings_management.
func YearKey(year int) string {
	return strconv.Itoa(year)
}
