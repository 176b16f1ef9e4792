package panel

// SpecKey identifies a nameplate attribute of a panel.
// The set is closed; unknown keys are rejected at the boundary.
type SpecKey string

const (
	// SpecRatedEfficiencyPct is the rated module efficiency in percent.
	SpecRatedEfficiencyPct SpecKey = "rated_efficiency_pct"
	// SpecModuleAreaM2 is the module area in square meters.
	SpecModuleAreaM2 SpecKey = "module_area_m2"
	// SpecRatedPmaxW is the rated maximum power in watts.
	SpecRatedPmaxW SpecKey = "rated_pmax_w"
	// SpecTempCoefficientPct is the power temperature coefficient in %/degC.
	SpecTempCoefficientPct SpecKey = "temp_coefficient_pct"
	// SpecOpenCircuitVoltageV is the open-circuit voltage in volts.
	SpecOpenCircuitVoltageV SpecKey = "open_circuit_voltage_v"
	// SpecShortCircuitCurrentA is the short-circuit current in amperes.
	SpecShortCircuitCurrentA SpecKey = "short_circuit_current_a"
)

// AllSpecKeys lists every supported specification key.
func AllSpecKeys() []SpecKey {
	return []SpecKey{
		SpecRatedEfficiencyPct,
		SpecModuleAreaM2,
		SpecRatedPmaxW,
		SpecTempCoefficientPct,
		SpecOpenCircuitVoltageV,
		SpecShortCircuitCurrentA,
	}
}

// ParseSpecKey resolves a raw key string against the closed key set.
func ParseSpecKey(raw string) (SpecKey, bool) {
	switch SpecKey(raw) {
	case SpecRatedEfficiencyPct,
		SpecModuleAreaM2,
		SpecRatedPmaxW,
		SpecTempCoefficientPct,
		SpecOpenCircuitVoltageV,
		SpecShortCircuitCurrentA:
		return SpecKey(raw), true
	}
	return "", false
}
