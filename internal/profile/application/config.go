package application

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"pvhealth-cloud/internal/degradation"
)

// EstimatorConfig defines tunables for degradation estimation and report
// rendering.
type EstimatorConfig struct {
	// ReferenceIrradianceWPerM2 substitutes the assumed irradiance once a
	// real irradiance source is wired in.
	ReferenceIrradianceWPerM2 float64 `yaml:"reference_irradiance_w_per_m2"`
	ReportTitle               string  `yaml:"report_title"`
	ReportIssuer              string  `yaml:"report_issuer"`
}

// LoadEstimatorConfig loads estimator config from yaml or env.
// PVHEALTH_CONFIG points at a yaml file; REFERENCE_IRRADIANCE overrides the
// irradiance when no file value is set.
func LoadEstimatorConfig() (EstimatorConfig, error) {
	cfg := EstimatorConfig{
		ReportTitle:  "PV Degradation Profile",
		ReportIssuer: "pvhealth-cloud",
	}

	if path := os.Getenv("PVHEALTH_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.ReferenceIrradianceWPerM2 <= 0 {
		if raw := os.Getenv("REFERENCE_IRRADIANCE"); raw != "" {
			if value, err := strconv.ParseFloat(raw, 64); err == nil && value > 0 {
				cfg.ReferenceIrradianceWPerM2 = value
			}
		}
	}
	if cfg.ReferenceIrradianceWPerM2 <= 0 {
		cfg.ReferenceIrradianceWPerM2 = degradation.DefaultReferenceIrradiance
	}
	return cfg, nil
}
