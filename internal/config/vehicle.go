package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"solar-strategy-service/internal/domain"
)

// LoadVehicle reads vehicle parameters from a YAML file and validates them.
// The file is the single source of truth for the physical model; there are
// no environment overrides for individual coefficients.
func LoadVehicle(path string) (domain.VehicleParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.VehicleParams{}, fmt.Errorf("load vehicle config: read %q: %w", path, err)
	}

	var params domain.VehicleParams
	if err := yaml.Unmarshal(data, &params); err != nil {
		return domain.VehicleParams{}, fmt.Errorf("load vehicle config: decode yaml: %w", err)
	}

	if err := params.Validate(); err != nil {
		return domain.VehicleParams{}, fmt.Errorf("load vehicle config %q: %w", path, err)
	}

	return params, nil
}
