package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validVehicleYAML = `
mass_kg: 300.0
wheel_radius_m: 0.27
drag_coeff: 0.12
frontal_area_m2: 1.0
rolling_res_coeff: 0.0055
torque_curve:
  - { speed: 0.0, value: 45.0 }
  - { speed: 40.0, value: 8.0 }
efficiency_curve:
  - { speed: 0.0, value: 0.8 }
  - { speed: 30.0, value: 0.95 }
panel_area_m2: 4.0
panel_efficiency: 0.24
battery_capacity_j: 18720000.0
auxiliary_load_w: 30.0
max_braking_decel: 3.0
time_step_s: 0.1
initial_soc: 1.0
`

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vehicle.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func TestLoadVehicle(t *testing.T) {
	params, err := LoadVehicle(writeTempYAML(t, validVehicleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if params.MassKg != 300 {
		t.Fatalf("expected mass 300, got %v", params.MassKg)
	}
	if len(params.TorqueCurve) != 2 {
		t.Fatalf("expected 2 torque points, got %d", len(params.TorqueCurve))
	}
	if params.TorqueCurve[0].Value != 45 {
		t.Fatalf("expected 45 Nm at standstill, got %v", params.TorqueCurve[0].Value)
	}
}

func TestLoadVehicleRejectsInvalidParams(t *testing.T) {
	bad := strings.Replace(validVehicleYAML, "initial_soc: 1.0", "initial_soc: 1.5", 1)
	if _, err := LoadVehicle(writeTempYAML(t, bad)); err == nil {
		t.Fatal("expected validation error, got nil")
	}
}

func TestLoadVehicleMissingFile(t *testing.T) {
	if _, err := LoadVehicle(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestGetFallsBack(t *testing.T) {
	t.Setenv("SOLARSIM_TEST_KEY", "")
	if got := Get("SOLARSIM_TEST_KEY", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}

	t.Setenv("SOLARSIM_TEST_KEY", "set")
	if got := Get("SOLARSIM_TEST_KEY", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}
