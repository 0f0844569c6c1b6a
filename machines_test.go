//
// Copyright (c) 2026 Osmose Engineering
//

package implicit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMachineByName(t *testing.T) {
	machine, err := MachineByName("photon-mono-m7")
	if err != nil {
		t.Fatalf("MachineByName: %v", err)
	}
	if machine.Extension != ".pm7m" {
		t.Errorf("extension: expected .pm7m, got %s", machine.Extension)
	}
	if machine.Size.X != 6480 || machine.Size.Y != 3600 {
		t.Errorf("size: got %dx%d", machine.Size.X, machine.Size.Y)
	}

	if _, err := MachineByName("replicator-2"); err == nil {
		t.Fatal("expected error for unknown machine")
	}
}

const machinesTOML = `
[machine.bench]
vendor = "Test"
model = "Bench"
extension = ".ctb"
pixels_x = 100
pixels_y = 200
width_mm = 50.0
height_mm = 100.0

[machine.bench.exposure]
light_on_time = 1500
bottom_on_time = 4000
bottom_layers = 4
lift_height = 5.0
lift_speed = 4.0
retract_speed = 3.0

[machine.mars]
vendor = "Elegoo"
model = "Mars Pro"
extension = ".ctb"
pixels_x = 1440
pixels_y = 2560
width_mm = 68.04
height_mm = 120.96
`

func TestLoadMachines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machines.toml")
	if err := os.WriteFile(path, []byte(machinesTOML), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := LoadMachines(path); err != nil {
		t.Fatalf("LoadMachines: %v", err)
	}

	bench, err := MachineByName("bench")
	if err != nil {
		t.Fatalf("MachineByName: %v", err)
	}
	expected := Machine{
		Vendor: "Test", Model: "Bench", Extension: ".ctb",
		Size: MachineSize{X: 100, Y: 200, Xmm: 50.0, Ymm: 100.0},
		Exposure: Exposure{
			LightOnTime: 1500, BottomOnTime: 4000, BottomLayers: 4,
			LiftHeight: 5.0, LiftSpeed: 4.0, RetractSpeed: 3.0,
		},
	}
	if diff := cmp.Diff(expected, bench); diff != "" {
		t.Errorf("profile mismatch (-expected +got):\n%s", diff)
	}

	// An entry with the name of a built-in overrides it, and one with no
	// exposure block gets the defaults.
	mars, err := MachineByName("mars")
	if err != nil {
		t.Fatalf("MachineByName: %v", err)
	}
	if mars.Model != "Mars Pro" {
		t.Errorf("model: expected Mars Pro, got %s", mars.Model)
	}
	if mars.Exposure != DefaultExposure {
		t.Errorf("exposure: expected defaults, got %+v", mars.Exposure)
	}
}

func TestLoadMachinesMissingFile(t *testing.T) {
	if err := LoadMachines(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
