//
// Copyright (c) 2026 Osmose Engineering
//

package implicit

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// MachineSize is the build area: pixels and millimeters.
type MachineSize struct {
	X, Y     int
	Xmm, Ymm float64
}

// Exposure bundles the per-layer light and motion parameters a machine
// profile carries as defaults.
type Exposure struct {
	LightOnTime   float64 `toml:"light_on_time"`   // milliseconds
	BottomOnTime  float64 `toml:"bottom_on_time"`  // milliseconds
	BottomLayers  int     `toml:"bottom_layers"`   //
	LiftHeight    float64 `toml:"lift_height"`     // mm
	LiftSpeed     float64 `toml:"lift_speed"`      // mm/s
	RetractSpeed  float64 `toml:"retract_speed"`   // mm/s
	LightOffDelay float64 `toml:"light_off_delay"` // milliseconds
}

// Machine is a named printer profile.
type Machine struct {
	Vendor    string      `toml:"vendor"`
	Model     string      `toml:"model"`
	Extension string      `toml:"extension"`
	Size      MachineSize `toml:"-"`
	Exposure  Exposure    `toml:"exposure"`
}

// DefaultExposure is used when no machine profile is selected. The values
// match the defaults the archive exporters have always shipped.
var DefaultExposure = Exposure{
	LightOnTime:  2000,
	BottomOnTime: 5000,
	BottomLayers: 5,
	LiftHeight:   6.0,
	LiftSpeed:    5.0,
	RetractSpeed: 2.0,
}

// Machines is the built-in profile table, extendable from a TOML file.
var Machines = map[string]Machine{
	"photon": {
		Vendor: "Anycubic", Model: "Photon", Extension: ".pm7m",
		Size:     MachineSize{X: 1440, Y: 2560, Xmm: 68.04, Ymm: 120.96},
		Exposure: DefaultExposure,
	},
	"photon-mono-m7": {
		Vendor: "Anycubic", Model: "Photon Mono M7 Max", Extension: ".pm7m",
		Size:     MachineSize{X: 6480, Y: 3600, Xmm: 298.08, Ymm: 165.60},
		Exposure: DefaultExposure,
	},
	"mars": {
		Vendor: "Elegoo", Model: "Mars", Extension: ".ctb",
		Size:     MachineSize{X: 1440, Y: 2560, Xmm: 68.04, Ymm: 120.96},
		Exposure: DefaultExposure,
	},
	"mars-3": {
		Vendor: "Elegoo", Model: "Mars 3", Extension: ".ctb",
		Size:     MachineSize{X: 4098, Y: 2560, Xmm: 143.43, Ymm: 89.6},
		Exposure: DefaultExposure,
	},
}

// machineTOML is the file schema: size fields flattened for readability.
type machineTOML struct {
	Vendor    string   `toml:"vendor"`
	Model     string   `toml:"model"`
	Extension string   `toml:"extension"`
	PixelsX   int      `toml:"pixels_x"`
	PixelsY   int      `toml:"pixels_y"`
	WidthMM   float64  `toml:"width_mm"`
	HeightMM  float64  `toml:"height_mm"`
	Exposure  Exposure `toml:"exposure"`
}

// LoadMachines merges machine profiles from a TOML file into the table.
// Entries with a name already present override the built-in profile.
func LoadMachines(path string) error {
	var file struct {
		Machine map[string]machineTOML `toml:"machine"`
	}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("machine profiles %s: %w", path, err)
	}
	for name, m := range file.Machine {
		exp := m.Exposure
		if exp == (Exposure{}) {
			exp = DefaultExposure
		}
		Machines[name] = Machine{
			Vendor:    m.Vendor,
			Model:     m.Model,
			Extension: m.Extension,
			Size:      MachineSize{X: m.PixelsX, Y: m.PixelsY, Xmm: m.WidthMM, Ymm: m.HeightMM},
			Exposure:  exp,
		}
	}
	return nil
}

// MachineByName looks up a profile.
func MachineByName(name string) (Machine, error) {
	m, ok := Machines[name]
	if !ok {
		return Machine{}, fmt.Errorf("unknown machine '%s'", name)
	}
	return m, nil
}
