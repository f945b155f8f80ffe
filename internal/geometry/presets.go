package geometry

import (
	"fmt"
	"math"
	"sort"
)

// DetectorConfig bundles everything the display pipeline needs to know about
// a particular detector: its dimensions, the empirically tuned cap margins,
// and the axis realignment (if any) that brings the simulation frame back to
// cylinder-axis-along-Z.
type DetectorConfig struct {
	Name     string
	Detector Detector
	Margins  CapMargins
	// Realignment is nil when the source frame already has the cylinder
	// axis on Z.
	Realignment *Rotation
}

// epsMargin is the near-zero cap margin used when a detector's sensors are
// known to be flush with the nominal cylinder height.
const epsMargin = 0.01

// wcteMargin is the hand-tuned margin for the WCTE variants. The top and
// bottom mPMT rows sit well inside the nominal height and the modules are
// spherical, so the boundary has to be read off the actual sensor z
// coordinates rather than derived from the height.
const wcteMargin = 10.0

// presets holds the known detector configurations, dimensions in cm.
var presets = map[string]DetectorConfig{
	"SK": {
		Name:     "SK",
		Detector: Detector{Height: 3620.0, CylinderRadius: 3368.15 / 2, SensorRadius: 25.4},
		Margins:  CapMargins{Top: epsMargin, Bottom: epsMargin},
	},
	"HK": {
		Name:     "HK",
		Detector: Detector{Height: 6575.1, CylinderRadius: 6480.0 / 2, SensorRadius: 25.4},
		Margins:  CapMargins{Top: epsMargin, Bottom: epsMargin},
	},
	"HK_realistic": {
		Name:     "HK_realistic",
		Detector: Detector{Height: 6701.41, CylinderRadius: 3242.96, SensorRadius: 25.4},
		Margins:  CapMargins{Top: epsMargin, Bottom: epsMargin},
	},
	"WCTE": {
		Name:     "WCTE",
		Detector: Detector{Height: 271.4, CylinderRadius: 307.6 / 2, SensorRadius: 4.0},
		Margins:  CapMargins{Top: wcteMargin, Bottom: wcteMargin},
	},
	// WCTE as simulated in WCSim, beam axis on Z; rotate about x by pi/2
	// to put the cylinder axis back on Z.
	"WCTE_r": {
		Name:        "WCTE_r",
		Detector:    Detector{Height: 271.4, CylinderRadius: 307.6 / 2, SensorRadius: 4.0},
		Margins:     CapMargins{Top: wcteMargin, Bottom: wcteMargin},
		Realignment: RotationX(math.Pi / 2),
	},
	"DEMO": {
		Name:        "DEMO",
		Detector:    Detector{Height: 558.92 * 2, CylinderRadius: 558.92, SensorRadius: 25.4},
		Margins:     CapMargins{Top: wcteMargin, Bottom: wcteMargin},
		Realignment: RotationX(math.Pi / 2),
	},
}

// Preset returns the configuration for a named detector.
func Preset(name string) (DetectorConfig, error) {
	cfg, ok := presets[name]
	if !ok {
		return DetectorConfig{}, fmt.Errorf("unknown detector %q (valid: %v)", name, PresetNames())
	}
	return cfg, nil
}

// PresetNames returns the known detector names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
