package config

import "sort"

var Presets = map[string]*Config{
	"classic": {
		Levels: 7, Subsets: 7, PointsPerSubset: 32000,
	},
	"terminal": {
		Levels: 5, Subsets: 7, PointsPerSubset: 1500,
	},
	"dense": {
		Levels: 4, Subsets: 9, PointsPerSubset: 6000, Speed: 4,
	},
	"calm": {
		Levels: 5, Subsets: 5, PointsPerSubset: 2000, Speed: 2, RotationSpeed: 0.001,
	},
}

// GetPreset returns the defaults with the named preset's non-zero fields
// applied, or nil if there is no such preset.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Levels = p.Levels
	cfg.Subsets = p.Subsets
	cfg.PointsPerSubset = p.PointsPerSubset
	if p.Speed != 0 {
		cfg.Speed = p.Speed
	}
	if p.RotationSpeed != 0 {
		cfg.RotationSpeed = p.RotationSpeed
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
