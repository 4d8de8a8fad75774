package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/hopalong/internal/clock"
	"github.com/san-kum/hopalong/internal/engine"
	"github.com/san-kum/hopalong/internal/levels"
	"github.com/san-kum/hopalong/internal/orbit"
	"github.com/san-kum/hopalong/internal/settings"
)

const (
	DefaultLevels          = 7
	DefaultSubsets         = 7
	DefaultPointsPerSubset = 32000
	DefaultFPS             = 60
	DefaultWorkers         = 4
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Levels          int      `yaml:"levels"`
	Subsets         int      `yaml:"subsets"`
	PointsPerSubset int      `yaml:"points_per_subset"`
	LevelDepth      float64  `yaml:"level_depth"`
	Scale           float64  `yaml:"scale"`
	CameraBound     float64  `yaml:"camera_bound"`
	CameraEasing    float64  `yaml:"camera_easing"`
	RegenInterval   Duration `yaml:"regen_interval"`
	FPS             int      `yaml:"fps"`
	Speed           float64  `yaml:"speed"`
	RotationSpeed   float64  `yaml:"rotation_speed"`
	FieldOfView     float64  `yaml:"field_of_view"`
	Curated         bool     `yaml:"curated"`
	Seed            uint64   `yaml:"seed"`
	Saturation      float64  `yaml:"saturation"`
	Lightness       float64  `yaml:"lightness"`
	Workers         int      `yaml:"workers"`
}

// Duration is a time.Duration written as "3s" in yaml.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: regen_interval: %w", err)
	}
	*d = Duration(v)
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Levels:          DefaultLevels,
		Subsets:         DefaultSubsets,
		PointsPerSubset: DefaultPointsPerSubset,
		LevelDepth:      levels.DefaultLevelDepth,
		Scale:           orbit.DefaultScale,
		CameraBound:     clock.DefaultCameraBound,
		CameraEasing:    clock.DefaultEasing,
		RegenInterval:   Duration(clock.DefaultRegenInterval),
		FPS:             DefaultFPS,
		Speed:           settings.DefaultSpeed,
		RotationSpeed:   settings.DefaultRotationSpeed,
		FieldOfView:     settings.DefaultFieldOfView,
		Saturation:      orbit.DefaultSaturation,
		Lightness:       orbit.DefaultLightness,
		Workers:         DefaultWorkers,
	}
}

// Load overlays the file at path on the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Levels <= 0:
		return fmt.Errorf("%w: levels=%d", ErrInvalid, c.Levels)
	case c.Subsets <= 0:
		return fmt.Errorf("%w: subsets=%d", ErrInvalid, c.Subsets)
	case c.PointsPerSubset <= 0:
		return fmt.Errorf("%w: points_per_subset=%d", ErrInvalid, c.PointsPerSubset)
	case c.LevelDepth <= 0:
		return fmt.Errorf("%w: level_depth=%v", ErrInvalid, c.LevelDepth)
	case c.Scale <= 0:
		return fmt.Errorf("%w: scale=%v", ErrInvalid, c.Scale)
	case c.RegenInterval <= 0:
		return fmt.Errorf("%w: regen_interval=%v", ErrInvalid, time.Duration(c.RegenInterval))
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps=%d", ErrInvalid, c.FPS)
	case c.Speed < 0:
		return fmt.Errorf("%w: speed=%v", ErrInvalid, c.Speed)
	}
	return nil
}

// FrameInterval is the period of the per-frame task.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// Settings is the initial settings bundle described by the config.
func (c *Config) Settings() settings.Snapshot {
	return settings.Snapshot{
		Speed:         c.Speed,
		RotationSpeed: c.RotationSpeed,
		FieldOfView:   c.FieldOfView,
		CuratedMode:   c.Curated,
	}
}

// Engine converts the config into engine construction parameters.
func (c *Config) Engine() engine.Config {
	return engine.Config{
		Levels:          c.Levels,
		Subsets:         c.Subsets,
		PointsPerSubset: c.PointsPerSubset,
		LevelDepth:      c.LevelDepth,
		Scale:           c.Scale,
		CameraBound:     c.CameraBound,
		CameraEasing:    c.CameraEasing,
		Workers:         c.Workers,
		Seed:            c.Seed,
		Settings:        c.Settings(),
	}
}
