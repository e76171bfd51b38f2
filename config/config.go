// Package config loads pipeline configuration from YAML. The reconciliation
// tolerances and metadata defaults are deliberately not hard-coded in the
// pipeline: deployments tune them per product, so they live in a small
// config file converted into normalize options at startup.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/leofalp/sceneplan/core/normalize"
)

// Config is the YAML-mapped pipeline configuration.
type Config struct {
	Tolerance Tolerance `yaml:"tolerance"`
	Defaults  Defaults  `yaml:"defaults"`

	// LenientIDs enables synthesized scene ids for plans missing them.
	LenientIDs bool `yaml:"lenient_ids"`
}

// Tolerance is the reconciliation acceptance band.
type Tolerance struct {
	// Relative is a fraction of the requested total duration, e.g. 0.10.
	Relative float64 `yaml:"relative"`
	// FloorSec is the absolute minimum band in seconds, e.g. 0.5.
	FloorSec float64 `yaml:"floor_sec"`
}

// Defaults fill plan metadata when the caller's constraints leave the
// corresponding field unset.
type Defaults struct {
	AspectRatio string `yaml:"aspect_ratio"`
	FPS         int    `yaml:"fps"`
	Language    string `yaml:"language"`
}

// Default returns the built-in configuration, matching the normalize
// package's own defaults.
func Default() Config {
	return Config{
		Tolerance: Tolerance{
			Relative: normalize.DefaultToleranceRelative,
			FloorSec: normalize.DefaultToleranceFloorSec,
		},
		Defaults: Defaults{
			AspectRatio: "16:9",
			FPS:         30,
			Language:    "en",
		},
	}
}

// Load reads a YAML config file. Fields absent from the file keep their
// built-in defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Options converts the configuration into normalize options, ready to pass
// to [normalize.Normalize].
func (c Config) Options() []normalize.Option {
	opts := []normalize.Option{
		normalize.WithTolerance(c.Tolerance.Relative, c.Tolerance.FloorSec),
		normalize.WithDefaults(c.Defaults.AspectRatio, c.Defaults.FPS, c.Defaults.Language),
	}
	if c.LenientIDs {
		opts = append(opts, normalize.WithLenientIDs())
	}
	return opts
}
