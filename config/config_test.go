package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Tolerance.Relative != 0.10 || cfg.Tolerance.FloorSec != 0.5 {
		t.Errorf("default tolerance = %+v, want 0.10 / 0.5", cfg.Tolerance)
	}
	if cfg.Defaults.AspectRatio != "16:9" || cfg.Defaults.FPS != 30 || cfg.Defaults.Language != "en" {
		t.Errorf("defaults = %+v", cfg.Defaults)
	}
	if cfg.LenientIDs {
		t.Error("lenient ids must be off by default")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sceneplan.yaml")
	content := []byte(`
tolerance:
  relative: 0.05
  floor_sec: 0.25
defaults:
  aspect_ratio: "9:16"
  fps: 60
lenient_ids: true
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Tolerance.Relative != 0.05 || cfg.Tolerance.FloorSec != 0.25 {
		t.Errorf("tolerance = %+v, want the file values", cfg.Tolerance)
	}
	if cfg.Defaults.AspectRatio != "9:16" || cfg.Defaults.FPS != 60 {
		t.Errorf("defaults = %+v, want the file values", cfg.Defaults)
	}
	// Unset fields keep their defaults.
	if cfg.Defaults.Language != "en" {
		t.Errorf("language = %q, want default en preserved", cfg.Defaults.Language)
	}
	if !cfg.LenientIDs {
		t.Error("lenient_ids not honored")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.LenientIDs = true
	opts := cfg.Options()
	if len(opts) != 3 {
		t.Errorf("Options() returned %d options, want tolerance + defaults + lenient", len(opts))
	}

	cfg.LenientIDs = false
	if opts := cfg.Options(); len(opts) != 2 {
		t.Errorf("Options() returned %d options, want 2 without lenient mode", len(opts))
	}
}
