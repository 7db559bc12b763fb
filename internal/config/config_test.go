package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kyjohnso/kessler/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scenario != "test_satellites" {
		t.Errorf("expected scenario test_satellites, got %s", cfg.Scenario)
	}
	if cfg.Integrator != "symplectic_euler" {
		t.Errorf("expected symplectic_euler, got %s", cfg.Integrator)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"zero speed", func(c *Config) { c.Speed = 0 }},
		{"negative objects", func(c *Config) { c.Objects = -1 }},
		{"zero half size", func(c *Config) { c.Octree.HalfSize = 0 }},
		{"zero capacity", func(c *Config) { c.Octree.Capacity = 0 }},
		{"zero depth", func(c *Config) { c.Octree.MaxDepth = 0 }},
		{"min fragments below two", func(c *Config) { c.Debris.MinFragments = 1 }},
		{"max below min", func(c *Config) { c.Debris.MaxFragments = 1 }},
		{"no mass retained", func(c *Config) { c.Debris.MassRetention = 0 }},
		{"zero kick", func(c *Config) { c.Debris.KickMin = 0 }},
		{"inverted kick", func(c *Config) { c.Debris.KickMax = 0.05 }},
		{"negative broadcast", func(c *Config) { c.Server.BroadcastHz = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kessler.yaml")

	cfg := DefaultConfig()
	cfg.Scenario = "stress"
	cfg.Objects = 250
	cfg.Octree.MaxDepth = 8
	cfg.Debris.IgnoreSiblings = false

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("dt: 5\noctree:\n  capacity: 8\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Dt != 5 || cfg.Octree.Capacity != 8 {
		t.Errorf("expected file values, got dt=%f capacity=%d", cfg.Dt, cfg.Octree.Capacity)
	}
	if cfg.Octree.MaxDepth != DefaultMaxDepth || cfg.Duration != DefaultDuration {
		t.Errorf("expected defaults for missing keys, got %+v", cfg)
	}
}

func TestLoadLayered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layered.yaml")
	if err := os.WriteFile(path, []byte("scenario: stress\nobjects: 300\nlog:\n  level: debug\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("KESSLER_OBJECTS", "700")
	t.Setenv("KESSLER_OCTREE_MAX_DEPTH", "9")

	cfg, err := LoadLayered(path)
	if err != nil {
		t.Fatalf("layered load failed: %v", err)
	}

	if cfg.Scenario != "stress" {
		t.Errorf("expected scenario from file, got %s", cfg.Scenario)
	}
	if cfg.Objects != 700 {
		t.Errorf("expected env to override file, got %d", cfg.Objects)
	}
	if cfg.Octree.MaxDepth != 9 {
		t.Errorf("expected nested env override, got %d", cfg.Octree.MaxDepth)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Dt != DefaultDt || !cfg.Debris.IgnoreSiblings {
		t.Errorf("expected defaults underneath, got %+v", cfg)
	}
}

func TestLoadLayeredWithoutFile(t *testing.T) {
	cfg, err := LoadLayered("")
	if err != nil {
		t.Fatalf("layered load failed: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadLayeredOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "over.yaml")
	if err := os.WriteFile(path, []byte("duration: 99\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := DefaultConfig()
	base.Apply(GetPreset("head_on", "impact"))

	cfg, err := LoadLayeredOver(base, path)
	if err != nil {
		t.Fatalf("layered load failed: %v", err)
	}
	if cfg.Dt != 0.1 {
		t.Errorf("expected preset dt 0.1, got %v", cfg.Dt)
	}
	if cfg.Duration != 99 {
		t.Errorf("expected file to override preset duration, got %v", cfg.Duration)
	}
}

func TestApply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Apply(&Config{Dt: 10, Objects: 5000})

	if cfg.Dt != 10 || cfg.Objects != 5000 {
		t.Errorf("expected preset values, got dt=%f objects=%d", cfg.Dt, cfg.Objects)
	}
	if cfg.Integrator != "symplectic_euler" || cfg.Duration != DefaultDuration {
		t.Error("expected zero fields to leave config untouched")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("stress", "dense")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Objects != 5000 {
		t.Errorf("expected 5000 objects, got %d", cfg.Objects)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("stress", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "small")
	if cfg != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("test_satellites")
	if len(presets) != 3 || presets[0] != "day" {
		t.Errorf("expected sorted presets, got %v", presets)
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestPresetsValidate(t *testing.T) {
	for scenario := range Presets {
		for _, name := range ListPresets(scenario) {
			cfg := DefaultConfig()
			cfg.Apply(GetPreset(scenario, name))
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", scenario, name, err)
			}
			if cfg.Scenario != scenario {
				t.Errorf("%s/%s: expected scenario %s, got %s", scenario, name, scenario, cfg.Scenario)
			}
		}
	}
}
