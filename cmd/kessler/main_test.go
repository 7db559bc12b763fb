package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func newRunCommand(t *testing.T) *cobra.Command {
	t.Helper()
	preset, configFile, dataDir = "", "", ""
	cmd := &cobra.Command{Use: "run"}
	addRunFlags(cmd)
	return cmd
}

func TestResolveConfigPrecedence(t *testing.T) {
	cmd := newRunCommand(t)

	path := filepath.Join(t.TempDir(), "kessler.yaml")
	if err := os.WriteFile(path, []byte("duration: 30\nseed: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	configFile = path
	preset = "impact"
	if err := cmd.Flags().Set("seed", "99"); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(cmd, []string{"head_on"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if cfg.Scenario != "head_on" {
		t.Errorf("expected head_on, got %s", cfg.Scenario)
	}
	if cfg.Dt != 0.1 {
		t.Errorf("expected preset dt 0.1, got %v", cfg.Dt)
	}
	if cfg.Duration != 30 {
		t.Errorf("expected config file duration 30, got %v", cfg.Duration)
	}
	if cfg.Seed != 99 {
		t.Errorf("expected flag seed 99, got %d", cfg.Seed)
	}
}

func TestResolveConfigUnknownPreset(t *testing.T) {
	cmd := newRunCommand(t)
	preset = "nope"
	if _, err := resolveConfig(cmd, []string{"stress"}); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestResolveConfigInvalidFlag(t *testing.T) {
	cmd := newRunCommand(t)
	if err := cmd.Flags().Set("dt", "-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveConfig(cmd, nil); err == nil {
		t.Error("expected validation error for negative dt")
	}
}
