package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/kyjohnso/kessler/internal/config"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/physics"
	"github.com/rs/zerolog"
)

func TestRegistryScenarios(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"test_satellites", "stress", "collision_pair", "near_miss", "head_on", "mixed", "catalog"} {
		if _, err := r.GetScenario(name); err != nil {
			t.Errorf("expected scenario %s, got %v", name, err)
		}
	}

	if _, err := r.GetScenario("asteroid_belt"); !errors.Is(err, dynamo.ErrUnknownScenario) {
		t.Errorf("expected ErrUnknownScenario, got %v", err)
	}
	if _, err := r.GetIntegrator("euler", physics.Earth()); !errors.Is(err, dynamo.ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}
}

func TestExperimentScenarios(t *testing.T) {
	tests := []struct {
		name       string
		scenario   string
		dt         float64
		duration   float64
		collisions int
		live       int
	}{
		{"satellites survive", "test_satellites", 1, 60, 0, 3},
		{"pair collides", "collision_pair", 1, 1, 1, -1},
		{"near miss", "near_miss", 1, 60, 0, 2},
		{"head on", "head_on", 1, 20, 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Scenario = tt.scenario
			cfg.Dt = tt.dt
			cfg.Duration = tt.duration

			exp := New(cfg, NewRegistry(), zerolog.Nop())
			if err := exp.Setup(); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			result, err := exp.Run(context.Background())
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}

			if len(result.Events) != tt.collisions {
				t.Errorf("expected %d collisions, got %d", tt.collisions, len(result.Events))
			}
			if tt.live >= 0 && result.FinalCounts.Live != tt.live {
				t.Errorf("expected %d live objects, got %d", tt.live, result.FinalCounts.Live)
			}
			if _, ok := result.Metrics["collisions"]; !ok {
				t.Error("expected standard metrics attached")
			}
		})
	}
}

func TestExperimentSeedReproducible(t *testing.T) {
	run := func() []float64 {
		cfg := config.DefaultConfig()
		cfg.Scenario = "stress"
		cfg.Objects = 50
		cfg.Dt = 10
		cfg.Duration = 100
		cfg.Seed = 99

		exp := New(cfg, NewRegistry(), zerolog.Nop())
		if err := exp.Setup(); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		result, err := exp.Run(context.Background())
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		out := make([]float64, 0, len(result.Final))
		for _, o := range result.Final {
			out = append(out, o.State.Position.X, o.State.Velocity.Z)
		}
		return out
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("expected equal lengths, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("value %d differs: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestExperimentRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Dt = -1

	exp := New(cfg, NewRegistry(), zerolog.Nop())
	if err := exp.Setup(); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := exp.Run(context.Background()); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected run before setup to fail, got %v", err)
	}
}

func TestCatalogScenarioNeedsPath(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scenario = "catalog"

	exp := New(cfg, NewRegistry(), zerolog.Nop())
	if err := exp.Setup(); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuildOverridesSeed(t *testing.T) {
	cfg := config.DefaultConfig()
	s, err := Build(cfg, NewRegistry(), 7, zerolog.Nop())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if s.Population().Len() != 3 {
		t.Errorf("expected 3 test satellites, got %d", s.Population().Len())
	}
	if cfg.Seed != config.DefaultSeed {
		t.Error("expected caller config untouched")
	}
}
