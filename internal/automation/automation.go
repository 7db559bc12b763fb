package automation

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kyjohnso/kessler/internal/config"
	"github.com/kyjohnso/kessler/internal/experiment"
	"github.com/kyjohnso/kessler/internal/sim"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Plan defines a scripted sequence of runs
type Plan struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Steps       []PlanStep `yaml:"steps"`
}

// PlanStep overlays its non-zero fields on the base config for one run
type PlanStep struct {
	Scenario   string  `yaml:"scenario"`
	Integrator string  `yaml:"integrator"`
	Duration   float64 `yaml:"duration"`
	Dt         float64 `yaml:"dt"`
	Objects    int     `yaml:"objects"`
	Seed       int64   `yaml:"seed"`
	SaveAs     string  `yaml:"save_as"`
}

// LoadPlan loads a plan from a YAML file
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, err
	}

	return &plan, nil
}

// StepResult is the outcome of one plan step with the config it ran under.
type StepResult struct {
	Config config.Config
	Result *sim.Result
	Wall   time.Duration
	SaveAs string
}

// RunPlan executes all steps in a plan
func RunPlan(ctx context.Context, plan *Plan, base *config.Config, registry *experiment.Registry, log zerolog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(plan.Steps))

	for i, step := range plan.Steps {
		log.Info().Int("step", i+1).Int("of", len(plan.Steps)).Str("scenario", step.Scenario).Msg("plan step")

		cfg := *base
		cfg.Apply(&config.Config{
			Scenario:   step.Scenario,
			Integrator: step.Integrator,
			Dt:         step.Dt,
			Duration:   step.Duration,
			Objects:    step.Objects,
			Seed:       step.Seed,
		})

		exp := experiment.New(&cfg, registry, log)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		start := time.Now()
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Config: cfg, Result: result, Wall: time.Since(start), SaveAs: step.SaveAs})
	}

	return results, nil
}

// Outcome condenses one run for aggregation.
type Outcome struct {
	Seed        int64   `json:"seed"`
	Objects     int     `json:"objects"`
	Collisions  int     `json:"collisions"`
	FinalDebris int     `json:"final_debris"`
	PeakDebris  float64 `json:"peak_debris"`
	EnergyDrift float64 `json:"energy_drift"`
}

func outcome(seed int64, objects int, r *sim.Result) Outcome {
	return Outcome{
		Seed:        seed,
		Objects:     objects,
		Collisions:  len(r.Events),
		FinalDebris: r.FinalCounts.Debris,
		PeakDebris:  r.Metrics["peak_debris"],
		EnergyDrift: r.EnergyDrift,
	}
}

// Summary is the mean and standard deviation of the cascade size across runs.
type Summary struct {
	Runs             int     `json:"runs"`
	MeanCollisions   float64 `json:"mean_collisions"`
	StdDevCollisions float64 `json:"stddev_collisions"`
	MeanDebris       float64 `json:"mean_final_debris"`
	StdDevDebris     float64 `json:"stddev_final_debris"`
	MaxDebris        int     `json:"max_final_debris"`
}

func Summarize(outcomes []Outcome) Summary {
	s := Summary{Runs: len(outcomes)}
	if len(outcomes) == 0 {
		return s
	}

	collisions := make([]float64, len(outcomes))
	debris := make([]float64, len(outcomes))
	for i, o := range outcomes {
		collisions[i] = float64(o.Collisions)
		debris[i] = float64(o.FinalDebris)
		if o.FinalDebris > s.MaxDebris {
			s.MaxDebris = o.FinalDebris
		}
	}

	if len(outcomes) == 1 {
		s.MeanCollisions, s.MeanDebris = collisions[0], debris[0]
		return s
	}
	s.MeanCollisions, s.StdDevCollisions = stat.MeanStdDev(collisions, nil)
	s.MeanDebris, s.StdDevDebris = stat.MeanStdDev(debris, nil)
	return s
}

// MonteCarloConfig defines a Monte Carlo study over seeds
type MonteCarloConfig struct {
	Base     *config.Config
	Runs     int
	SeedFrom int64
}

// RunMonteCarlo runs the base config under Runs consecutive seeds
// concurrently and summarises the cascade size.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, registry *experiment.Registry, log zerolog.Logger) ([]Outcome, Summary, error) {
	factory := func(seed int64) (*sim.Simulator, error) {
		return experiment.Build(mc.Base, registry, seed, log)
	}

	simCfg := sim.Config{
		Dt:            mc.Base.Dt,
		Duration:      mc.Base.Duration,
		SampleEvery:   mc.Base.SampleEvery,
		ValidateState: true,
	}

	results, err := sim.NewEnsemble(factory, mc.Runs, mc.SeedFrom).Run(ctx, simCfg)
	if err != nil {
		return nil, Summary{}, err
	}

	outcomes := make([]Outcome, len(results))
	for i, r := range results {
		outcomes[i] = outcome(mc.SeedFrom+int64(i), mc.Base.Objects, r)
	}
	return outcomes, Summarize(outcomes), nil
}

// Sweep varies the stress population size
type Sweep struct {
	Base  *config.Config
	Sizes []int
	Runs  int
}

// SweepResult holds the Monte Carlo summary at one population size
type SweepResult struct {
	Objects int     `json:"objects"`
	Summary Summary `json:"summary"`
}

// RunSweep executes a population-size sweep
func RunSweep(ctx context.Context, sweep *Sweep, registry *experiment.Registry, log zerolog.Logger) ([]SweepResult, error) {
	runs := sweep.Runs
	if runs < 1 {
		runs = 1
	}

	results := make([]SweepResult, 0, len(sweep.Sizes))
	for i, n := range sweep.Sizes {
		cfg := *sweep.Base
		cfg.Objects = n

		_, summary, err := RunMonteCarlo(ctx, &MonteCarloConfig{Base: &cfg, Runs: runs, SeedFrom: cfg.Seed}, registry, log)
		if err != nil {
			return nil, fmt.Errorf("size %d: %w", n, err)
		}

		results = append(results, SweepResult{Objects: n, Summary: summary})
		log.Info().
			Int("size", i+1).
			Int("of", len(sweep.Sizes)).
			Int("objects", n).
			Float64("mean_collisions", summary.MeanCollisions).
			Msg("sweep point")
	}

	return results, nil
}
