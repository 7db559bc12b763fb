package experiment

import (
	"math/rand"
	"sort"

	errorsmod "cosmossdk.io/errors"
	"github.com/kyjohnso/kessler/internal/config"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/integrators"
	"github.com/kyjohnso/kessler/internal/metrics"
	"github.com/kyjohnso/kessler/internal/physics"
	"github.com/kyjohnso/kessler/internal/population"
	"github.com/kyjohnso/kessler/internal/scenario"
	"github.com/kyjohnso/kessler/internal/sim"
)

// ScenarioFunc builds the initial objects of a named scenario.
type ScenarioFunc func(body physics.CentralBody, rng *rand.Rand, cfg *config.Config) ([]population.Object, error)

type Registry struct {
	scenarios map[string]ScenarioFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		scenarios: make(map[string]ScenarioFunc),
	}

	r.scenarios["test_satellites"] = func(b physics.CentralBody, _ *rand.Rand, _ *config.Config) ([]population.Object, error) {
		return scenario.TestSatellites(b), nil
	}
	r.scenarios["stress"] = func(b physics.CentralBody, rng *rand.Rand, cfg *config.Config) ([]population.Object, error) {
		return scenario.Stress(b, rng, cfg.Objects), nil
	}
	r.scenarios["collision_pair"] = func(b physics.CentralBody, _ *rand.Rand, _ *config.Config) ([]population.Object, error) {
		return scenario.Pair(b, scenario.PairSeparation), nil
	}
	r.scenarios["near_miss"] = func(b physics.CentralBody, _ *rand.Rand, _ *config.Config) ([]population.Object, error) {
		return scenario.Pair(b, scenario.NearMissSeparation), nil
	}
	r.scenarios["head_on"] = func(b physics.CentralBody, _ *rand.Rand, _ *config.Config) ([]population.Object, error) {
		return scenario.HeadOn(b, scenario.PairSeparation, scenario.HeadOnLead), nil
	}
	r.scenarios["mixed"] = func(b physics.CentralBody, rng *rand.Rand, cfg *config.Config) ([]population.Object, error) {
		return append(scenario.TestSatellites(b), scenario.Stress(b, rng, cfg.Objects)...), nil
	}
	r.scenarios["catalog"] = func(_ physics.CentralBody, _ *rand.Rand, cfg *config.Config) ([]population.Object, error) {
		if cfg.Catalog == "" {
			return nil, errorsmod.Wrap(dynamo.ErrInvalidConfig, "catalog scenario needs a catalog path")
		}
		return scenario.LoadCatalog(cfg.Catalog)
	}

	return r
}

// Register adds or replaces a scenario.
func (r *Registry) Register(name string, fn ScenarioFunc) {
	r.scenarios[name] = fn
}

func (r *Registry) GetScenario(name string) (ScenarioFunc, error) {
	fn, ok := r.scenarios[name]
	if !ok {
		return nil, errorsmod.Wrapf(dynamo.ErrUnknownScenario, "%s (available: %v)", name, r.ListScenarios())
	}
	return fn, nil
}

func (r *Registry) GetIntegrator(name string, body physics.CentralBody) (integrators.Stepper, error) {
	return integrators.New(name, body)
}

func (r *Registry) ListScenarios() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	return integrators.Names()
}

func (r *Registry) DefaultMetrics(body physics.CentralBody) []sim.Metric {
	return metrics.Standard(body.GM)
}
