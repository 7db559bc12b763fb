package experiment

import (
	"context"
	"math/rand"

	errorsmod "cosmossdk.io/errors"
	"github.com/kyjohnso/kessler/internal/collision"
	"github.com/kyjohnso/kessler/internal/config"
	"github.com/kyjohnso/kessler/internal/debris"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/octree"
	"github.com/kyjohnso/kessler/internal/physics"
	"github.com/kyjohnso/kessler/internal/population"
	"github.com/kyjohnso/kessler/internal/sim"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"
)

// Experiment is one seeded, configured simulation.
type Experiment struct {
	cfg        config.Config
	registry   *Registry
	simulator  *sim.Simulator
	randSource *rand.Rand
	log        zerolog.Logger
}

func New(cfg *config.Config, registry *Registry, log zerolog.Logger) *Experiment {
	return &Experiment{
		cfg:        *cfg,
		registry:   registry,
		randSource: rand.New(rand.NewSource(cfg.Seed)),
		log:        log,
	}
}

// Setup validates the config and builds the population and simulator. The
// scenario and the debris generator draw from the same seeded source, so a
// seed fixes the whole run.
func (e *Experiment) Setup(extra ...sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	body := physics.Earth()

	build, err := e.registry.GetScenario(e.cfg.Scenario)
	if err != nil {
		return err
	}
	objs, err := build(body, e.randSource, &e.cfg)
	if err != nil {
		return errorsmod.Wrapf(err, "scenario %s", e.cfg.Scenario)
	}

	pop := population.New(len(objs))
	for _, o := range objs {
		pop.Add(o)
	}

	integ, err := e.registry.GetIntegrator(e.cfg.Integrator, body)
	if err != nil {
		return err
	}

	params := debris.DefaultParams()
	params.MinFragments = e.cfg.Debris.MinFragments
	params.MaxFragments = e.cfg.Debris.MaxFragments
	params.MassRetention = e.cfg.Debris.MassRetention
	params.KickMin = e.cfg.Debris.KickMin
	params.KickMax = e.cfg.Debris.KickMax

	detector := collision.NewDetector()
	detector.IgnoreSiblings = e.cfg.Debris.IgnoreSiblings

	clock := sim.NewClock(e.cfg.Dt)
	clock.SetSpeed(e.cfg.Speed)

	e.simulator = sim.New(pop, integ, debris.New(params, e.randSource),
		sim.WithBody(body),
		sim.WithClock(clock),
		sim.WithIndex(octree.New(r3.Vec{}, e.cfg.Octree.HalfSize, e.cfg.Octree.Capacity, e.cfg.Octree.MaxDepth)),
		sim.WithDetector(detector),
		sim.WithLogger(e.log),
	)

	for _, m := range e.registry.DefaultMetrics(body) {
		e.simulator.AddMetric(m)
	}
	for _, m := range extra {
		e.simulator.AddMetric(m)
	}

	e.log.Debug().
		Str("scenario", e.cfg.Scenario).
		Str("integrator", integ.Name()).
		Int("objects", pop.Len()).
		Int64("seed", e.cfg.Seed).
		Msg("experiment ready")
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, errorsmod.Wrap(dynamo.ErrInvalidConfig, "experiment not setup")
	}
	return e.simulator.Run(ctx, e.SimConfig())
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		Seed:          e.cfg.Seed,
		SampleEvery:   e.cfg.SampleEvery,
		ValidateState: true,
	}
}

func (e *Experiment) Config() config.Config { return e.cfg }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

// Build is a sim.Factory body: a ready simulator for cfg under seed.
func Build(cfg *config.Config, registry *Registry, seed int64, log zerolog.Logger) (*sim.Simulator, error) {
	c := *cfg
	c.Seed = seed
	exp := New(&c, registry, log)
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp.GetSimulator(), nil
}
