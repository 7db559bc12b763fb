package sim

import (
	"context"
	"math"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/kyjohnso/kessler/internal/collision"
	"github.com/kyjohnso/kessler/internal/debris"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/integrators"
	"github.com/kyjohnso/kessler/internal/octree"
	"github.com/kyjohnso/kessler/internal/physics"
	"github.com/kyjohnso/kessler/internal/population"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Simulator runs the per-step pipeline: advance the clock, integrate every
// state, rebuild the octree, detect collisions, then break up the colliding
// pairs. Stages never overlap.
type Simulator struct {
	pop        *population.Population
	body       physics.CentralBody
	integrator integrators.Stepper
	tree       *octree.Tree
	detector   *collision.Detector
	generator  *debris.Generator
	clock      *Clock
	metrics    []Metric
	observers  []Observer

	log       zerolog.Logger
	anomalies *rate.Limiter

	step    int
	skipped []dynamo.ObjectID
	events  []debris.Event
	report  StepReport
}

type Option func(*Simulator)

func WithBody(b physics.CentralBody) Option { return func(s *Simulator) { s.body = b } }
func WithClock(c *Clock) Option             { return func(s *Simulator) { s.clock = c } }
func WithIndex(t *octree.Tree) Option       { return func(s *Simulator) { s.tree = t } }

func WithDetector(d *collision.Detector) Option {
	return func(s *Simulator) { s.detector = d }
}

// WithLogger sets the anomaly and event logger. Anomaly warnings are
// throttled to one per second with a burst of ten.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulator) { s.log = l }
}

func New(pop *population.Population, integrator integrators.Stepper, generator *debris.Generator, opts ...Option) *Simulator {
	s := &Simulator{
		pop:        pop,
		body:       physics.Earth(),
		integrator: integrator,
		generator:  generator,
		clock:      NewClock(1),
		log:        zerolog.Nop(),
		anomalies:  rate.NewLimiter(rate.Every(time.Second), 10),
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tree == nil {
		s.tree = octree.NewDefault()
	}
	if s.detector == nil {
		s.detector = collision.NewDetector()
		s.detector.IgnoreSiblings = true
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Population() *population.Population { return s.pop }
func (s *Simulator) Clock() *Clock                       { return s.clock }
func (s *Simulator) Body() physics.CentralBody           { return s.body }
func (s *Simulator) Integrator() integrators.Stepper     { return s.integrator }

// Step runs one pipeline pass. While the clock is paused nothing moves and
// the report only carries counts. The report is reused by the next call.
func (s *Simulator) Step() *StepReport {
	start := time.Now()
	r := &s.report
	*r = StepReport{Step: s.step, Time: s.clock.Current}

	dt, ok := s.clock.Advance()
	if !ok {
		r.Paused = true
		r.Objects = s.pop.Objects()
		r.Counts = s.pop.Counts()
		return r
	}
	s.step++

	s.skipped = s.integrator.Step(s.pop.Objects(), dt, s.skipped[:0])
	for _, id := range s.skipped {
		s.anomaly().Uint64("object", uint64(id)).Msg("zero radius, skipped integration")
	}

	s.tree.Reset()
	for _, o := range s.pop.Objects() {
		s.tree.Insert(o.ID, o.State.Position)
	}

	s.detector.Now = s.clock.Current
	pairs := s.detector.Detect(s.tree, s.pop)
	detection := s.detector.Stats()
	if detection.Stale > 0 {
		s.anomaly().Int("candidates", detection.Stale).Msg("stale candidates skipped")
	}

	s.events = s.generator.Resolve(s.pop, pairs, s.clock.Current, s.events[:0])
	if n := s.generator.Skipped(); n > 0 {
		s.anomaly().Int("pairs", n).Msg("participant already consumed, pairs skipped")
	}
	for i := range s.events {
		ev := &s.events[i]
		s.log.Debug().
			Uint32("collision", uint32(ev.ID)).
			Uint64("a", uint64(ev.A)).
			Uint64("b", uint64(ev.B)).
			Float64("energy_j", ev.Energy).
			Int("fragments", len(ev.Fragments)).
			Float64("t", ev.Time).
			Msg("collision")
	}

	*r = StepReport{
		Step:        s.step,
		Time:        s.clock.Current,
		Dt:          dt,
		Objects:     s.pop.Objects(),
		Events:      s.events,
		Counts:      s.pop.Counts(),
		Skipped:     s.skipped,
		StalePairs:  s.generator.Skipped(),
		Detection:   detection,
		WallElapsed: time.Since(start),
	}

	for _, m := range s.metrics {
		m.Observe(r)
	}
	for _, obs := range s.observers {
		obs.OnStep(r)
	}
	return r
}

func (s *Simulator) anomaly() *zerolog.Event {
	if !s.anomalies.Allow() {
		return nil
	}
	return s.log.Warn().Int("step", s.step).Float64("t", s.clock.Current)
}

// Run steps the simulation headlessly for cfg.Duration seconds of simulated
// time and collects a sampled time series.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	s.clock.Timestep = cfg.Dt
	s.clock.Resume()

	steps := int(cfg.Duration / cfg.Dt)
	sampleEvery := cfg.SampleEvery
	if sampleEvery <= 0 {
		sampleEvery = 1
	}

	result := &Result{
		Series:  make([]Sample, 0, steps/sampleEvery+2),
		Events:  make([]debris.Event, 0),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	initialEnergy := s.pop.TotalEnergy(s.body.GM)
	result.Series = append(result.Series, s.sample(0))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, initialEnergy)
			return result, ctx.Err()
		default:
		}

		r := s.Step()
		result.StepsTaken++
		result.Skipped += len(r.Skipped)
		result.Events = append(result.Events, r.Events...)

		if cfg.ValidateState {
			if id, ok := s.pop.Validate(); !ok {
				err := &dynamo.SimulationError{
					Step:    r.Step,
					Time:    r.Time,
					ID:      id,
					Wrapped: errorsmod.Wrap(dynamo.ErrInvalidState, "numeric invariant violated"),
				}
				result.Errors = append(result.Errors, err)
				s.finish(result, initialEnergy)
				return result, err
			}
		}

		if r.Step%sampleEvery == 0 || i == steps-1 {
			result.Series = append(result.Series, s.sample(len(result.Events)))
		}
	}

	s.finish(result, initialEnergy)
	return result, nil
}

func (s *Simulator) finish(result *Result, initialEnergy float64) {
	result.Final = s.pop.Snapshot()
	result.FinalCounts = s.pop.Counts()
	if initialEnergy != 0 {
		final := s.pop.TotalEnergy(s.body.GM)
		result.EnergyDrift = math.Abs(final-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) sample(collisions int) Sample {
	c := s.pop.Counts()
	return Sample{
		Time:        s.clock.Current,
		Live:        c.Live,
		Satellites:  c.Satellites,
		Debris:      c.Debris,
		Collisions:  collisions,
		TotalEnergy: s.pop.TotalEnergy(s.body.GM),
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return errorsmod.Wrapf(dynamo.ErrInvalidConfig, "dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return errorsmod.Wrapf(dynamo.ErrInvalidConfig, "duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Duration < cfg.Dt {
		return errorsmod.Wrapf(dynamo.ErrInvalidConfig, "duration %f shorter than one step", cfg.Duration)
	}
	return nil
}
