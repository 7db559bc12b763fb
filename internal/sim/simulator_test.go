package sim

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/kyjohnso/kessler/internal/debris"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/integrators"
	"github.com/kyjohnso/kessler/internal/physics"
	"github.com/kyjohnso/kessler/internal/population"
	"github.com/kyjohnso/kessler/internal/scenario"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"
)

func orbiting(r, mass, radius float64) population.Object {
	return population.Object{
		State: dynamo.OrbitalState{
			Position: r3.Vec{X: r},
			Velocity: r3.Vec{Y: physics.Earth().CircularSpeed(r)},
			Mass:     mass,
		},
		Physics: dynamo.PhysicsObject{CollisionRadius: radius, Category: dynamo.Satellite},
	}
}

func newTestSimulator(pop *population.Population, opts ...Option) *Simulator {
	gen := debris.New(debris.DefaultParams(), rand.New(rand.NewSource(1)))
	return New(pop, integrators.NewSymplecticEuler(physics.Earth()), gen, opts...)
}

func TestSimulatorRun(t *testing.T) {
	pop := population.New(0)
	pop.Add(orbiting(7000, 1000, 0.01))
	pop.Add(orbiting(8000, 1000, 0.01))

	sim := newTestSimulator(pop)
	cfg := Config{Dt: 1, Duration: 100, SampleEvery: 10}

	result, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 100 {
		t.Errorf("expected 100 steps, got %d", result.StepsTaken)
	}
	if len(result.Series) != 11 {
		t.Errorf("expected 11 samples, got %d", len(result.Series))
	}
	if math.Abs(sim.Clock().Current-100) > 1e-9 {
		t.Errorf("expected t=100, got %f", sim.Clock().Current)
	}
	if result.FinalCounts.Live != 2 || len(result.Events) != 0 {
		t.Errorf("expected 2 survivors and no events, got %+v and %d events", result.FinalCounts, len(result.Events))
	}
	if result.EnergyDrift > 1e-3 {
		t.Errorf("expected small energy drift, got %e", result.EnergyDrift)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := newTestSimulator(population.New(0))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"shorter than a step", Config{Dt: 10, Duration: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

type testMetric struct {
	count  int
	events int
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(r *StepReport) {
	t.count++
	t.events += len(r.Events)
}
func (t *testMetric) Value() float64 { return float64(t.count) }
func (t *testMetric) Reset()         { t.count, t.events = 0, 0 }

func TestSimulatorMetrics(t *testing.T) {
	pop := population.New(0)
	pop.Add(orbiting(7000, 1000, 0.01))
	sim := newTestSimulator(pop)

	metric := &testMetric{}
	sim.AddMetric(metric)

	calls := 0
	sim.AddObserver(ObserverFunc(func(r *StepReport) { calls++ }))

	result, err := sim.Run(context.Background(), Config{Dt: 1, Duration: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Metrics["test"] != 10 {
		t.Errorf("expected metric value 10, got %f", result.Metrics["test"])
	}
	if calls != 10 {
		t.Errorf("expected 10 observer calls, got %d", calls)
	}
}

func TestCollisionScenario(t *testing.T) {
	pop := population.New(0)
	a := pop.Add(orbiting(7000, 1000, 0.001))
	b := pop.Add(orbiting(7000.0005, 1000, 0.001))

	sim := newTestSimulator(pop)
	r := sim.Step()

	if len(r.Events) != 1 {
		t.Fatalf("expected 1 collision, got %d", len(r.Events))
	}
	if pop.Contains(a) || pop.Contains(b) {
		t.Error("expected both originals removed")
	}
	n := len(r.Events[0].Fragments)
	if n < 2 || n > 50 {
		t.Errorf("expected 2..50 fragments, got %d", n)
	}
	if r.Counts.Debris != n || r.Counts.Satellites != 0 {
		t.Errorf("expected %d debris and no satellites, got %+v", n, r.Counts)
	}
}

func TestNoCollisionScenario(t *testing.T) {
	pop := population.New(0)
	pop.Add(orbiting(7000, 1000, 0.001))
	pop.Add(orbiting(7001, 1000, 0.001))

	r := newTestSimulator(pop).Step()
	if len(r.Events) != 0 {
		t.Errorf("expected no collision, got %d", len(r.Events))
	}
	if r.Counts.Live != 2 {
		t.Errorf("expected 2 live objects, got %d", r.Counts.Live)
	}
}

func TestOldSiblingsCollideAgain(t *testing.T) {
	pop := population.New(0)
	v := physics.Earth().CircularSpeed(7000)
	for _, x := range []float64{7000, 7000.0005} {
		o := orbiting(x, 100, 0.001)
		o.State.Velocity = r3.Vec{Y: v}
		o.Physics.Category = dynamo.Debris
		o.Lineage = dynamo.FromCollision(7, -86400)
		pop.Add(o)
	}

	sim := newTestSimulator(pop)
	events := 0
	for i := 0; i < 5; i++ {
		events += len(sim.Step().Events)
	}
	if events == 0 {
		t.Errorf("expected siblings born a day ago to collide, got %d live and no events", pop.Len())
	}
}

func TestFreshFragmentsDoNotRecollide(t *testing.T) {
	pop := population.New(0)
	for _, o := range scenario.HeadOn(physics.Earth(), scenario.PairSeparation, scenario.HeadOnLead) {
		pop.Add(o)
	}

	sim := newTestSimulator(pop)
	hit := false
	for i := 0; i < 30 && !hit; i++ {
		hit = len(sim.Step().Events) > 0
	}
	if !hit {
		t.Fatal("expected the head-on pair to collide")
	}
	if r := sim.Step(); len(r.Events) != 0 {
		t.Errorf("expected fragments leaving the breakup to be ignored, got %d events", len(r.Events))
	}
}

func TestPausedStepDoesNothing(t *testing.T) {
	pop := population.New(0)
	id := pop.Add(orbiting(7000, 1000, 0.01))
	before := *mustGet(t, pop, id)

	sim := newTestSimulator(pop)
	sim.Clock().Pause()
	r := sim.Step()

	if !r.Paused {
		t.Error("expected paused report")
	}
	if mustGet(t, pop, id).State != before.State {
		t.Error("expected state untouched while paused")
	}
	if sim.Clock().Current != 0 {
		t.Errorf("expected clock to hold, got %f", sim.Clock().Current)
	}
}

func TestZeroRadiusAnomalyLogged(t *testing.T) {
	var buf bytes.Buffer
	pop := population.New(0)
	id := pop.Add(population.Object{State: dynamo.OrbitalState{Mass: 1}})
	pop.Add(orbiting(7000, 1000, 0.01))

	sim := newTestSimulator(pop, WithLogger(zerolog.New(&buf)))
	r := sim.Step()

	if len(r.Skipped) != 1 || r.Skipped[0] != id {
		t.Errorf("expected object %d skipped, got %v", id, r.Skipped)
	}
	if !strings.Contains(buf.String(), "skipped integration") {
		t.Errorf("expected anomaly in log, got %q", buf.String())
	}
	if r.Counts.Live != 2 {
		t.Errorf("expected skip to keep the object alive, got %d", r.Counts.Live)
	}
}

func TestValidateStateStopsRun(t *testing.T) {
	pop := population.New(0)
	bad := orbiting(7000, 1000, 0.01)
	bad.State.Mass = -5
	id := pop.Add(bad)

	sim := newTestSimulator(pop)
	result, err := sim.Run(context.Background(), Config{Dt: 1, Duration: 10, ValidateState: true})

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if simErr.ID != id || !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("expected invalid state on object %d, got %v", id, err)
	}
	if result.StepsTaken != 1 {
		t.Errorf("expected run to stop after 1 step, got %d", result.StepsTaken)
	}
}

func TestRunHonoursContext(t *testing.T) {
	pop := population.New(0)
	pop.Add(orbiting(7000, 1000, 0.01))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newTestSimulator(pop).Run(ctx, Config{Dt: 1, Duration: 1000})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Error("expected partial result with no steps")
	}
}

func TestEnsemble(t *testing.T) {
	factory := func(seed int64) (*Simulator, error) {
		pop := population.New(0)
		pop.Add(orbiting(7000, 1000, 0.001))
		pop.Add(orbiting(7000.0005, 1000, 0.001))
		gen := debris.New(debris.DefaultParams(), rand.New(rand.NewSource(seed)))
		return New(pop, integrators.NewSymplecticEuler(physics.Earth()), gen), nil
	}

	results, err := NewEnsemble(factory, 4, 100).Run(context.Background(), Config{Dt: 1, Duration: 5})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if len(r.Events) != 1 {
			t.Errorf("run %d: expected 1 collision, got %d", i, len(r.Events))
		}
	}
}

func mustGet(t *testing.T, pop *population.Population, id dynamo.ObjectID) *population.Object {
	t.Helper()
	o, ok := pop.Get(id)
	if !ok {
		t.Fatalf("object %d missing", id)
	}
	return o
}
