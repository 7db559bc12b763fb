package sim_test

import (
	"context"
	"math/rand"

	"github.com/kyjohnso/kessler/internal/debris"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/integrators"
	"github.com/kyjohnso/kessler/internal/physics"
	"github.com/kyjohnso/kessler/internal/population"
	"github.com/kyjohnso/kessler/internal/sim"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"
)

// headOn places two equal objects on the same circular radius moving in
// opposite directions, offset along the track so they meet after a few steps.
func headOn(pop *population.Population, gap float64) {
	earth := physics.Earth()
	v := earth.CircularSpeed(7000)
	for _, sign := range []float64{1, -1} {
		pop.Add(population.Object{
			State: dynamo.OrbitalState{
				Position: r3.Vec{X: 7000, Y: -sign * gap / 2},
				Velocity: r3.Vec{Y: sign * v},
				Mass:     500,
			},
			Physics: dynamo.NewPhysicsObject(dynamo.Satellite),
		})
	}
}

func newSim(seed int64, pop *population.Population) *sim.Simulator {
	gen := debris.New(debris.DefaultParams(), rand.New(rand.NewSource(seed)))
	return sim.New(pop, integrators.NewSymplecticEuler(physics.Earth()), gen, sim.WithClock(sim.NewClock(0.001)))
}

var _ = Describe("Cascade", func() {
	var pop *population.Population

	BeforeEach(func() {
		pop = population.New(0)
	})

	It("turns a head-on encounter into a fragment cloud", func() {
		headOn(pop, 0.05)
		s := newSim(1, pop)

		result, err := s.Run(context.Background(), sim.Config{Dt: 0.001, Duration: 0.01, ValidateState: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Events).To(HaveLen(1))

		ev := result.Events[0]
		Expect(ev.RelativeSpeed).To(BeNumerically("~", 2*physics.Earth().CircularSpeed(7000), 1e-3))
		Expect(ev.Fragments).To(HaveLen(pop.Len()))
		Expect(result.FinalCounts.Satellites).To(Equal(0))

		for _, o := range pop.Objects() {
			Expect(o.Lineage.Generation).To(Equal(uint32(1)))
			Expect(o.State.Mass).To(BeNumerically(">", 0))
		}
	})

	It("reproduces the same cloud for the same seed", func() {
		final := func() []population.Object {
			p := population.New(0)
			headOn(p, 0.05)
			res, err := newSim(7, p).Run(context.Background(), sim.Config{Dt: 0.001, Duration: 0.05})
			Expect(err).NotTo(HaveOccurred())
			return res.Final
		}

		Expect(final()).To(Equal(final()))
	})

	It("reports counts every step", func() {
		headOn(pop, 0.05)
		s := newSim(1, pop)

		var live []int
		s.AddObserver(sim.ObserverFunc(func(r *sim.StepReport) {
			live = append(live, r.Counts.Live)
			Expect(r.Counts.Live).To(Equal(len(r.Objects)))
		}))

		_, err := s.Run(context.Background(), sim.Config{Dt: 0.001, Duration: 0.01})
		Expect(err).NotTo(HaveOccurred())
		Expect(live).To(HaveLen(10))
		Expect(live[0]).To(Equal(2))
		Expect(live[len(live)-1]).To(BeNumerically(">=", 2))
	})
})
