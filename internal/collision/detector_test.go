package collision_test

import (
	"math/rand"

	"github.com/kyjohnso/kessler/internal/collision"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/octree"
	"github.com/kyjohnso/kessler/internal/population"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"
)

func object(x, radius float64) population.Object {
	return population.Object{
		State:   dynamo.OrbitalState{Position: r3.Vec{X: x}, Mass: 1000},
		Physics: dynamo.PhysicsObject{CollisionRadius: radius, Category: dynamo.Satellite},
	}
}

func build(tree *octree.Tree, pop *population.Population) {
	tree.Reset()
	for _, o := range pop.Objects() {
		tree.Insert(o.ID, o.State.Position)
	}
}

// staleIndex reports an ID the population no longer holds.
type staleIndex struct {
	inner collision.Index
	ghost dynamo.ObjectID
}

func (s staleIndex) QuerySphere(c r3.Vec, r float64, dst []dynamo.ObjectID) []dynamo.ObjectID {
	return append(s.inner.QuerySphere(c, r, dst), s.ghost)
}

var _ = Describe("Detector", func() {
	var (
		tree *octree.Tree
		pop  *population.Population
		det  *collision.Detector
	)

	BeforeEach(func() {
		tree = octree.NewDefault()
		pop = population.New(0)
		det = collision.NewDetector()
	})

	Context("with two objects 0.5 m apart", func() {
		It("confirms the collision", func() {
			a := pop.Add(object(7000, 0.001))
			b := pop.Add(object(7000.0005, 0.001))
			build(tree, pop)

			pairs := det.Detect(tree, pop)
			Expect(pairs).To(ConsistOf(collision.NewPair(a, b)))
		})
	})

	Context("with two objects 1 km apart", func() {
		It("reports nothing", func() {
			pop.Add(object(7000, 0.001))
			pop.Add(object(7001, 0.001))
			build(tree, pop)

			Expect(det.Detect(tree, pop)).To(BeEmpty())
		})
	})

	Context("with a cluster of mutually overlapping objects", func() {
		It("never emits self pairs or mirrored duplicates", func() {
			for i := 0; i < 12; i++ {
				pop.Add(object(7000+float64(i)*0.0001, 0.001))
			}
			build(tree, pop)

			pairs := det.Detect(tree, pop)
			Expect(pairs).To(HaveLen(12 * 11 / 2))

			seen := make(map[collision.Pair]bool)
			for _, p := range pairs {
				Expect(p.A).To(BeNumerically("<", p.B))
				Expect(seen).NotTo(HaveKey(p))
				seen[p] = true
			}
		})
	})

	Context("with radii of very different sizes", func() {
		It("finds the pair from the larger object's query", func() {
			small := pop.Add(object(7000, 0.0001))
			big := pop.Add(object(7000.05, 0.06))
			build(tree, pop)

			Expect(det.Detect(tree, pop)).To(ConsistOf(collision.NewPair(small, big)))
		})
	})

	Context("when the index returns a removed object", func() {
		It("skips the stale candidate", func() {
			a := pop.Add(object(7000, 0.001))
			b := pop.Add(object(7000.0001, 0.001))
			ghost := pop.Add(object(7000.0002, 0.001))
			build(tree, pop)
			pop.Remove(ghost)

			pairs := det.Detect(staleIndex{inner: tree, ghost: ghost}, pop)
			Expect(pairs).To(ConsistOf(collision.NewPair(a, b)))
			Expect(det.Stats().Stale).To(BeNumerically(">", 0))
		})
	})

	Context("with a random dense population", func() {
		It("agrees with brute force", func() {
			rng := rand.New(rand.NewSource(11))
			for i := 0; i < 1500; i++ {
				p := r3.Vec{
					X: 7000 + rng.Float64()*2,
					Y: rng.Float64() * 2,
					Z: rng.Float64() * 2,
				}
				pop.Add(population.Object{
					State:   dynamo.OrbitalState{Position: p, Mass: 1},
					Physics: dynamo.PhysicsObject{CollisionRadius: 0.01 + rng.Float64()*0.05, Category: dynamo.Debris},
				})
			}
			local := octree.New(r3.Vec{X: 7001, Y: 1, Z: 1}, 2, octree.DefaultCapacity, octree.DefaultMaxDepth)
			build(local, pop)

			want := collision.BruteForce(pop)
			Expect(want).NotTo(BeEmpty())
			Expect(det.Detect(local, pop)).To(ConsistOf(want))
		})
	})

	Context("with fragments of the same collision", func() {
		It("ignores them when asked to", func() {
			parent := dynamo.CollisionID(3)
			for i := 0; i < 3; i++ {
				o := object(7000, 0.001)
				o.Lineage = dynamo.FromCollision(parent, 0)
				pop.Add(o)
			}
			build(tree, pop)

			Expect(det.Detect(tree, pop)).To(HaveLen(3))

			det.IgnoreSiblings = true
			Expect(det.Detect(tree, pop)).To(BeEmpty())
			Expect(det.Stats().Siblings).To(Equal(3))
		})

		sibling := func(x float64, v r3.Vec, born float64) population.Object {
			o := object(x, 0.001)
			o.State.Velocity = v
			o.Lineage = dynamo.FromCollision(7, born)
			return o
		}

		It("reports siblings that overlap again after drifting apart", func() {
			pop.Add(sibling(7000, r3.Vec{Y: 7.5}, -86400))
			pop.Add(sibling(7000.0005, r3.Vec{Y: 7.5}, -86400))
			build(tree, pop)

			det.IgnoreSiblings = true
			Expect(det.Detect(tree, pop)).To(HaveLen(1))
			Expect(det.Stats().Siblings).To(Equal(0))
		})

		It("reports approaching siblings", func() {
			pop.Add(sibling(7000, r3.Vec{X: 0.01}, -86400))
			pop.Add(sibling(7000.0005, r3.Vec{X: -0.01}, -86400))
			build(tree, pop)

			det.IgnoreSiblings = true
			Expect(det.Detect(tree, pop)).To(HaveLen(1))
		})

		It("ignores siblings flying straight out of their spawn point", func() {
			// a 0.0005 km gap opened at 0.02 km/s takes 0.025 s
			pop.Add(sibling(7000, r3.Vec{X: -0.01, Y: 7.5}, 100))
			pop.Add(sibling(7000.0005, r3.Vec{X: 0.01, Y: 7.5}, 100))
			build(tree, pop)

			det.IgnoreSiblings = true
			det.Now = 100.025
			Expect(det.Detect(tree, pop)).To(BeEmpty())
			Expect(det.Stats().Siblings).To(Equal(1))
		})

		It("reports receding siblings whose gap does not match their age", func() {
			pop.Add(sibling(7000, r3.Vec{X: -0.01, Y: 7.5}, -86400))
			pop.Add(sibling(7000.0005, r3.Vec{X: 0.01, Y: 7.5}, -86400))
			build(tree, pop)

			det.IgnoreSiblings = true
			Expect(det.Detect(tree, pop)).To(HaveLen(1))
		})
	})

	It("reuses its pair buffer between calls", func() {
		pop.Add(object(7000, 0.001))
		pop.Add(object(7000.0005, 0.001))
		build(tree, pop)

		Expect(det.Detect(tree, pop)).To(HaveLen(1))
		Expect(det.Detect(tree, pop)).To(HaveLen(1))
	})
})
