// Package collision finds overlapping object pairs each step.
//
// Detection is two-phase: an octree query with twice the object's own radius
// gathers candidates, then an exact sum-of-radii distance test confirms
// them. Pairs are stored lower ID first and reported once.
package collision

import (
	"math"

	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/population"
	"gonum.org/v1/gonum/spatial/r3"
)

// Pair is an unordered object pair stored lower ID first.
type Pair struct {
	A, B dynamo.ObjectID
}

func NewPair(a, b dynamo.ObjectID) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Index is the broad-phase query the detector runs against.
type Index interface {
	QuerySphere(center r3.Vec, radius float64, dst []dynamo.ObjectID) []dynamo.ObjectID
}

// Stats counts the work done by the most recent Detect call.
type Stats struct {
	Candidates int // broad-phase hits, self excluded
	Exact      int // distance tests run
	Stale      int // candidates no longer in the population
	Siblings   int // sibling pairs dropped as one breakup cloud
}

const (
	// spawnAlignment is the largest sine of the angle between relative
	// position and relative velocity still counted as flying straight out of
	// a breakup.
	spawnAlignment = 1e-3
	// spawnAgeTolerance bounds the relative mismatch between the pair's age
	// and the time it took to open their current gap.
	spawnAgeTolerance = 0.1
)

type Detector struct {
	// IgnoreSiblings drops pairs of fragments born in the same collision
	// while they still sit on their shared spawn point or fly straight apart
	// from it. Siblings that meet again later are reported like any pair.
	IgnoreSiblings bool
	// Now is the simulation time of the next Detect call. Sibling pairs are
	// aged against it.
	Now float64

	seen       map[Pair]struct{}
	candidates []dynamo.ObjectID
	pairs      []Pair
	stats      Stats
}

func NewDetector() *Detector {
	return &Detector{seen: make(map[Pair]struct{})}
}

// Detect returns every pair whose centres are within the sum of their
// collision radii. The returned slice is reused by the next call.
func (d *Detector) Detect(idx Index, pop *population.Population) []Pair {
	clear(d.seen)
	d.pairs = d.pairs[:0]
	d.stats = Stats{}

	objs := pop.Objects()
	for i := range objs {
		a := &objs[i]
		d.candidates = idx.QuerySphere(a.State.Position, 2*a.Physics.CollisionRadius, d.candidates[:0])

		for _, id := range d.candidates {
			if id == a.ID {
				continue
			}
			d.stats.Candidates++

			pair := NewPair(a.ID, id)
			if _, dup := d.seen[pair]; dup {
				continue
			}
			d.seen[pair] = struct{}{}

			b, ok := pop.Get(id)
			if !ok {
				d.stats.Stale++
				continue
			}

			if d.IgnoreSiblings && siblings(a, b) && spawnCloud(a, b, d.Now) {
				d.stats.Siblings++
				continue
			}

			d.stats.Exact++
			if overlaps(a, b) {
				d.pairs = append(d.pairs, pair)
			}
		}
	}

	return d.pairs
}

func (d *Detector) Stats() Stats { return d.stats }

// BruteForce checks every pair directly. It is the O(N²) reference the
// octree path must agree with.
func BruteForce(pop *population.Population) []Pair {
	objs := pop.Objects()
	var pairs []Pair
	for i := range objs {
		for j := i + 1; j < len(objs); j++ {
			if overlaps(&objs[i], &objs[j]) {
				pairs = append(pairs, NewPair(objs[i].ID, objs[j].ID))
			}
		}
	}
	return pairs
}

func siblings(a, b *population.Object) bool {
	pa, pb := a.Lineage.ParentCollision, b.Lineage.ParentCollision
	return pa != nil && pb != nil && *pa == *pb
}

// spawnCloud reports whether a and b are still leaving their common spawn
// point: either at the same position, or separating along the line that
// joins them at a rate that opened the gap exactly over their lifetime.
func spawnCloud(a, b *population.Object, now float64) bool {
	dp := r3.Sub(b.State.Position, a.State.Position)
	if dp == (r3.Vec{}) {
		return true
	}
	age := now - a.Lineage.CreationTime
	if age <= 0 {
		return false
	}
	dv := r3.Sub(b.State.Velocity, a.State.Velocity)
	if r3.Dot(dp, dv) <= 0 {
		return false
	}
	gap, closing := r3.Norm(dp), r3.Norm(dv)
	if r3.Norm(r3.Cross(dp, dv)) > spawnAlignment*gap*closing {
		return false
	}
	return math.Abs(gap/closing-age) <= spawnAgeTolerance*age
}

func overlaps(a, b *population.Object) bool {
	reach := a.Physics.CollisionRadius + b.Physics.CollisionRadius
	return r3.Norm2(r3.Sub(a.State.Position, b.State.Position)) <= reach*reach
}
