// Package population stores the live object set as a dense arena keyed by
// stable identifiers.
//
// Objects live contiguously in a slice so the integrator can sweep them
// without pointer chasing. Removal swaps the last object into the hole and
// patches the index, so lookups stay O(1) and IDs are never reused.
package population

import (
	"github.com/kyjohnso/kessler/internal/dynamo"
)

// Object is one simulated body.
type Object struct {
	ID        dynamo.ObjectID
	State     dynamo.OrbitalState
	Physics   dynamo.PhysicsObject
	Lineage   dynamo.Lineage
	Satellite *dynamo.SatelliteInfo
}

// Counts aggregates the live population by category.
type Counts struct {
	Live       int `json:"live"`
	Satellites int `json:"satellites"`
	Debris     int `json:"debris"`
}

type Population struct {
	objects []Object
	index   map[dynamo.ObjectID]int
	nextID  dynamo.ObjectID
}

func New(capacity int) *Population {
	return &Population{
		objects: make([]Object, 0, capacity),
		index:   make(map[dynamo.ObjectID]int, capacity),
		nextID:  1,
	}
}

// Add assigns a fresh ID to obj and stores it. Any ID already set on obj is
// ignored. A zero collision radius is replaced by the category default.
func (p *Population) Add(obj Object) dynamo.ObjectID {
	obj.ID = p.nextID
	p.nextID++
	if obj.Physics.CollisionRadius == 0 {
		obj.Physics.CollisionRadius = obj.Physics.Category.DefaultRadius()
	}
	p.index[obj.ID] = len(p.objects)
	p.objects = append(p.objects, obj)
	return obj.ID
}

// Remove deletes the object with the given ID. It reports false when the ID
// is unknown or already removed.
func (p *Population) Remove(id dynamo.ObjectID) bool {
	i, ok := p.index[id]
	if !ok {
		return false
	}
	last := len(p.objects) - 1
	if i != last {
		p.objects[i] = p.objects[last]
		p.index[p.objects[i].ID] = i
	}
	p.objects[last] = Object{}
	p.objects = p.objects[:last]
	delete(p.index, id)
	return true
}

// Get returns a pointer into the arena. The pointer is invalidated by the
// next Add or Remove.
func (p *Population) Get(id dynamo.ObjectID) (*Object, bool) {
	i, ok := p.index[id]
	if !ok {
		return nil, false
	}
	return &p.objects[i], true
}

func (p *Population) Contains(id dynamo.ObjectID) bool {
	_, ok := p.index[id]
	return ok
}

func (p *Population) Len() int { return len(p.objects) }

// Objects exposes the dense backing slice. Callers may mutate elements in
// place but must not append to or reslice it.
func (p *Population) Objects() []Object { return p.objects }

func (p *Population) Counts() Counts {
	c := Counts{Live: len(p.objects)}
	for i := range p.objects {
		if p.objects[i].Physics.Category == dynamo.Debris {
			c.Debris++
		} else {
			c.Satellites++
		}
	}
	return c
}

// Snapshot copies the population so it can outlive the next step.
func (p *Population) Snapshot() []Object {
	out := make([]Object, len(p.objects))
	copy(out, p.objects)
	return out
}

// Clone returns an independent copy that keeps the ID sequence.
func (p *Population) Clone() *Population {
	c := &Population{
		objects: p.Snapshot(),
		index:   make(map[dynamo.ObjectID]int, len(p.index)),
		nextID:  p.nextID,
	}
	for k, v := range p.index {
		c.index[k] = v
	}
	return c
}

// TotalEnergy sums the mechanical energy of every object in joules.
func (p *Population) TotalEnergy(gm float64) float64 {
	total := 0.0
	for i := range p.objects {
		total += p.objects[i].State.TotalEnergy(gm)
	}
	return total
}

// Validate returns the first object violating a numeric invariant.
func (p *Population) Validate() (dynamo.ObjectID, bool) {
	for i := range p.objects {
		o := &p.objects[i]
		if !o.State.IsValid() || o.Physics.CollisionRadius < 0 {
			return o.ID, false
		}
	}
	return 0, true
}
