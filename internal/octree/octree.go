// Package octree is the broad-phase spatial index used for collision
// detection.
//
// The tree is rebuilt from scratch every step. Nodes live in a flat arena
// that [Tree.Reset] truncates without freeing, so steady-state rebuilds do
// not allocate.
package octree

import (
	"github.com/kyjohnso/kessler/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultCapacity = 4
	DefaultMaxDepth = 6
	// DefaultHalfSize covers low orbit through beyond-geostationary radii.
	DefaultHalfSize = 60000.0
)

// Item is an indexed object reference.
type Item struct {
	ID  dynamo.ObjectID
	Pos r3.Vec
}

type node struct {
	center   r3.Vec
	halfSize float64
	depth    int
	items    []Item
	children int32 // first of 8 contiguous children, or -1
}

type Tree struct {
	nodes    []node
	outside  []Item
	capacity int
	maxDepth int
	count    int
}

// New returns an empty tree whose root cube is centred on center.
func New(center r3.Vec, halfSize float64, capacity, maxDepth int) *Tree {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if maxDepth < 0 {
		maxDepth = DefaultMaxDepth
	}
	t := &Tree{capacity: capacity, maxDepth: maxDepth}
	t.nodes = append(t.nodes, node{center: center, halfSize: halfSize, children: -1})
	return t
}

// NewDefault returns a tree centred on the primary body.
func NewDefault() *Tree {
	return New(r3.Vec{}, DefaultHalfSize, DefaultCapacity, DefaultMaxDepth)
}

// Reset empties the tree while keeping its allocations.
func (t *Tree) Reset() {
	root := &t.nodes[0]
	root.items = root.items[:0]
	root.children = -1
	t.nodes = t.nodes[:1]
	t.outside = t.outside[:0]
	t.count = 0
}

func (t *Tree) Len() int   { return t.count }
func (t *Tree) Nodes() int { return len(t.nodes) }

// Insert places id at pos. Points outside the root cube are kept in a side
// list that every query scans.
func (t *Tree) Insert(id dynamo.ObjectID, pos r3.Vec) {
	t.count++
	item := Item{ID: id, Pos: pos}
	if !t.contains(0, pos) {
		t.outside = append(t.outside, item)
		return
	}
	t.insert(0, item)
}

func (t *Tree) insert(idx int32, item Item) {
	for {
		n := &t.nodes[idx]
		if n.children < 0 {
			if len(n.items) < t.capacity || n.depth >= t.maxDepth {
				n.items = append(n.items, item)
				return
			}
			t.subdivide(idx)
			n = &t.nodes[idx]
		}

		next := int32(-1)
		for c := n.children; c < n.children+8; c++ {
			if t.contains(c, item.Pos) {
				next = c
				break
			}
		}
		if next < 0 {
			n.items = append(n.items, item)
			return
		}
		idx = next
	}
}

func (t *Tree) subdivide(idx int32) {
	parent := t.nodes[idx]
	h := parent.halfSize / 2
	first := int32(len(t.nodes))

	for o := 0; o < 8; o++ {
		off := r3.Vec{X: -h, Y: -h, Z: -h}
		if o&1 != 0 {
			off.X = h
		}
		if o&2 != 0 {
			off.Y = h
		}
		if o&4 != 0 {
			off.Z = h
		}

		child := node{
			center:   r3.Add(parent.center, off),
			halfSize: h,
			depth:    parent.depth + 1,
			children: -1,
		}
		if len(t.nodes) < cap(t.nodes) {
			t.nodes = t.nodes[:len(t.nodes)+1]
			slot := &t.nodes[len(t.nodes)-1]
			child.items = slot.items[:0]
			*slot = child
		} else {
			t.nodes = append(t.nodes, child)
		}
	}

	t.nodes[idx].children = first
}

func (t *Tree) contains(idx int32, p r3.Vec) bool {
	n := &t.nodes[idx]
	h := n.halfSize
	return p.X >= n.center.X-h && p.X <= n.center.X+h &&
		p.Y >= n.center.Y-h && p.Y <= n.center.Y+h &&
		p.Z >= n.center.Z-h && p.Z <= n.center.Z+h
}

// intersects tests the sphere against the node cube using the closest point
// on the cube to the sphere centre.
func (t *Tree) intersects(idx int32, center r3.Vec, radius float64) bool {
	n := &t.nodes[idx]
	h := n.halfSize
	closest := r3.Vec{
		X: clamp(center.X, n.center.X-h, n.center.X+h),
		Y: clamp(center.Y, n.center.Y-h, n.center.Y+h),
		Z: clamp(center.Z, n.center.Z-h, n.center.Z+h),
	}
	return r3.Norm2(r3.Sub(closest, center)) <= radius*radius
}

// QuerySphere appends to dst every object stored in a node whose cube
// intersects the sphere, including nodes along the descent path. The result
// is a superset of the objects inside the sphere.
func (t *Tree) QuerySphere(center r3.Vec, radius float64, dst []dynamo.ObjectID) []dynamo.ObjectID {
	for _, it := range t.outside {
		dst = append(dst, it.ID)
	}
	return t.query(0, center, radius, dst)
}

func (t *Tree) query(idx int32, center r3.Vec, radius float64, dst []dynamo.ObjectID) []dynamo.ObjectID {
	if !t.intersects(idx, center, radius) {
		return dst
	}
	n := &t.nodes[idx]
	for _, it := range n.items {
		dst = append(dst, it.ID)
	}
	if n.children < 0 {
		return dst
	}
	for c := n.children; c < n.children+8; c++ {
		dst = t.query(c, center, radius, dst)
	}
	return dst
}

// Stats describes the shape of the current build.
type Stats struct {
	Nodes    int
	Leaves   int
	MaxDepth int
	Outside  int
}

func (t *Tree) Stats() Stats {
	s := Stats{Nodes: len(t.nodes), Outside: len(t.outside)}
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.children < 0 {
			s.Leaves++
		}
		if n.depth > s.MaxDepth {
			s.MaxDepth = n.depth
		}
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
