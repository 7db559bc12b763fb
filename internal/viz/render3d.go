package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is an orthographic view of the inertial frame. ViewRadius is the
// distance in km from the centre to the nearest canvas edge at Zoom 1.
type Camera struct {
	RotX, RotY, RotZ float64
	Zoom             float64
	ViewRadius       float64
}

const (
	minZoom     = 0.05
	maxZoom     = 50
	rotateStep  = 0.1
	zoomFactor  = 1.25
	defaultView = 12000.0
)

func NewCamera(viewRadius float64) *Camera {
	if viewRadius <= 0 {
		viewRadius = defaultView
	}
	return &Camera{Zoom: 1, ViewRadius: viewRadius}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(maxZoom, c.Zoom*zoomFactor) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(minZoom, c.Zoom/zoomFactor) }

func (c *Camera) Reset() {
	c.RotX, c.RotY, c.RotZ = 0, 0, 0
	c.Zoom = 1
}

// RotatePoint applies the X, Y then Z view rotations.
func (c *Camera) RotatePoint(p r3.Vec) r3.Vec {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project maps a position in km to sub-pixel coordinates on a canvas of
// w x h dots. depth grows toward the viewer.
func (c *Camera) Project(p r3.Vec, w, h int) (x, y int, depth float64, ok bool) {
	rot := c.RotatePoint(p)
	half := math.Min(float64(w)/2, float64(h)/2)
	scale := half * c.Zoom / c.ViewRadius
	x = int(rot.X*scale) + w/2
	y = int(-rot.Y*scale) + h/2
	return x, y, rot.Z, x >= 0 && x < w && y >= 0 && y < h
}

type Edge struct {
	Start, End r3.Vec
}

type Wireframe struct{ Edges []Edge }

// EarthWireframe outlines a sphere of the given radius with the equator and
// two meridians.
func EarthWireframe(radius float64, segments int) *Wireframe {
	w := &Wireframe{Edges: make([]Edge, 0, 3*segments)}
	ring := func(point func(a float64) r3.Vec) {
		for i := 0; i < segments; i++ {
			a0 := 2 * math.Pi * float64(i) / float64(segments)
			a1 := 2 * math.Pi * float64(i+1) / float64(segments)
			w.Edges = append(w.Edges, Edge{point(a0), point(a1)})
		}
	}
	ring(func(a float64) r3.Vec { return r3.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)} })
	ring(func(a float64) r3.Vec { return r3.Vec{X: radius * math.Cos(a), Z: radius * math.Sin(a)} })
	ring(func(a float64) r3.Vec { return r3.Vec{Y: radius * math.Cos(a), Z: radius * math.Sin(a)} })
	return w
}

// Render3D draws every edge with at least one visible end.
func Render3D(c *Canvas, w *Wireframe, cam *Camera, layer Layer) {
	if c == nil || w == nil || cam == nil {
		return
	}
	dw, dh := c.Dots()
	for _, e := range w.Edges {
		x1, y1, _, v1 := cam.Project(e.Start, dw, dh)
		x2, y2, _, v2 := cam.Project(e.End, dw, dh)
		if v1 || v2 {
			c.DrawLine(x1, y1, x2, y2, layer)
		}
	}
}
