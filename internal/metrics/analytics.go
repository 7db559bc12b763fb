package metrics

import (
	"sort"
	"sync"

	"github.com/kyjohnso/kessler/internal/sim"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultAltitudeBins are lower bin edges in km above the surface, from low
// orbit out past geostationary.
var DefaultAltitudeBins = []float64{200, 400, 600, 800, 1000, 1500, 2000, 5000, 10000, 20000, 36000}

// Bin is one altitude band. Average is nil when no object fell inside.
type Bin struct {
	AltitudeKm float64  `json:"altitude_km"`
	Count      int      `json:"count"`
	Average    *float64 `json:"average_energy_j,omitempty"`
}

type Summary struct {
	Time        float64 `json:"time"`
	Objects     int     `json:"objects"`
	Satellites  int     `json:"satellites"`
	Debris      int     `json:"debris"`
	TotalEnergy float64 `json:"total_energy_j"`
	Bins        []Bin   `json:"bins"`
}

// Analytics recomputes energy by altitude band on every step. It is an
// Observer and may be read from another goroutine.
type Analytics struct {
	mu      sync.RWMutex
	gm      float64
	edges   []float64
	samples [][]float64
	all     []float64
	summary Summary
}

func NewAnalytics(gm float64, edges []float64) *Analytics {
	if len(edges) == 0 {
		edges = DefaultAltitudeBins
	}
	e := append([]float64(nil), edges...)
	sort.Float64s(e)
	return &Analytics{
		gm:      gm,
		edges:   e,
		samples: make([][]float64, len(e)),
	}
}

// BinFor returns the index of the last edge at or below altitude, or -1 when
// the altitude is under the first edge.
func (a *Analytics) BinFor(altitude float64) int {
	return sort.Search(len(a.edges), func(i int) bool { return a.edges[i] > altitude }) - 1
}

func (a *Analytics) OnStep(r *sim.StepReport) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.samples {
		a.samples[i] = a.samples[i][:0]
	}
	a.all = a.all[:0]

	for i := range r.Objects {
		s := &r.Objects[i].State
		energy := s.TotalEnergy(a.gm)
		a.all = append(a.all, energy)
		if b := a.BinFor(s.Altitude()); b >= 0 {
			a.samples[b] = append(a.samples[b], energy)
		}
	}

	bins := make([]Bin, len(a.edges))
	for i, edge := range a.edges {
		bins[i] = Bin{AltitudeKm: edge, Count: len(a.samples[i])}
		if len(a.samples[i]) > 0 {
			avg := stat.Mean(a.samples[i], nil)
			bins[i].Average = &avg
		}
	}

	a.summary = Summary{
		Time:        r.Time,
		Objects:     r.Counts.Live,
		Satellites:  r.Counts.Satellites,
		Debris:      r.Counts.Debris,
		TotalEnergy: floats.Sum(a.all),
		Bins:        bins,
	}
}

// Summary returns a copy of the latest step's analytics.
func (a *Analytics) Summary() Summary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := a.summary
	out.Bins = append([]Bin(nil), a.summary.Bins...)
	return out
}

// Edges returns the sorted bin edges.
func (a *Analytics) Edges() []float64 {
	return append([]float64(nil), a.edges...)
}
