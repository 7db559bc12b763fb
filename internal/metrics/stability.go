package metrics

import (
	"github.com/kyjohnso/kessler/internal/sim"
)

// Stability is the fraction of steps that finished without a numeric
// anomaly: no integrator skip and no stale pair.
type Stability struct {
	name       string
	violations int
	samples    int
}

func NewStability() *Stability {
	return &Stability{
		name: "stability",
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(r *sim.StepReport) {
	s.samples++
	if len(r.Skipped) > 0 || r.StalePairs > 0 || r.Detection.Stale > 0 {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
