package metrics

import "github.com/kyjohnso/kessler/internal/sim"

// Collisions counts resolved collision events.
type Collisions struct {
	count int
}

func NewCollisions() *Collisions { return &Collisions{} }

func (c *Collisions) Name() string              { return "collisions" }
func (c *Collisions) Observe(r *sim.StepReport) { c.count += len(r.Events) }
func (c *Collisions) Value() float64            { return float64(c.count) }
func (c *Collisions) Reset()                    { c.count = 0 }

// Fragments counts every fragment spawned.
type Fragments struct {
	count int
}

func NewFragments() *Fragments { return &Fragments{} }

func (f *Fragments) Name() string { return "fragments" }

func (f *Fragments) Observe(r *sim.StepReport) {
	for i := range r.Events {
		f.count += len(r.Events[i].Fragments)
	}
}

func (f *Fragments) Value() float64 { return float64(f.count) }
func (f *Fragments) Reset()         { f.count = 0 }

// PeakDebris is the largest debris count seen in any step.
type PeakDebris struct {
	peak int
}

func NewPeakDebris() *PeakDebris { return &PeakDebris{} }

func (p *PeakDebris) Name() string { return "peak_debris" }

func (p *PeakDebris) Observe(r *sim.StepReport) {
	if r.Counts.Debris > p.peak {
		p.peak = r.Counts.Debris
	}
}

func (p *PeakDebris) Value() float64 { return float64(p.peak) }
func (p *PeakDebris) Reset()         { p.peak = 0 }

// CollisionRate is collisions per simulated hour.
type CollisionRate struct {
	count   int
	elapsed float64
}

func NewCollisionRate() *CollisionRate { return &CollisionRate{} }

func (c *CollisionRate) Name() string { return "collision_rate_per_hour" }

func (c *CollisionRate) Observe(r *sim.StepReport) {
	c.count += len(r.Events)
	c.elapsed += r.Dt
}

func (c *CollisionRate) Value() float64 {
	if c.elapsed == 0 {
		return 0
	}
	return float64(c.count) / (c.elapsed / 3600)
}

func (c *CollisionRate) Reset() { c.count, c.elapsed = 0, 0 }

// Standard returns the metric set attached to every headless run.
func Standard(gm float64) []sim.Metric {
	return []sim.Metric{
		NewEnergyDrift(gm),
		NewStability(),
		NewCollisions(),
		NewFragments(),
		NewPeakDebris(),
		NewCollisionRate(),
	}
}
