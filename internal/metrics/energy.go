package metrics

import (
	"math"

	"github.com/kyjohnso/kessler/internal/sim"
)

// Energy reports the mean total mechanical energy of the population, in
// joules, over the observed steps.
type Energy struct {
	name        string
	gm          float64
	samples     int
	totalEnergy float64
}

func NewEnergy(gm float64) *Energy {
	return &Energy{
		name: "energy",
		gm:   gm,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(r *sim.StepReport) {
	e.totalEnergy += systemEnergy(r, e.gm)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative change in total energy between
// breakups. Fragments discard mass, so the baseline restarts on every step
// that resolved a collision.
type EnergyDrift struct {
	name          string
	gm            float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(gm float64) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		gm:   gm,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(r *sim.StepReport) {
	energy := systemEnergy(r, e.gm)

	if e.samples == 0 || len(r.Events) > 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

func systemEnergy(r *sim.StepReport, gm float64) float64 {
	var total float64
	for i := range r.Objects {
		total += r.Objects[i].State.TotalEnergy(gm)
	}
	return total
}
