package sim

import (
	"time"

	"github.com/kyjohnso/kessler/internal/collision"
	"github.com/kyjohnso/kessler/internal/debris"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/population"
)

// StepReport is what one step hands to observers and metrics.
type StepReport struct {
	Step   int
	Time   float64
	Dt     float64
	Paused bool

	// Objects borrows the population arena; it is valid until the next step.
	Objects []population.Object
	Events  []debris.Event
	Counts  population.Counts

	Skipped     []dynamo.ObjectID // integrator skips (zero radius)
	StalePairs  int               // pairs dropped by the generator
	Detection   collision.Stats
	WallElapsed time.Duration
}

type Metric interface {
	Name() string
	Observe(r *StepReport)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(r *StepReport)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(r *StepReport)

func (f ObserverFunc) OnStep(r *StepReport) { f(r) }

type Config struct {
	Dt            float64
	Duration      float64
	Seed          int64
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0,
		Duration:      5400,
		SampleEvery:   60,
		ValidateState: true,
	}
}

// Sample is one row of the population time series.
type Sample struct {
	Time        float64 `json:"time"`
	Live        int     `json:"live"`
	Satellites  int     `json:"satellites"`
	Debris      int     `json:"debris"`
	Collisions  int     `json:"collisions"`
	TotalEnergy float64 `json:"total_energy"`
}

type Result struct {
	Series      []Sample
	Events      []debris.Event
	Final       []population.Object
	FinalCounts population.Counts
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Skipped     int
	Errors      []error
}
