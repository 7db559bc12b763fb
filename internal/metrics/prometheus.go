package metrics

import (
	"github.com/kyjohnso/kessler/internal/sim"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector mirrors step reports into Prometheus series. Attach it with
// Simulator.AddObserver.
type Collector struct {
	gm float64

	objects      *prometheus.GaugeVec
	simTime      prometheus.Gauge
	totalEnergy  prometheus.Gauge
	collisions   prometheus.Counter
	fragments    prometheus.Counter
	skips        prometheus.Counter
	stepDuration prometheus.Histogram
}

// NewCollector registers the kessler series on reg. A nil reg uses the
// default registerer.
func NewCollector(gm float64, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		gm: gm,
		objects: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kessler_objects",
				Help: "Live objects by category",
			},
			[]string{"category"},
		),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kessler_sim_time_seconds",
			Help: "Simulated time since start",
		}),
		totalEnergy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kessler_total_energy_joules",
			Help: "Total mechanical energy of the population",
		}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kessler_collisions_total",
			Help: "Resolved collision events",
		}),
		fragments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kessler_fragments_total",
			Help: "Debris fragments spawned",
		}),
		skips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kessler_integrator_skips_total",
			Help: "Objects skipped by the integrator for a degenerate position",
		}),
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kessler_step_duration_seconds",
			Help:    "Wall time spent in one pipeline step",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
	}

	reg.MustRegister(c.objects)
	reg.MustRegister(c.simTime)
	reg.MustRegister(c.totalEnergy)
	reg.MustRegister(c.collisions)
	reg.MustRegister(c.fragments)
	reg.MustRegister(c.skips)
	reg.MustRegister(c.stepDuration)

	return c
}

func (c *Collector) OnStep(r *sim.StepReport) {
	c.objects.WithLabelValues("satellite").Set(float64(r.Counts.Satellites))
	c.objects.WithLabelValues("debris").Set(float64(r.Counts.Debris))
	c.simTime.Set(r.Time)

	if r.Paused {
		return
	}

	c.totalEnergy.Set(systemEnergy(r, c.gm))
	c.collisions.Add(float64(len(r.Events)))
	for i := range r.Events {
		c.fragments.Add(float64(len(r.Events[i].Fragments)))
	}
	c.skips.Add(float64(len(r.Skipped)))
	c.stepDuration.Observe(r.WallElapsed.Seconds())
}
