package physics

import (
	"math"
	"testing"

	"github.com/kyjohnso/kessler/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestAccelerationMagnitude(t *testing.T) {
	earth := Earth()
	r := 7000.0
	a, ok := earth.Acceleration(r3.Vec{X: r})
	if !ok {
		t.Fatal("expected acceleration to be defined")
	}

	expected := dynamo.EarthGM / math.Pow(r*1000, 2) / 1000
	if math.Abs(a.X+expected) > 1e-15 {
		t.Errorf("expected ax=%.9e, got %.9e", -expected, a.X)
	}
	if a.Y != 0 || a.Z != 0 {
		t.Errorf("expected purely radial acceleration, got %+v", a)
	}
}

func TestAccelerationAtOrigin(t *testing.T) {
	if _, ok := Earth().Acceleration(r3.Vec{}); ok {
		t.Error("expected undefined acceleration at origin")
	}
}

func TestCircularSpeed(t *testing.T) {
	tests := []struct {
		name     string
		altitude float64
		speed    float64
	}{
		{"iss", 408, 7.66},
		{"gps", 20200, 3.87},
		{"geo", 35786, 3.07},
	}

	earth := Earth()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := earth.CircularSpeed(earth.RadiusKm + tt.altitude)
			if math.Abs(got-tt.speed) > 0.01 {
				t.Errorf("expected %.2f km/s, got %.4f", tt.speed, got)
			}
		})
	}
}

func TestCircularOrbitState(t *testing.T) {
	earth := Earth()
	o := CircularOrbit{
		AltitudeKm:  550,
		Inclination: 0.9,
		RAAN:        2.1,
		ArgPerigee:  0.4,
		TrueAnomaly: 5.0,
	}
	s := o.State(earth, 250)

	r := earth.RadiusKm + 550
	if math.Abs(s.Radius()-r) > 1e-9 {
		t.Errorf("expected radius %.3f, got %.9f", r, s.Radius())
	}
	if math.Abs(s.Speed()-earth.CircularSpeed(r)) > 1e-12 {
		t.Errorf("expected circular speed, got %.9f", s.Speed())
	}
	if dot := r3.Dot(s.Position, s.Velocity); math.Abs(dot) > 1e-6 {
		t.Errorf("expected velocity perpendicular to position, dot=%.3e", dot)
	}

	// angular momentum tilt equals inclination
	h := r3.Cross(s.Position, s.Velocity)
	inc := math.Acos(h.Z / r3.Norm(h))
	if math.Abs(inc-o.Inclination) > 1e-9 {
		t.Errorf("expected inclination %.3f, got %.9f", o.Inclination, inc)
	}
}

func TestPeriod(t *testing.T) {
	earth := Earth()
	p := earth.Period(42164)
	if math.Abs(p-86164) > 60 {
		t.Errorf("expected sidereal day period, got %.0fs", p)
	}
}
