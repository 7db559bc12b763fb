package physics

import (
	"math"

	"github.com/kyjohnso/kessler/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// CentralBody is the primary mass fixed at the origin.
type CentralBody struct {
	Name     string
	GM       float64 // m³/s²
	RadiusKm float64
}

func Earth() CentralBody {
	return CentralBody{Name: "earth", GM: dynamo.EarthGM, RadiusKm: dynamo.EarthRadiusKm}
}

// Acceleration returns the inverse-square acceleration in km/s² at position
// p (km). It reports false at the origin, where the field is undefined.
func (b CentralBody) Acceleration(p r3.Vec) (r3.Vec, bool) {
	r := r3.Norm(p)
	if r == 0 {
		return r3.Vec{}, false
	}
	rm := r * dynamo.MetersPerKm
	a := -b.GM / (rm * rm) / dynamo.MetersPerKm
	return r3.Scale(a/r, p), true
}

// CircularSpeed is the circular orbital speed in km/s at radius rKm.
func (b CentralBody) CircularSpeed(rKm float64) float64 {
	return math.Sqrt(b.GM/(rKm*dynamo.MetersPerKm)) / dynamo.MetersPerKm
}

// Period is the circular orbital period in seconds at radius rKm.
func (b CentralBody) Period(rKm float64) float64 {
	rm := rKm * dynamo.MetersPerKm
	return 2 * math.Pi * math.Sqrt(rm*rm*rm/b.GM)
}

// Energy is the mechanical energy of s in joules.
func (b CentralBody) Energy(s dynamo.OrbitalState) float64 {
	return s.TotalEnergy(b.GM)
}

// Inside reports whether p lies below the body's surface.
func (b CentralBody) Inside(p r3.Vec) bool {
	return r3.Norm(p) < b.RadiusKm
}
