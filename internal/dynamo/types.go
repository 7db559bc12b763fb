package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// EarthGM is the gravitational parameter of the Earth in m³/s².
	EarthGM = 3.986004418e14
	// EarthRadiusKm is the mean Earth radius.
	EarthRadiusKm = 6371.0
	// MetersPerKm converts between the storage unit and the SI force law.
	MetersPerKm = 1000.0
)

// ObjectID identifies a simulated object for its whole lifetime. IDs are
// never reused.
type ObjectID uint64

// CollisionID identifies one resolved collision.
type CollisionID uint32

// OrbitalState is the kinematic record of one object.
type OrbitalState struct {
	Position r3.Vec // km
	Velocity r3.Vec // km/s
	Mass     float64
}

// Radius is the distance from the primary body's centre in km.
func (s OrbitalState) Radius() float64 { return r3.Norm(s.Position) }

// Speed is the velocity magnitude in km/s.
func (s OrbitalState) Speed() float64 { return r3.Norm(s.Velocity) }

// Altitude is the height above the mean Earth radius in km.
func (s OrbitalState) Altitude() float64 { return s.Radius() - EarthRadiusKm }

// TotalEnergy returns the specific mechanical energy times mass, in joules,
// for a central body with gravitational parameter gm (m³/s²).
func (s OrbitalState) TotalEnergy(gm float64) float64 {
	v := s.Speed() * MetersPerKm
	r := s.Radius() * MetersPerKm
	if r == 0 {
		return math.Inf(-1)
	}
	return 0.5*s.Mass*v*v - gm*s.Mass/r
}

// IsValid reports whether every component is finite and the mass is positive.
func (s OrbitalState) IsValid() bool {
	for _, v := range [...]float64{
		s.Position.X, s.Position.Y, s.Position.Z,
		s.Velocity.X, s.Velocity.Y, s.Velocity.Z,
		s.Mass,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return s.Mass > 0
}

// Category distinguishes tracked satellites from generated debris.
type Category uint8

const (
	Satellite Category = iota
	Debris
)

const (
	// SatelliteRadiusKm is the default collision radius of a satellite (10 m).
	SatelliteRadiusKm = 0.01
	// DebrisRadiusKm is the default collision radius of a fragment (1 m).
	DebrisRadiusKm = 0.001
)

func (c Category) String() string {
	switch c {
	case Satellite:
		return "satellite"
	case Debris:
		return "debris"
	default:
		return "unknown"
	}
}

// DefaultRadius returns the collision radius used when none is given.
func (c Category) DefaultRadius() float64 {
	if c == Debris {
		return DebrisRadiusKm
	}
	return SatelliteRadiusKm
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "satellite", "":
		return Satellite, true
	case "debris":
		return Debris, true
	}
	return Satellite, false
}

// PhysicsObject is the collision profile of an object.
type PhysicsObject struct {
	CollisionRadius float64 // km
	Category        Category
}

// NewPhysicsObject returns a profile with the category's default radius.
func NewPhysicsObject(c Category) PhysicsObject {
	return PhysicsObject{CollisionRadius: c.DefaultRadius(), Category: c}
}

// Lineage records debris ancestry. Generation 0 marks an original object.
type Lineage struct {
	ParentCollision *CollisionID
	Generation      uint32
	CreationTime    float64
}

func Original(t float64) Lineage {
	return Lineage{CreationTime: t}
}

// FromCollision is the lineage of a first-generation fragment.
func FromCollision(id CollisionID, t float64) Lineage {
	return Lineage{ParentCollision: &id, Generation: 1, CreationTime: t}
}

// FromDebris is the lineage of a fragment whose parent was itself debris.
func FromDebris(parent Lineage, id CollisionID, t float64) Lineage {
	return Lineage{ParentCollision: &id, Generation: parent.Generation + 1, CreationTime: t}
}

// SatelliteInfo is catalog metadata for a tracked satellite.
type SatelliteInfo struct {
	Name    string
	NoradID uint32
	Active  bool
}
