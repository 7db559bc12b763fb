// Package dynamo provides the core value types shared by every stage of the
// orbital debris simulation.
//
// The package defines the per-object records that the rest of the module
// reads and writes:
//
//   - [OrbitalState]: position (km), velocity (km/s) and mass (kg)
//   - [PhysicsObject]: collision radius and [Category]
//   - [Lineage]: debris ancestry (parent collision, generation, creation time)
//   - [SatelliteInfo]: catalog metadata for tracked satellites
//
// Positions live in an inertial frame centred on the primary body. All
// arithmetic is float64.
//
// # Example
//
//	s := dynamo.OrbitalState{
//		Position: r3.Vec{X: 7000},
//		Velocity: r3.Vec{Y: 7.546},
//		Mass:     1000,
//	}
//	e := s.TotalEnergy(dynamo.EarthGM)
//
// # Thread Safety
//
// The types are plain values. Sharing them across goroutines is safe as long
// as no goroutine mutates a record another goroutine is reading.
package dynamo
