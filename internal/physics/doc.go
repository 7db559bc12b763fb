// Package physics implements the single-centre gravitational field that
// drives every orbit in the simulation.
//
// There is no N-body interaction, drag, oblateness or third-body term: the
// acceleration of an object depends only on its own position.
package physics
