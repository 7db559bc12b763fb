// Package scenario builds initial populations: the named test satellites, a
// seeded random stress population, the head-on pair used to exercise the
// breakup path, and YAML catalogs of hand-authored objects.
//
// Builders return plain object slices. Callers add them to a
// population.Population, which assigns identifiers.
package scenario
