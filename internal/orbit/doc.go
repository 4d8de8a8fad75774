// Package orbit generates Hopalong orbits: point clouds produced by iterating
// a generalisation of Barry Martin's two-dimensional map.
//
// The package is split along the generation pipeline:
//
//   - [Params]: the five coefficients and three mode scalars of one generation
//   - [Catalog]: precomputed known-good parameter sets
//   - [Selector]: curated or randomized parameter selection with a history log
//   - [Generator]: produces an [Orbit] of independently seeded subsets
//   - [HueTable]: one hue per subset, regenerated with every orbit
//
// # Example
//
//	sel := orbit.NewSelector(orbit.DefaultCatalog(), rng)
//	gen := orbit.NewGenerator(rng, orbit.DefaultScale)
//	o, _ := gen.Generate(sel.Select(orbit.ModeRandom), 7, 32000)
//	hues := orbit.AssignHues(rng, 7)
//
// # Thread Safety
//
// Selector and Generator are NOT thread-safe. They are meant to be driven from
// a single execution context; Generate fans work out internally but returns
// only once every subset is complete.
package orbit
