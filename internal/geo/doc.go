// Package geo maps the simulation's geographic coordinate space onto the
// fixed visual viewport used by the renderer.
//
//   - [Transform]: affine lat/lon to x/y map with the y axis inverted
//   - [Geography]: landmasses and bases, transformed once at load
//
// # Example
//
//	t, err := geo.NewTransform(geo.Bounds{MinLat: 110, MaxLat: 140, MinLon: 15, MaxLon: 42}, geo.Viewport{W: 1000, H: 700})
//	p := t.ToVisual(121.5, 25.0)
//
// # Thread Safety
//
// A [Transform] holds no mutable state and may be shared across goroutines.
package geo
