// Package noise provides the scalar field sampled by the renderer.
//
// The package defines:
//
//   - [Sampler]: a pure function from a [Coord] to a value in [-1, 1]
//   - [Perlin] and [Simplex]: samplers backed by third-party primitives
//   - [Registry]: name-based sampler construction for the CLI
//   - [Cache]: a quantizing LRU memo in front of any Sampler
//
// # Example
//
//	s, _ := noise.NewRegistry().Get("perlin", noise.DefaultParams())
//	c, _ := noise.NewCache(s, 2000, 1)
//	v := c.GetOrCompute(noise.Coord{X: 0.5, Y: 1.2, Z: 0})
//
// # Thread Safety
//
// Samplers are safe for concurrent use. Cache is NOT; it is owned by the
// render loop and only touched from one goroutine.
package noise
