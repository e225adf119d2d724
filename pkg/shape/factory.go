package shape

import "github.com/gravitas-games/hexgrid/pkg/hex"

// Factory builds the payload for the tile at (q, r). It is called exactly
// once per tile; the call order is fixed for a given outline but callers
// must not rely on it.
type Factory[T any] func(q, r int) T

// Generate enumerates o and stores f(q, r) for every tile. A nil factory
// stores the zero value of T.
func Generate[T any](o Outline, f Factory[T]) map[hex.Axial]T {
	tiles := make(map[hex.Axial]T, o.Len())
	o.Each(func(a hex.Axial) {
		var v T
		if f != nil {
			v = f(a.Q, a.R)
		}
		tiles[a] = v
	})
	return tiles
}

// Coordinate is a factory that stores each tile's own coordinate.
func Coordinate(q, r int) hex.Axial {
	return hex.Axial{Q: q, R: r}
}
