// Package grid stores hex tiles sparsely by coordinate and projects between
// tile coordinates and pixels.
//
// A Grid is not safe for concurrent use: readers may share it only while
// nobody calls Populate, Transform or a setter.
package grid

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/gravitas-games/hexgrid/pkg/hex"
	"github.com/gravitas-games/hexgrid/pkg/shape"
)

// Default tile size in pixels for a new grid.
const DefaultTileSize = 20

// Grid holds tiles of type T keyed by axial coordinate.
type Grid[T any] struct {
	tiles   map[hex.Axial]T
	outline shape.Outline

	layout   Layout
	origin   Point
	tileSize Point // pixel width and height of one tile
	size     Point // corner radius along x and y
}

// New creates an empty pointy-top grid with the default tile size and the
// origin at 0,0.
func New[T any]() *Grid[T] {
	g := &Grid[T]{
		tiles:    make(map[hex.Axial]T),
		layout:   PointyTop,
		tileSize: Point{DefaultTileSize, DefaultTileSize},
	}
	g.resize()
	return g
}

func (g *Grid[T]) resize() {
	o := g.layout.Orientation()
	g.size = Point{g.tileSize.X / o.Width, g.tileSize.Y / o.Height}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SetOrigin moves the pixel position of tile (0,0). If either value is
// non-finite the whole call is ignored and the previous origin kept.
func (g *Grid[T]) SetOrigin(x, y float64) {
	if !finite(x) || !finite(y) {
		return
	}
	g.origin = Point{x, y}
}

// SetTileSize sets the pixel width and height of a tile. If either value
// is non-finite or non-positive the whole call is ignored and the previous
// size kept.
func (g *Grid[T]) SetTileSize(w, h float64) {
	if !finite(w) || !finite(h) || w <= 0 || h <= 0 {
		return
	}
	g.tileSize = Point{w, h}
	g.resize()
}

// SetOriginString is SetOrigin for textual input; an unparsable value
// rejects the pair.
func (g *Grid[T]) SetOriginString(x, y string) {
	fx, errX := parseFloat(x)
	fy, errY := parseFloat(y)
	if errX != nil || errY != nil {
		return
	}
	g.SetOrigin(fx, fy)
}

// SetTileSizeString is SetTileSize for textual input; an unparsable value
// rejects the pair.
func (g *Grid[T]) SetTileSizeString(w, h string) {
	fw, errW := parseFloat(w)
	fh, errH := parseFloat(h)
	if errW != nil || errH != nil {
		return
	}
	g.SetTileSize(fw, fh)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// SetLayout switches the orientation. Unknown layouts are ignored. Stored
// tiles do not move; only later pixel projections change.
func (g *Grid[T]) SetLayout(l Layout) {
	if !l.Valid() {
		return
	}
	g.layout = l
	g.resize()
}

// Layout returns the current orientation.
func (g *Grid[T]) Layout() Layout { return g.layout }

// Origin returns the pixel position of tile (0,0).
func (g *Grid[T]) Origin() Point { return g.origin }

// TileSize returns the pixel width and height of a tile.
func (g *Grid[T]) TileSize() Point { return g.tileSize }

// Populate replaces the contents of g with the tiles of o, calling f once
// per tile.
func (g *Grid[T]) Populate(o shape.Outline, f shape.Factory[T]) {
	g.tiles = shape.Generate(o, f)
	g.outline = o
}

// Outline returns the outline of the last Populate call.
func (g *Grid[T]) Outline() shape.Outline { return g.outline }

// Len returns the number of stored tiles.
func (g *Grid[T]) Len() int { return len(g.tiles) }

// Lookup returns the tile at h. The boolean is false when h is not part
// of the grid.
func (g *Grid[T]) Lookup(h hex.Axial) (T, bool) {
	v, ok := g.tiles[h]
	return v, ok
}

// Has reports whether h is part of the grid.
func (g *Grid[T]) Has(h hex.Axial) bool {
	_, ok := g.tiles[h]
	return ok
}

// FilterPresent returns the coordinates of hs that are part of the grid,
// in input order.
func (g *Grid[T]) FilterPresent(hs []hex.Axial) []hex.Axial {
	res := make([]hex.Axial, 0, len(hs))
	for _, h := range hs {
		if g.Has(h) {
			res = append(res, h)
		}
	}
	return res
}

// Tiles returns the stored tiles for the coordinates of hs that are part of
// the grid, in input order.
func (g *Grid[T]) Tiles(hs []hex.Axial) []T {
	res := make([]T, 0, len(hs))
	for _, h := range hs {
		if v, ok := g.tiles[h]; ok {
			res = append(res, v)
		}
	}
	return res
}

// TileToPixel returns the pixel center of h.
func (g *Grid[T]) TileToPixel(h hex.Axial) Point {
	o := g.layout.Orientation()
	q, r := float64(h.Q), float64(h.R)
	return Point{
		X: g.origin.X + (o.F0*q+o.F1*r)*g.size.X,
		Y: g.origin.Y + (o.F2*q+o.F3*r)*g.size.Y,
	}
}

// PixelToTile returns the fractional tile under p. Round it to get a
// lookup key.
func (g *Grid[T]) PixelToTile(p Point) hex.FracAxial {
	o := g.layout.Orientation()
	x := (p.X - g.origin.X) / g.size.X
	y := (p.Y - g.origin.Y) / g.size.Y
	return hex.FracAxial{
		Q: o.B0*x + o.B1*y,
		R: o.B2*x + o.B3*y,
	}
}

// Snap returns the tile whose hexagon contains p.
func (g *Grid[T]) Snap(p Point) hex.Axial {
	return g.PixelToTile(p).Round()
}

// TileAt returns the tile under pixel p.
func (g *Grid[T]) TileAt(p Point) (hex.Axial, T, bool) {
	h := g.Snap(p)
	v, ok := g.tiles[h]
	return h, v, ok
}

// NeighborsAt returns the stored neighbors of the tile under p, in
// direction order.
func (g *Grid[T]) NeighborsAt(p Point) []hex.Axial {
	nb := hex.Neighbors(g.Snap(p))
	return g.FilterPresent(nb[:])
}

// Between returns the stored tiles on the line between the tiles under
// p1 and p2.
func (g *Grid[T]) Between(p1, p2 Point) []hex.Axial {
	return g.FilterPresent(hex.Line(g.Snap(p1), g.Snap(p2)))
}

// Corners returns the six pixel vertices of h's hexagon.
func (g *Grid[T]) Corners(h hex.Axial) [6]Point {
	o := g.layout.Orientation()
	c := g.TileToPixel(h)
	var res [6]Point
	for i := range res {
		angle := (o.StartAngle + float64(i)*60) * math.Pi / 180
		res[i] = Point{
			X: c.X + g.size.X*math.Cos(angle),
			Y: c.Y + g.size.Y*math.Sin(angle),
		}
	}
	return res
}

// Bounds returns the pixel rectangle an image of h should be drawn into.
func (g *Grid[T]) Bounds(h hex.Axial) Rect {
	c := g.TileToPixel(h)
	hw, hh := g.tileSize.X/2, g.tileSize.Y/2
	return Rect{
		Min: Point{c.X - hw, c.Y - hh},
		Max: Point{c.X + hw, c.Y + hh},
	}
}

// Coords returns the stored coordinates ordered by r, then q.
func (g *Grid[T]) Coords() []hex.Axial {
	res := make([]hex.Axial, 0, len(g.tiles))
	for h := range g.tiles {
		res = append(res, h)
	}
	slices.SortFunc(res, func(a, b hex.Axial) int {
		if c := cmp.Compare(a.R, b.R); c != 0 {
			return c
		}
		return cmp.Compare(a.Q, b.Q)
	})
	return res
}

// ForEach calls fn for every stored tile, ordered by r, then q.
func (g *Grid[T]) ForEach(fn func(h hex.Axial, v T)) {
	for _, h := range g.Coords() {
		fn(h, g.tiles[h])
	}
}

// Transform replaces every stored tile with fn's result, ordered by r,
// then q.
func (g *Grid[T]) Transform(fn func(h hex.Axial, v T) T) {
	for _, h := range g.Coords() {
		g.tiles[h] = fn(h, g.tiles[h])
	}
}
