package grid

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownLayout is returned by ParseLayout for unrecognised names.
var ErrUnknownLayout = errors.New("unknown layout")

// Layout selects the hexagon orientation.
type Layout int

const (
	PointyTop Layout = iota
	FlatTop
)

// Orientation holds the pixel transform of a layout: F is the forward
// (tile to pixel) matrix, B its inverse, Width/Height the tile extent in
// units of the corner radius, and StartAngle the angle of corner 0 in
// degrees.
type Orientation struct {
	F0, F1, F2, F3 float64
	B0, B1, B2, B3 float64
	Width, Height  float64
	StartAngle     float64
}

var sqrt3 = math.Sqrt(3)

var orientations = [...]Orientation{
	PointyTop: {
		F0: sqrt3, F1: sqrt3 / 2, F2: 0, F3: 1.5,
		B0: sqrt3 / 3, B1: -1.0 / 3, B2: 0, B3: 2.0 / 3,
		Width: sqrt3, Height: 2,
		StartAngle: 30,
	},
	FlatTop: {
		F0: 1.5, F1: 0, F2: sqrt3 / 2, F3: sqrt3,
		B0: 2.0 / 3, B1: 0, B2: -1.0 / 3, B3: sqrt3 / 3,
		Width: 2, Height: sqrt3,
		StartAngle: 0,
	},
}

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool {
	return l == PointyTop || l == FlatTop
}

// Orientation returns the transform coefficients for l. Unknown layouts
// get the pointy-top coefficients.
func (l Layout) Orientation() Orientation {
	if !l.Valid() {
		return orientations[PointyTop]
	}
	return orientations[l]
}

func (l Layout) String() string {
	switch l {
	case PointyTop:
		return "pointy"
	case FlatTop:
		return "flat"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout parses "pointy" or "flat".
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pointy", "pointy_top", "pointy-top":
		return PointyTop, nil
	case "flat", "flat_top", "flat-top":
		return FlatTop, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayout, s)
}

// Point is a pixel position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis aligned pixel rectangle.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}
