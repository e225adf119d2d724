// Package shape enumerates the tiles of the standard hex map outlines and
// builds tile maps from them through a caller supplied factory.
package shape

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gravitas-games/hexgrid/pkg/hex"
)

var (
	// ErrUnknownKind is returned for an unrecognised outline name.
	ErrUnknownKind = errors.New("unknown shape kind")

	// ErrParams is returned when an outline gets the wrong number of parameters.
	ErrParams = errors.New("wrong number of shape parameters")
)

// Kind names a map outline.
type Kind int

const (
	KindParallelogram Kind = iota
	KindDiamond
	KindRectangleOdd
	KindRectangleEven
	KindTriangleUp
	KindTriangleDown
	KindHexagon
)

var kindNames = [...]string{
	KindParallelogram: "parallelogram",
	KindDiamond:       "diamond",
	KindRectangleOdd:  "rectangle_odd",
	KindRectangleEven: "rectangle_even",
	KindTriangleUp:    "triangle_up",
	KindTriangleDown:  "triangle_down",
	KindHexagon:       "hexagon",
}

// arity is the number of integer parameters each kind takes.
var arity = [...]int{
	KindParallelogram: 4,
	KindDiamond:       4,
	KindRectangleOdd:  2,
	KindRectangleEven: 2,
	KindTriangleUp:    1,
	KindTriangleDown:  1,
	KindHexagon:       1,
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Arity returns the number of parameters New expects for k.
func (k Kind) Arity() int {
	if k < 0 || int(k) >= len(arity) {
		return 0
	}
	return arity[k]
}

// ParseKind parses an outline name. "triangle_top" is accepted for
// triangle_up.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "triangle_top" {
		return KindTriangleUp, nil
	}
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Outline is an immutable description of a map outline. The zero value is
// the one-tile parallelogram at the origin.
type Outline struct {
	kind Kind
	p    [4]int
}

// Parallelogram covers qMin<=q<=qMax, rMin<=r<=rMax.
func Parallelogram(qMin, qMax, rMin, rMax int) Outline {
	return Outline{KindParallelogram, [4]int{qMin, qMax, rMin, rMax}}
}

// Diamond covers qMin<=q<=qMax, sMin<=s<=sMax with s=-q-r.
func Diamond(qMin, qMax, sMin, sMax int) Outline {
	return Outline{KindDiamond, [4]int{qMin, qMax, sMin, sMax}}
}

// RectangleOdd is a width x height rectangle centred on the origin whose
// rows shift q by r>>1.
func RectangleOdd(width, height int) Outline {
	return Outline{KindRectangleOdd, [4]int{width, height}}
}

// RectangleEven is a width x height rectangle centred on the origin whose
// rows shift s by r>>1.
func RectangleEven(width, height int) Outline {
	return Outline{KindRectangleEven, [4]int{width, height}}
}

// TriangleUp is the triangle with rows r=0..-size, row r spanning
// q=-r..size.
func TriangleUp(size int) Outline {
	return Outline{KindTriangleUp, [4]int{size}}
}

// TriangleDown is the triangle with columns q=0..size, column q spanning
// r=0..size-q.
func TriangleDown(size int) Outline {
	return Outline{KindTriangleDown, [4]int{size}}
}

// Hexagon is the full hex of the given radius around the origin.
func Hexagon(radius int) Outline {
	return Outline{KindHexagon, [4]int{radius}}
}

// New builds an outline from a kind and its parameters in constructor order.
func New(kind Kind, params ...int) (Outline, error) {
	if kind < 0 || int(kind) >= len(kindNames) {
		return Outline{}, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	if len(params) != arity[kind] {
		return Outline{}, fmt.Errorf("%w: %s takes %d, got %d", ErrParams, kind, arity[kind], len(params))
	}
	o := Outline{kind: kind}
	copy(o.p[:], params)
	return o, nil
}

// Kind returns the outline kind.
func (o Outline) Kind() Kind { return o.kind }

// Params returns the outline parameters in constructor order.
func (o Outline) Params() []int {
	return append([]int(nil), o.p[:arity[o.kind]]...)
}

func (o Outline) String() string {
	return fmt.Sprintf("%s%v", o.kind, o.Params())
}

// Len returns the number of tiles in the outline.
func (o Outline) Len() int {
	switch o.kind {
	case KindParallelogram, KindDiamond:
		return span(o.p[0], o.p[1]) * span(o.p[2], o.p[3])
	case KindRectangleOdd, KindRectangleEven:
		if o.p[0] <= 0 || o.p[1] <= 0 {
			return 0
		}
		return o.p[0] * o.p[1]
	case KindTriangleUp, KindTriangleDown:
		n := o.p[0]
		if n < 0 {
			return 0
		}
		return (n + 1) * (n + 2) / 2
	case KindHexagon:
		n := o.p[0]
		if n < 0 {
			return 0
		}
		return 3*n*n + 3*n + 1
	}
	return 0
}

// Each calls fn once for every tile of the outline, in a fixed order.
// Malformed parameters (inverted ranges, non-positive rectangle sides,
// negative sizes) describe an empty outline.
func (o Outline) Each(fn func(hex.Axial)) {
	switch o.kind {
	case KindParallelogram:
		for q := o.p[0]; q <= o.p[1]; q++ {
			for r := o.p[2]; r <= o.p[3]; r++ {
				fn(hex.Axial{Q: q, R: r})
			}
		}
	case KindDiamond:
		for q := o.p[0]; q <= o.p[1]; q++ {
			for s := o.p[2]; s <= o.p[3]; s++ {
				fn(hex.Axial{Q: q, R: -q - s})
			}
		}
	case KindRectangleOdd:
		w, h := o.p[0], o.p[1]
		if w <= 0 || h <= 0 {
			return
		}
		hw, hh := w/2, h/2
		for r := -hh; r < h-hh; r++ {
			off := r >> 1
			for q := -hw - off; q < w-hw-off; q++ {
				fn(hex.Axial{Q: q, R: r})
			}
		}
	case KindRectangleEven:
		w, h := o.p[0], o.p[1]
		if w <= 0 || h <= 0 {
			return
		}
		hw, hh := w/2, h/2
		for r := -hh; r < h-hh; r++ {
			off := r >> 1
			for s := -hw - off; s < w-hw-off; s++ {
				fn(hex.Axial{Q: -s - r, R: r})
			}
		}
	case KindTriangleUp:
		size := o.p[0]
		for r := 0; r >= -size; r-- {
			for q := -r; q <= size; q++ {
				fn(hex.Axial{Q: q, R: r})
			}
		}
	case KindTriangleDown:
		size := o.p[0]
		for q := 0; q <= size; q++ {
			for r := 0; r <= size-q; r++ {
				fn(hex.Axial{Q: q, R: r})
			}
		}
	case KindHexagon:
		radius := o.p[0]
		for q := -radius; q <= radius; q++ {
			r1 := max(-radius, -q-radius)
			r2 := min(radius, -q+radius)
			for r := r1; r <= r2; r++ {
				fn(hex.Axial{Q: q, R: r})
			}
		}
	}
}

// Coords returns the tiles of the outline in enumeration order.
func (o Outline) Coords() []hex.Axial {
	res := make([]hex.Axial, 0, o.Len())
	o.Each(func(a hex.Axial) { res = append(res, a) })
	return res
}

func span(lo, hi int) int {
	if hi < lo {
		return 0
	}
	return hi - lo + 1
}
