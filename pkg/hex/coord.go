// Package hex implements axial and cube coordinates for hexagonal grids
// together with the traversal algorithms built on them.
//
// Axial (q, r) is the public coordinate and the storage key. Cube (x, y, z)
// with x+y+z=0 is used for traversal math; q=x and r=z.
package hex

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidKey is returned by ParseKey for malformed keys.
var ErrInvalidKey = errors.New("invalid hex key")

// Axial represents axial coordinates (q, r).
type Axial struct {
	Q int `json:"q" yaml:"q"`
	R int `json:"r" yaml:"r"`
}

// Cube represents cube coordinates (x, y, z) with x+y+z=0.
type Cube struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Add returns a+b in axial space.
func (a Axial) Add(b Axial) Axial { return Axial{a.Q + b.Q, a.R + b.R} }

// Sub returns a-b in axial space.
func (a Axial) Sub(b Axial) Axial { return Axial{a.Q - b.Q, a.R - b.R} }

// Scale scales an axial vector by k.
func (a Axial) Scale(k int) Axial { return Axial{a.Q * k, a.R * k} }

// S returns the implicit third coordinate, -q-r.
func (a Axial) S() int { return -a.Q - a.R }

// ToCube converts axial to cube.
func (a Axial) ToCube() Cube {
	x := a.Q
	z := a.R
	y := -x - z
	return Cube{X: x, Y: y, Z: z}
}

// Key returns the canonical "q,r" form of a.
func (a Axial) Key() string {
	return strconv.Itoa(a.Q) + "," + strconv.Itoa(a.R)
}

func (a Axial) String() string { return "(" + a.Key() + ")" }

// ParseKey parses a key produced by Axial.Key.
func ParseKey(key string) (Axial, error) {
	qs, rs, ok := strings.Cut(key, ",")
	if !ok {
		return Axial{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	q, err := strconv.Atoi(strings.TrimSpace(qs))
	if err != nil {
		return Axial{}, fmt.Errorf("%w: %q: %v", ErrInvalidKey, key, err)
	}
	r, err := strconv.Atoi(strings.TrimSpace(rs))
	if err != nil {
		return Axial{}, fmt.Errorf("%w: %q: %v", ErrInvalidKey, key, err)
	}
	return Axial{Q: q, R: r}, nil
}

// Add returns a+b in cube space.
func (c Cube) Add(o Cube) Cube { return Cube{c.X + o.X, c.Y + o.Y, c.Z + o.Z} }

// Sub returns c-o in cube space.
func (c Cube) Sub(o Cube) Cube { return Cube{c.X - o.X, c.Y - o.Y, c.Z - o.Z} }

// Scale scales a cube vector by k.
func (c Cube) Scale(k int) Cube { return Cube{c.X * k, c.Y * k, c.Z * k} }

// Valid reports whether c satisfies x+y+z=0.
func (c Cube) Valid() bool { return c.X+c.Y+c.Z == 0 }

// ToAxial converts cube to axial.
func (c Cube) ToAxial() Axial { return Axial{Q: c.X, R: c.Z} }

// Key returns the canonical key of the axial form of c.
func (c Cube) Key() string { return c.ToAxial().Key() }

func (c Cube) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Directions, indexed 0..5. The axial table is the projection of the cube
// table; both walk the same six neighbors in the same order.
var (
	axialDirections = [6]Axial{
		{+1, 0}, {+1, -1}, {0, -1}, {-1, 0}, {-1, +1}, {0, +1},
	}
	cubeDirections = [6]Cube{
		{+1, -1, 0}, {+1, 0, -1}, {0, +1, -1}, {-1, +1, 0}, {-1, 0, +1}, {0, -1, +1},
	}
)

// Direction returns the axial unit offset for direction i (taken mod 6).
func Direction(i int) Axial { return axialDirections[mod6(i)] }

// CubeDirection returns the cube unit offset for direction i (taken mod 6).
func CubeDirection(i int) Cube { return cubeDirections[mod6(i)] }

// Directions returns a copy of the six axial unit offsets.
func Directions() [6]Axial { return axialDirections }

func mod6(i int) int {
	i %= 6
	if i < 0 {
		i += 6
	}
	return i
}
