package hex

import "math"

// FracCube is a cube coordinate with fractional components, produced by
// interpolation. It does not need to satisfy x+y+z=0 until rounded.
type FracCube struct {
	X, Y, Z float64
}

// FracAxial is an axial coordinate with fractional components, produced by
// pixel projection.
type FracAxial struct {
	Q, R float64
}

// Frac widens c to fractional components.
func (c Cube) Frac() FracCube {
	return FracCube{float64(c.X), float64(c.Y), float64(c.Z)}
}

// Frac widens a to fractional components.
func (a Axial) Frac() FracAxial {
	return FracAxial{float64(a.Q), float64(a.R)}
}

// ToCube converts a fractional axial coordinate to fractional cube space.
func (f FracAxial) ToCube() FracCube {
	return FracCube{X: f.Q, Y: -f.Q - f.R, Z: f.R}
}

// ToAxial converts a fractional cube coordinate to fractional axial space.
func (f FracCube) ToAxial() FracAxial {
	return FracAxial{Q: f.X, R: f.Z}
}

// Round snaps f to the nearest cube coordinate and recomputes one
// component from the other two: x when its rounding residual is strictly
// the largest, otherwise y when dy > dz, otherwise z.
func (f FracCube) Round() Cube {
	rx := math.Round(f.X)
	ry := math.Round(f.Y)
	rz := math.Round(f.Z)

	dx := math.Abs(rx - f.X)
	dy := math.Abs(ry - f.Y)
	dz := math.Abs(rz - f.Z)

	if dx > dy && dx > dz {
		rx = -ry - rz
	} else if dy > dz {
		ry = -rx - rz
	} else {
		rz = -rx - ry
	}
	return Cube{X: int(rx), Y: int(ry), Z: int(rz)}
}

// Round snaps f to the nearest axial coordinate.
func (f FracAxial) Round() Axial {
	return f.ToCube().Round().ToAxial()
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Lerp interpolates between a and b; t=0 yields a and t=1 yields b.
func Lerp(a, b FracCube, t float64) FracCube {
	return FracCube{
		X: lerp(a.X, b.X, t),
		Y: lerp(a.Y, b.Y, t),
		Z: lerp(a.Z, b.Z, t),
	}
}
