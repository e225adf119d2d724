package hex

// All traversal runs in cube space. The axial functions convert in,
// compute, and convert the results back element-wise.

// CubeDistance returns hex distance between two cube coords.
func CubeDistance(a, b Cube) int {
	return (abs(a.X-b.X) + abs(a.Y-b.Y) + abs(a.Z-b.Z)) / 2
}

// Distance returns hex distance between two axial coords.
func Distance(a, b Axial) int {
	return CubeDistance(a.ToCube(), b.ToCube())
}

// Both endpoints of a line are shifted by the same vector, which sums to
// zero, so interpolated samples never sit exactly on an edge between tiles.
var lineNudge = FracCube{X: 1e-6, Y: 2e-6, Z: -3e-6}

// CubeLine returns the tiles on the straight line from a to b, both
// included, in order. Consecutive tiles are neighbors. It returns nil
// when the distance between a and b does not fit in an int.
func CubeLine(a, b Cube) []Cube {
	n := CubeDistance(a, b)
	if n < 0 {
		return nil
	}
	if n == 0 {
		return []Cube{a}
	}
	fa := a.Frac()
	fb := b.Frac()
	fa = FracCube{fa.X + lineNudge.X, fa.Y + lineNudge.Y, fa.Z + lineNudge.Z}
	fb = FracCube{fb.X + lineNudge.X, fb.Y + lineNudge.Y, fb.Z + lineNudge.Z}

	res := make([]Cube, 0, n+1)
	for i := 0; i <= n; i++ {
		res = append(res, Lerp(fa, fb, float64(i)/float64(n)).Round())
	}
	return res
}

// Line returns the tiles on the straight line from a to b, both included.
func Line(a, b Axial) []Axial {
	return toAxials(CubeLine(a.ToCube(), b.ToCube()))
}

// CubeNeighbors returns the six neighbors of c in direction order.
func CubeNeighbors(c Cube) [6]Cube {
	var res [6]Cube
	for i, d := range cubeDirections {
		res[i] = c.Add(d)
	}
	return res
}

// Neighbors returns the six neighbors of a in direction order.
func Neighbors(a Axial) [6]Axial {
	var res [6]Axial
	for i, d := range axialDirections {
		res[i] = a.Add(d)
	}
	return res
}

// Neighbor returns the neighbor of a in direction dir (taken mod 6).
func Neighbor(a Axial, dir int) Axial {
	return a.Add(Direction(dir))
}

// CubeRange returns all cube coordinates at distance <= n from c, c
// included. It returns nil for n < 0.
func CubeRange(c Cube, n int) []Cube {
	if n < 0 {
		return nil
	}
	res := make([]Cube, 0, 1+3*n*(n+1))
	for x := -n; x <= n; x++ {
		for y := max(-n, -x-n); y <= min(n, -x+n); y++ {
			res = append(res, c.Add(Cube{X: x, Y: y, Z: -x - y}))
		}
	}
	return res
}

// Range returns all axial coordinates at distance <= n from a.
func Range(a Axial, n int) []Axial {
	return toAxials(CubeRange(a.ToCube(), n))
}

// CubeRing returns the coordinates at exact distance radius from c,
// starting from c + direction(0)*radius and walking counter-clockwise.
// A radius <= 0 yields [c].
func CubeRing(c Cube, radius int) []Cube {
	if radius <= 0 {
		return []Cube{c}
	}
	res := make([]Cube, 0, 6*radius)
	cur := c.Add(cubeDirections[0].Scale(radius))
	// the corner at direction 0 is left along direction 2
	for side := 0; side < 6; side++ {
		d := cubeDirections[(side+2)%6]
		for step := 0; step < radius; step++ {
			res = append(res, cur)
			cur = cur.Add(d)
		}
	}
	return res
}

// Ring returns the axial coordinates at exact distance radius from a.
func Ring(a Axial, radius int) []Axial {
	return toAxials(CubeRing(a.ToCube(), radius))
}

// CubeReach expands breadth-first from c for up to movement steps and
// returns the frontiers: frontier i holds the tiles first reached in exactly
// i steps, frontier 0 is [c]. isBlocked is called at most once per tile
// and never for c; a nil isBlocked blocks nothing. It returns nil for
// movement < 0.
func CubeReach(c Cube, movement int, isBlocked func(Cube) bool) [][]Cube {
	if movement < 0 {
		return nil
	}
	seen := map[Cube]bool{c: true}
	frontiers := make([][]Cube, movement+1)
	frontiers[0] = []Cube{c}
	for i := 1; i <= movement; i++ {
		frontiers[i] = []Cube{}
		for _, cur := range frontiers[i-1] {
			for _, nb := range CubeNeighbors(cur) {
				if seen[nb] {
					continue
				}
				seen[nb] = true
				if isBlocked != nil && isBlocked(nb) {
					continue
				}
				frontiers[i] = append(frontiers[i], nb)
			}
		}
	}
	return frontiers
}

// Reach expands breadth-first from a for up to movement steps, skipping
// tiles for which isBlocked returns true. See CubeReach.
func Reach(a Axial, movement int, isBlocked func(Axial) bool) [][]Axial {
	var blocked func(Cube) bool
	if isBlocked != nil {
		blocked = func(c Cube) bool { return isBlocked(c.ToAxial()) }
	}
	frontiers := CubeReach(a.ToCube(), movement, blocked)
	if frontiers == nil {
		return nil
	}
	res := make([][]Axial, len(frontiers))
	for i, f := range frontiers {
		res[i] = toAxials(f)
	}
	return res
}

// Flatten concatenates reach frontiers into the set of tiles reachable
// within the movement budget, nearest first.
func Flatten[T any](frontiers [][]T) []T {
	n := 0
	for _, f := range frontiers {
		n += len(f)
	}
	res := make([]T, 0, n)
	for _, f := range frontiers {
		res = append(res, f...)
	}
	return res
}

func toAxials(cs []Cube) []Axial {
	if cs == nil {
		return nil
	}
	res := make([]Axial, len(cs))
	for i, c := range cs {
		res[i] = c.ToAxial()
	}
	return res
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
