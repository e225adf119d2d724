// Package terrain generates tile payloads from layered simplex noise.
// A Generator is a shape.Factory, so a grid can be populated with it directly.
package terrain

import (
	"errors"
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/gravitas-games/hexgrid/internal/config"
	"github.com/gravitas-games/hexgrid/pkg/grid"
	"github.com/gravitas-games/hexgrid/pkg/hex"
)

// ErrUnknownTerrain is returned when decoding an unrecognised terrain name.
var ErrUnknownTerrain = errors.New("unknown terrain")

// Terrain types for hex tiles.
type Terrain uint8

const (
	Water    Terrain = iota // Impassable
	Plains                  // Open ground
	Forest                  // Wet lowland
	Hills                   // High ground below the mountain line
	Mountain                // Impassable
)

var terrainNames = [...]string{
	Water:    "water",
	Plains:   "plains",
	Forest:   "forest",
	Hills:    "hills",
	Mountain: "mountain",
}

func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return fmt.Sprintf("Terrain(%d)", int(t))
}

// MarshalText encodes the terrain by name.
func (t Terrain) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a terrain name.
func (t *Terrain) UnmarshalText(text []byte) error {
	for i, name := range terrainNames {
		if name == string(text) {
			*t = Terrain(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownTerrain, text)
}

// Passable reports whether a unit can enter a tile of this terrain.
func (t Terrain) Passable() bool {
	return t != Water && t != Mountain
}

// Tile is the payload stored per grid cell.
type Tile struct {
	Coord     hex.Axial `json:"coord"`
	Terrain   Terrain   `json:"terrain"`
	Elevation float64   `json:"elevation"` // 0.0 to 1.0
	Moisture  float64   `json:"moisture"`  // 0.0 to 1.0
}

// Generator derives tiles deterministically from a seed.
type Generator struct {
	cfg       config.TerrainConfig
	elevation opensimplex.Noise
	moisture  opensimplex.Noise
}

// NewGenerator creates a generator for the given noise parameters.
func NewGenerator(cfg config.TerrainConfig) *Generator {
	return &Generator{
		cfg:       cfg,
		elevation: opensimplex.NewNormalized(cfg.Seed),
		moisture:  opensimplex.NewNormalized(cfg.Seed + 1),
	}
}

// Tile builds the tile at (q, r). The result depends only on the
// coordinate and the generator's configuration.
func (g *Generator) Tile(q, r int) Tile {
	// Axial to cartesian so noise is isotropic across the grid.
	x := float64(q) + float64(r)*0.5
	y := float64(r) * math.Sqrt(3.0) / 2.0

	elev := octaveNoise(g.elevation, x, y, g.cfg.Octaves, g.cfg.Frequency, 0.5)
	moist := octaveNoise(g.moisture, x, y, g.cfg.Octaves, g.cfg.Frequency*0.8, 0.5)

	return Tile{
		Coord:     hex.Axial{Q: q, R: r},
		Terrain:   g.derive(elev, moist),
		Elevation: elev,
		Moisture:  moist,
	}
}

func (g *Generator) derive(elev, moist float64) Terrain {
	switch {
	case elev < g.cfg.SeaLevel:
		return Water
	case elev > g.cfg.MountainLevel:
		return Mountain
	case elev > g.cfg.MountainLevel-0.1:
		return Hills
	case moist > 0.55:
		return Forest
	default:
		return Plains
	}
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// Blocked returns a reach predicate for g: tiles outside the grid and
// impassable tiles block movement.
func Blocked(g *grid.Grid[Tile]) func(hex.Axial) bool {
	return func(h hex.Axial) bool {
		t, ok := g.Lookup(h)
		return !ok || !t.Terrain.Passable()
	}
}
