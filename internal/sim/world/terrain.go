package world

import (
	"fmt"

	"github.com/aquilax/go-perlin"

	"prospector.ai/internal/sim/catalogs"
	"prospector.ai/internal/sim/tuning"
)

// TerrainGen fills chunks deterministically from the world seed: soil over
// horizontal rock layers, with ore bodies carved by per-ore 3D noise.
type TerrainGen struct {
	Air  uint16
	Soil uint16

	seaLevel  int
	terrain   tuning.Terrain
	surface   *perlin.Perlin
	rockIDs   []uint16
	oreLayers []oreLayer
}

type oreLayer struct {
	gen   tuning.OreGen
	noise *perlin.Perlin
	// ids holds the ore block per rock layer; 0 when the catalog lacks it.
	ids []uint16
}

func NewTerrainGen(seed int64, seaLevel int, terrain tuning.Terrain, ores []tuning.OreGen, blocks catalogs.BlockCatalog) (*TerrainGen, error) {
	lookup := func(code string) (uint16, error) {
		id, ok := blocks.Index[code]
		if !ok {
			return 0, fmt.Errorf("worldgen: unknown block %q", code)
		}
		return id, nil
	}
	g := &TerrainGen{
		seaLevel: seaLevel,
		terrain:  terrain,
		surface:  perlin.NewPerlin(terrain.Alpha, terrain.Beta, terrain.Octaves, seed),
	}
	var err error
	if g.Air, err = lookup("air"); err != nil {
		return nil, err
	}
	if g.Soil, err = lookup("soil-medium-normal"); err != nil {
		return nil, err
	}
	for _, rock := range terrain.RockLayers {
		id, err := lookup("rock-" + rock)
		if err != nil {
			return nil, err
		}
		g.rockIDs = append(g.rockIDs, id)
	}
	for i, o := range ores {
		l := oreLayer{
			gen:   o,
			noise: perlin.NewPerlin(terrain.Alpha, terrain.Beta, terrain.Octaves, seed+int64(i)+1),
			ids:   make([]uint16, len(terrain.RockLayers)),
		}
		for j, rock := range terrain.RockLayers {
			l.ids[j] = blocks.Index[fmt.Sprintf("ore-%s-%s-%s", o.Grade, o.Type, rock)]
		}
		g.oreLayers = append(g.oreLayers, l)
	}
	return g, nil
}

// SurfaceY is the highest solid y of the column at (x, z).
func (g *TerrainGen) SurfaceY(x, z int) int {
	n := g.surface.Noise2D(float64(x)*g.terrain.Scale, float64(z)*g.terrain.Scale)
	return g.seaLevel + int(n*float64(g.terrain.Amplitude))
}

func (g *TerrainGen) rockLayer(y int) int {
	lh := g.terrain.LayerHeight
	if lh <= 0 {
		lh = 1
	}
	return (y / lh) % len(g.rockIDs)
}

// BlockAt computes the generated block for one position.
func (g *TerrainGen) BlockAt(x, y, z, surfaceY int) uint16 {
	if y > surfaceY {
		return g.Air
	}
	if y > surfaceY-g.terrain.SoilDepth {
		return g.Soil
	}
	layer := g.rockLayer(y)
	for _, o := range g.oreLayers {
		if y < o.gen.MinY || y > o.gen.MaxY {
			continue
		}
		id := o.ids[layer]
		if id == 0 {
			continue
		}
		s := o.gen.Scale
		n := (o.noise.Noise3D(float64(x)*s, float64(y)*s, float64(z)*s) + 1) / 2
		if n > o.gen.Threshold {
			return id
		}
	}
	return g.rockIDs[layer]
}

func (g *TerrainGen) Fill(ch *Chunk) {
	bx, by, bz := ch.CX*chunkSize, ch.CY*chunkSize, ch.CZ*chunkSize
	for z := 0; z < chunkSize; z++ {
		for x := 0; x < chunkSize; x++ {
			sy := g.SurfaceY(bx+x, bz+z)
			for y := 0; y < chunkSize; y++ {
				ch.Blocks[ch.index(x, y, z)] = g.BlockAt(bx+x, by+y, bz+z, sy)
			}
		}
	}
}
