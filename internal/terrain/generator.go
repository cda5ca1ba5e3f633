package terrain

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru"

	"voxelstream/internal/block"
	"voxelstream/internal/world"
)

const (
	SeaLevel = 62

	heightCacheSize = 16 * 1024
	treeChance      = 2 // out of 256 grass columns
	treeMargin      = 2
)

// Generator produces heightmap terrain with beaches, water and trees.
// It is safe for concurrent use on distinct chunks.
type Generator struct {
	seed        int64
	scale       float64
	baseHeight  int
	amp         float64
	heightNoise *octaveNoise

	// Column heights are pure functions of (x, z); neighbouring chunks share edges.
	heights *lru.Cache
}

// NewGenerator creates a generator with default settings for the given seed.
func NewGenerator(seed int64) *Generator {
	heights, err := lru.New(heightCacheSize)
	if err != nil {
		panic(fmt.Sprintf("creating height cache: %v", err))
	}
	return &Generator{
		seed:        seed,
		scale:       1.0 / 96.0,
		baseHeight:  48,
		amp:         40,
		heightNoise: newOctaveNoise(seed, 4, 0.5, 2.0),
		heights:     heights,
	}
}

// Seed returns the generator seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

type column struct{ x, z int }

// HeightAt computes world surface height (block Y) at world X,Z.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	key := column{worldX, worldZ}
	if v, ok := g.heights.Get(key); ok {
		return v.(int)
	}

	n := g.heightNoise.Eval2(float64(worldX)*g.scale, float64(worldZ)*g.scale)
	height := int(math.Floor(float64(g.baseHeight) + n*g.amp))
	height = max(1, min(height, world.MaxY-8))
	g.heights.Add(key, height)
	return height
}

// Generate fills the chunk column by column. It writes only to c.
func (g *Generator) Generate(c *world.Chunk) error {
	pos := c.Position()
	if !pos.InBounds() {
		return fmt.Errorf("%w: %v", world.ErrOutOfBounds, pos)
	}
	originX, originZ := pos.Origin()

	for lx := range world.ChunkSizeX {
		for lz := range world.ChunkSizeZ {
			wx, wz := originX+lx, originZ+lz
			height := g.HeightAt(wx, wz)
			g.fillColumn(c, lx, lz, height)

			if g.hasTree(wx, wz, lx, lz, height) {
				g.placeTree(c, lx, height+1, lz, hash2(wx, wz, g.seed+1))
			}
		}
	}
	return nil
}

func (g *Generator) fillColumn(c *world.Chunk, lx, lz, height int) {
	beach := height <= SeaLevel+1
	for y := 0; y <= height; y++ {
		var t block.Type
		switch {
		case y < height-3:
			t = block.Stone
		case beach:
			t = block.Sand
		case y < height:
			t = block.Dirt
		default:
			t = block.Grass
		}
		c.SetBlock(lx, y, lz, t)
	}
	for y := height + 1; y <= SeaLevel; y++ {
		c.SetBlock(lx, y, lz, block.Water)
	}
}

// hasTree decides tree placement from a hash of the column. Trees are only
// planted where the whole canopy fits inside the chunk.
func (g *Generator) hasTree(wx, wz, lx, lz, height int) bool {
	if height <= SeaLevel+1 {
		return false
	}
	if lx < treeMargin || lx >= world.ChunkSizeX-treeMargin || lz < treeMargin || lz >= world.ChunkSizeZ-treeMargin {
		return false
	}
	return hash2(wx, wz, g.seed)&0xFF < treeChance
}

func (g *Generator) placeTree(c *world.Chunk, lx, y, lz int, h uint64) {
	trunk := 4 + int(h%2)
	if y+trunk+1 > world.MaxY {
		return
	}
	for i := range trunk {
		c.SetBlock(lx, y+i, lz, block.Wood)
	}

	top := y + trunk
	for dy := -2; dy <= 1; dy++ {
		r := 2
		if dy >= 0 {
			r = 1
		}
		for dx := -r; dx <= r; dx++ {
			for dz := -r; dz <= r; dz++ {
				if dx == 0 && dz == 0 && dy < 0 {
					continue
				}
				if c.Block(lx+dx, top+dy, lz+dz) == block.Air {
					c.SetBlock(lx+dx, top+dy, lz+dz, block.Leaves)
				}
			}
		}
	}
}

// FlatGenerator fills every column to a fixed height. Handy for tests and benchmarks.
type FlatGenerator struct {
	height int
}

func NewFlatGenerator(height int) *FlatGenerator {
	return &FlatGenerator{height: height}
}

func (g *FlatGenerator) HeightAt(int, int) int {
	return g.height
}

func (g *FlatGenerator) Generate(c *world.Chunk) error {
	for lx := range world.ChunkSizeX {
		for lz := range world.ChunkSizeZ {
			for y := 0; y < g.height; y++ {
				c.SetBlock(lx, y, lz, block.Dirt)
			}
			c.SetBlock(lx, g.height, lz, block.Grass)
		}
	}
	return nil
}
