package meshing

import (
	"sync/atomic"

	"voxelstream/internal/block"
	"voxelstream/internal/profiling"
	"voxelstream/internal/world"
)

// fluidInset lowers exposed fluid surfaces below the block top.
const fluidInset = 0.125

// NeighborSource resolves blocks outside the chunk being meshed. A false
// second result means the neighbour is not loaded.
type NeighborSource interface {
	GetBlock(x, y, z int) (block.Type, bool)
}

// face describes one of the six sweep directions. u and v span the face
// plane with u × v pointing along +axis.
type face struct {
	axis  int
	sign  int
	u, v  int
	shade float32
}

var faces = [6]face{
	{axis: 0, sign: +1, u: 1, v: 2, shade: 0.6}, // east
	{axis: 0, sign: -1, u: 1, v: 2, shade: 0.6}, // west
	{axis: 1, sign: +1, u: 2, v: 0, shade: 1.0}, // top
	{axis: 1, sign: -1, u: 2, v: 0, shade: 0.5}, // bottom
	{axis: 2, sign: +1, u: 0, v: 1, shade: 0.8}, // south
	{axis: 2, sign: -1, u: 0, v: 1, shade: 0.8}, // north
}

var dims = [3]int{world.ChunkSizeX, world.ChunkSizeY, world.ChunkSizeZ}

// Mesher builds greedy-merged chunk meshes. It is safe for concurrent use.
type Mesher struct {
	neighbors atomic.Pointer[neighborRef]
}

type neighborRef struct {
	src NeighborSource
}

func NewMesher() *Mesher {
	return &Mesher{}
}

// SetNeighbors installs the source used to cull faces on chunk borders.
// Without one, border faces are always emitted.
func (m *Mesher) SetNeighbors(src NeighborSource) {
	m.neighbors.Store(&neighborRef{src: src})
}

// Generate implements world.ChunkMeshGenerator.
func (m *Mesher) Generate(c *world.Chunk) (world.Geometry, error) {
	return m.Build(c), nil
}

// Build meshes a snapshot of the chunk's blocks.
func (m *Mesher) Build(c *world.Chunk) *Mesh {
	defer profiling.Track("meshing.Build")()

	pos := c.Position()
	ox, oz := pos.Origin()
	b := &builder{
		blocks: c.Snapshot(),
		origin: [3]int{ox, 0, oz},
		mesh:   &Mesh{Position: pos},
	}
	if ref := m.neighbors.Load(); ref != nil {
		b.neighbors = ref.src
	}

	for _, f := range faces {
		b.sweep(f)
	}
	return b.mesh
}

type builder struct {
	blocks    *world.Blocks
	neighbors NeighborSource
	origin    [3]int
	mesh      *Mesh
}

// neighbor returns the block at local coordinates p, which may lie outside the chunk.
func (b *builder) neighbor(p [3]int) (block.Type, bool) {
	switch {
	case p[1] < 0:
		// Nothing is ever visible from below the world floor.
		return block.Stone, true
	case p[1] >= world.ChunkSizeY:
		return block.Air, true
	case p[0] >= 0 && p[0] < world.ChunkSizeX && p[2] >= 0 && p[2] < world.ChunkSizeZ:
		return b.blocks.At(p[0], p[1], p[2]), true
	case b.neighbors == nil:
		return block.Air, false
	}
	return b.neighbors.GetBlock(p[0]+b.origin[0], p[1], p[2]+b.origin[2])
}

// visible decides whether block t shows a face towards neighbour n.
func visible(t, n block.Type, loaded bool) bool {
	if !loaded {
		return true
	}
	if n == t {
		return false
	}
	return n.IsTransparent()
}

// sweep builds a face mask for every slice along f.axis and greedily merges it.
func (b *builder) sweep(f face) {
	su, sv := dims[f.u], dims[f.v]
	mask := make([]block.Type, su*sv)

	for w := 0; w < dims[f.axis]; w++ {
		found := false
		for u := 0; u < su; u++ {
			for v := 0; v < sv; v++ {
				var p [3]int
				p[f.axis], p[f.u], p[f.v] = w, u, v
				t := b.blocks.At(p[0], p[1], p[2])
				if t == block.Air {
					mask[u*sv+v] = block.Air
					continue
				}
				q := p
				q[f.axis] += f.sign
				n, loaded := b.neighbor(q)
				if visible(t, n, loaded) {
					mask[u*sv+v] = t
					found = true
				} else {
					mask[u*sv+v] = block.Air
				}
			}
		}
		if found {
			b.merge(f, w, mask, su, sv)
		}
	}
}

func (b *builder) merge(f face, w int, mask []block.Type, su, sv int) {
	for u := 0; u < su; u++ {
		for v := 0; v < sv; {
			t := mask[u*sv+v]
			if t == block.Air {
				v++
				continue
			}

			height := 1
			for v+height < sv && mask[u*sv+v+height] == t {
				height++
			}
			width := 1
		grow:
			for u+width < su {
				for dv := 0; dv < height; dv++ {
					if mask[(u+width)*sv+v+dv] != t {
						break grow
					}
				}
				width++
			}

			b.emit(f, w, u, v, width, height, t)

			for du := 0; du < width; du++ {
				for dv := 0; dv < height; dv++ {
					mask[(u+du)*sv+v+dv] = block.Air
				}
			}
			v += height
		}
	}
}

// emit appends one merged quad as two triangles.
func (b *builder) emit(f face, w, u, v, width, height int, t block.Type) {
	fluid := t.IsTransparent() && !t.IsSolid()

	plane := float32(w + b.origin[f.axis])
	if f.sign > 0 {
		plane++
		if fluid && f.axis == 1 {
			plane -= fluidInset
		}
	}

	corner := func(cu, cv int) [3]float32 {
		var p [3]float32
		p[f.axis] = plane
		p[f.u] = float32(cu + b.origin[f.u])
		p[f.v] = float32(cv + b.origin[f.v])
		return p
	}
	c0 := corner(u, v)
	c1 := corner(u+width, v)
	c2 := corner(u+width, v+height)
	c3 := corner(u, v+height)
	if f.sign < 0 {
		c1, c3 = c3, c1
	}

	var normal [3]float32
	normal[f.axis] = float32(f.sign)
	color := t.Color().Mul(f.shade)

	out := &b.mesh.Opaque
	if fluid {
		out = &b.mesh.Translucent
	}
	for _, p := range [6][3]float32{c0, c1, c2, c2, c3, c0} {
		*out = append(*out,
			p[0], p[1], p[2],
			normal[0], normal[1], normal[2],
			color[0], color[1], color[2],
		)
	}
	b.mesh.Quads++
}
