package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/world"
)

// VertexStride is number of float32 per vertex (pos.xyz + normal.xyz + color.rgb)
const VertexStride = 9

// Mesh is the geometry of one chunk in world space. Opaque and translucent
// faces are kept apart so translucent ones can be drawn last.
type Mesh struct {
	Position    world.ChunkPosition
	Opaque      []float32
	Translucent []float32
	Quads       int
}

// VertexCount returns the number of vertices across both passes.
func (m *Mesh) VertexCount() int {
	return (len(m.Opaque) + len(m.Translucent)) / VertexStride
}

// Bounds returns the world-space box the chunk occupies.
func (m *Mesh) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	ox, oz := m.Position.Origin()
	return mgl32.Vec3{float32(ox), world.MinY, float32(oz)},
		mgl32.Vec3{float32(ox + world.ChunkSizeX), world.MaxY + 1, float32(oz + world.ChunkSizeZ)}
}
