package world

import "fmt"

const (
	// Chunk dimensions
	ChunkSizeX = 16
	ChunkSizeY = 256
	ChunkSizeZ = 16

	ChunkVolume = ChunkSizeX * ChunkSizeY * ChunkSizeZ

	// World extent in chunks along X and Z: [-ChunkRadius, ChunkRadius)
	ChunkRadius = 16

	MinX = -ChunkRadius * ChunkSizeX
	MaxX = ChunkRadius*ChunkSizeX - 1
	MinY = 0
	MaxY = ChunkSizeY - 1
	MinZ = -ChunkRadius * ChunkSizeZ
	MaxZ = ChunkRadius*ChunkSizeZ - 1
)

// ChunkPosition identifies a 16x256x16 column of the world.
type ChunkPosition struct {
	X, Z int
}

// ChunkPositionFromWorld returns the chunk containing world column (x, z).
func ChunkPositionFromWorld(x, z int) ChunkPosition {
	return ChunkPosition{X: floorDiv(x, ChunkSizeX), Z: floorDiv(z, ChunkSizeZ)}
}

// InBounds reports whether p lies inside the finite world grid.
func (p ChunkPosition) InBounds() bool {
	return p.X >= -ChunkRadius && p.X < ChunkRadius && p.Z >= -ChunkRadius && p.Z < ChunkRadius
}

// Local converts world column coordinates into coordinates local to p.
func (p ChunkPosition) Local(x, z int) (int, int) {
	return x - p.X*ChunkSizeX, z - p.Z*ChunkSizeZ
}

// Origin returns the world coordinates of the chunk's (0, 0) column.
func (p ChunkPosition) Origin() (int, int) {
	return p.X * ChunkSizeX, p.Z * ChunkSizeZ
}

func (p ChunkPosition) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Z)
}

// InWorld reports whether a block coordinate lies inside the world extent.
func InWorld(x, y, z int) bool {
	return x >= MinX && x <= MaxX && y >= MinY && y <= MaxY && z >= MinZ && z <= MaxZ
}

// SpiralAround returns every position of the square of the given radius around
// center, walked ring by ring from the centre outwards. Positions outside the
// world grid are included; callers filter with InBounds.
func SpiralAround(center ChunkPosition, radius int) []ChunkPosition {
	if radius < 0 {
		return nil
	}
	side := 2*radius + 1
	out := make([]ChunkPosition, 0, side*side)
	out = append(out, center)

	for r := 1; r <= radius; r++ {
		x0 := center.X - r
		x1 := center.X + r
		z0 := center.Z - r
		z1 := center.Z + r

		for xk := x0; xk <= x1; xk++ {
			out = append(out, ChunkPosition{X: xk, Z: z0})
		}
		for zk := z0 + 1; zk <= z1-1; zk++ {
			out = append(out, ChunkPosition{X: x1, Z: zk})
		}
		for xk := x1; xk >= x0; xk-- {
			out = append(out, ChunkPosition{X: xk, Z: z1})
		}
		for zk := z1 - 1; zk >= z0+1; zk-- {
			out = append(out, ChunkPosition{X: x0, Z: zk})
		}
	}
	return out
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
