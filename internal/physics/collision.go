package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/block"
)

// BlockSource is the read-only block view physics needs. A false second
// result means the block is outside the world or not loaded yet.
type BlockSource interface {
	GetBlock(x, y, z int) (block.Type, bool)
}

// AABB is an axis-aligned box in world space. Block (x, y, z) occupies
// [x, x+1) x [y, y+1) x [z, z+1).
type AABB struct {
	Min, Max mgl32.Vec3
}

// BoxAt returns the box of an entity whose feet are centred on pos.
func BoxAt(pos mgl32.Vec3, width, height, depth float32) AABB {
	return AABB{
		Min: mgl32.Vec3{pos.X() - width/2, pos.Y(), pos.Z() - depth/2},
		Max: mgl32.Vec3{pos.X() + width/2, pos.Y() + height, pos.Z() + depth/2},
	}
}

// IsSolidAt reports whether a loaded, solid block sits at the given coordinates.
func IsSolidAt(src BlockSource, x, y, z int) bool {
	t, ok := src.GetBlock(x, y, z)
	return ok && t.IsSolid()
}

// Collides checks if the box overlaps any solid block
func Collides(box AABB, src BlockSource) bool {
	minX, maxX := blockSpan(box.Min.X(), box.Max.X())
	minY, maxY := blockSpan(box.Min.Y(), box.Max.Y())
	minZ, maxZ := blockSpan(box.Min.Z(), box.Max.Z())

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				if IsSolidAt(src, x, y, z) {
					return true
				}
			}
		}
	}
	return false
}

// blockSpan returns the inclusive range of block cells overlapped by [lo, hi).
func blockSpan(lo, hi float32) (int, int) {
	first := int(math.Floor(float64(lo)))
	last := int(math.Ceil(float64(hi))) - 1
	if last < first {
		last = first
	}
	return first, last
}

// FindGroundLevel returns the top of the highest solid block under (x, z) at or
// below fromY, and false if the column has no loaded ground.
func FindGroundLevel(x, z, fromY float32, src BlockSource) (float32, bool) {
	bx := int(math.Floor(float64(x)))
	bz := int(math.Floor(float64(z)))
	for by := int(math.Floor(float64(fromY))); by >= 0; by-- {
		if IsSolidAt(src, bx, by, bz) {
			return float32(by + 1), true
		}
	}
	return 0, false
}
