package world

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestChunkPositionFromWorld(t *testing.T) {
	tests := map[string]struct {
		x, z   int
		exp    ChunkPosition
		localX int
		localZ int
	}{
		"origin":          {x: 0, z: 0, exp: ChunkPosition{0, 0}, localX: 0, localZ: 0},
		"inside first":    {x: 15, z: 3, exp: ChunkPosition{0, 0}, localX: 15, localZ: 3},
		"next chunk":      {x: 16, z: 31, exp: ChunkPosition{1, 1}, localX: 0, localZ: 15},
		"negative":        {x: -1, z: -16, exp: ChunkPosition{-1, -1}, localX: 15, localZ: 0},
		"negative deeper": {x: -17, z: -33, exp: ChunkPosition{-2, -3}, localX: 15, localZ: 15},
		"world min":       {x: MinX, z: MinZ, exp: ChunkPosition{-16, -16}, localX: 0, localZ: 0},
		"world max":       {x: MaxX, z: MaxZ, exp: ChunkPosition{15, 15}, localX: 15, localZ: 15},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			pos := ChunkPositionFromWorld(tt.x, tt.z)
			testutil.AssertEqual(t, "position", pos, tt.exp)
			lx, lz := pos.Local(tt.x, tt.z)
			testutil.AssertEqual(t, "local x", lx, tt.localX)
			testutil.AssertEqual(t, "local z", lz, tt.localZ)
			testutil.AssertEqual(t, "in bounds", pos.InBounds(), true)
		})
	}
}

func TestChunkPositionInBounds(t *testing.T) {
	testutil.AssertEqual(t, "min", ChunkPosition{-16, -16}.InBounds(), true)
	testutil.AssertEqual(t, "max", ChunkPosition{15, 15}.InBounds(), true)
	testutil.AssertEqual(t, "past max", ChunkPosition{16, 0}.InBounds(), false)
	testutil.AssertEqual(t, "past min", ChunkPosition{0, -17}.InBounds(), false)
}

func TestInWorld(t *testing.T) {
	testutil.AssertEqual(t, "origin", InWorld(0, 0, 0), true)
	testutil.AssertEqual(t, "corner", InWorld(MaxX, MaxY, MinZ), true)
	testutil.AssertEqual(t, "too high", InWorld(0, 256, 0), false)
	testutil.AssertEqual(t, "negative y", InWorld(0, -1, 0), false)
	testutil.AssertEqual(t, "past x", InWorld(-257, 0, 0), false)
}

func TestSpiralAround(t *testing.T) {
	for radius := 0; radius <= 6; radius++ {
		center := ChunkPosition{X: 3, Z: -2}
		got := SpiralAround(center, radius)

		side := 2*radius + 1
		testutil.AssertEqual(t, "count", len(got), side*side)
		testutil.AssertEqual(t, "first", got[0], center)

		seen := make(map[ChunkPosition]struct{}, len(got))
		ring := 0
		for _, p := range got {
			if _, dup := seen[p]; dup {
				t.Fatalf("radius %d: %v visited twice", radius, p)
			}
			seen[p] = struct{}{}

			r := max(abs(p.X-center.X), abs(p.Z-center.Z))
			if r > radius {
				t.Fatalf("radius %d: %v outside square", radius, p)
			}
			if r < ring {
				t.Fatalf("radius %d: %v visited after ring %d", radius, p, ring)
			}
			ring = r
		}
	}

	testutil.AssertEqual(t, "negative radius", len(SpiralAround(ChunkPosition{}, -1)), 0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestFloorDiv(t *testing.T) {
	testutil.AssertEqual(t, "floorDiv", floorDiv(-1, 16), -1)
	testutil.AssertEqual(t, "floorDiv exact", floorDiv(-16, 16), -1)
	testutil.AssertEqual(t, "floorDiv positive", floorDiv(17, 16), 1)
}
