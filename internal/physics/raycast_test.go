package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-testutil"

	"voxelstream/internal/block"
)

func TestRaycast(t *testing.T) {
	src := blockMap{{5, 0, 0}: block.Stone, {0, -3, 0}: block.Dirt}

	tests := map[string]struct {
		start, dir mgl32.Vec3
		maxDist    float32
		hit        bool
		pos, adj   [3]int
	}{
		"hits block ahead": {
			start: mgl32.Vec3{0.5, 0.5, 0.5}, dir: mgl32.Vec3{1, 0, 0}, maxDist: 10,
			hit: true, pos: [3]int{5, 0, 0}, adj: [3]int{4, 0, 0},
		},
		"out of reach": {
			start: mgl32.Vec3{0.5, 0.5, 0.5}, dir: mgl32.Vec3{1, 0, 0}, maxDist: 3,
		},
		"wrong direction": {
			start: mgl32.Vec3{0.5, 0.5, 0.5}, dir: mgl32.Vec3{-1, 0, 0}, maxDist: 10,
		},
		"looking down": {
			start: mgl32.Vec3{0.5, 0.5, 0.5}, dir: mgl32.Vec3{0, -2, 0}, maxDist: 10,
			hit: true, pos: [3]int{0, -3, 0}, adj: [3]int{0, -2, 0},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := Raycast(tt.start, tt.dir, MinReachDistance, tt.maxDist, src)
			testutil.AssertEqual(t, "hit", r.Hit, tt.hit)
			if !tt.hit {
				return
			}
			testutil.AssertEqual(t, "position", r.HitPosition, tt.pos)
			testutil.AssertEqual(t, "adjacent", r.AdjacentPosition, tt.adj)
		})
	}
}

func BenchmarkRaycast(b *testing.B) {
	src := wall(5, block.Grass)
	start := mgl32.Vec3{0, 8, 0}
	dir := mgl32.Vec3{0, 0, 1}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Raycast(start, dir, 0.1, 10.0, src)
	}
}
