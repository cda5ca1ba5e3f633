package graphics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-testutil"
)

func TestFrustumIntersects(t *testing.T) {
	cam := NewCamera(800, 600)
	// Looking down -Z from the origin.
	view := mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	f := NewFrustum(cam.ProjectionMatrix().Mul4(view))

	tests := map[string]struct {
		lo, hi mgl32.Vec3
		exp    bool
	}{
		"ahead":         {lo: mgl32.Vec3{-1, -1, -20}, hi: mgl32.Vec3{1, 1, -18}, exp: true},
		"behind":        {lo: mgl32.Vec3{-1, -1, 10}, hi: mgl32.Vec3{1, 1, 12}, exp: false},
		"far left":      {lo: mgl32.Vec3{-200, -1, -12}, hi: mgl32.Vec3{-190, 1, -10}, exp: false},
		"beyond far":    {lo: mgl32.Vec3{-1, -1, -2000}, hi: mgl32.Vec3{1, 1, -1500}, exp: false},
		"around camera": {lo: mgl32.Vec3{-16, 0, -16}, hi: mgl32.Vec3{16, 256, 16}, exp: true},
		"within margin": {lo: mgl32.Vec3{-1, -1, 0.5}, hi: mgl32.Vec3{1, 1, 0.8}, exp: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "visible", f.Intersects(tt.lo, tt.hi), tt.exp)
		})
	}
}

func TestCameraViewport(t *testing.T) {
	cam := NewCamera(1000, 500)
	testutil.AssertEqual(t, "aspect", cam.AspectRatio, float32(2))
	cam.SetViewport(0, 0)
	testutil.AssertEqual(t, "minimised keeps aspect", cam.AspectRatio, float32(2))
}
